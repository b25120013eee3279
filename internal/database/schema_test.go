package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	// Check if migrations directory exists
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	// Expected migration files
	expectedMigrations := []string{
		"00001_create_users.sql",
		"00002_create_refresh_tokens.sql",
		"00003_create_profiles.sql",
		"00004_create_products.sql",
		"00005_create_orders.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		// Check for goose Up directive
		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}

		// Check for goose Down directive
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}

		// Check for StatementBegin/End
		if !strings.Contains(contentStr, "-- +goose StatementBegin") {
			t.Errorf("Migration file %s missing '-- +goose StatementBegin' directive", file.Name())
		}

		if !strings.Contains(contentStr, "-- +goose StatementEnd") {
			t.Errorf("Migration file %s missing '-- +goose StatementEnd' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"users":          "00001_create_users.sql",
		"refresh_tokens": "00002_create_refresh_tokens.sql",
		"profiles":       "00003_create_profiles.sql",
		"products":       "00004_create_products.sql",
		"orders":         "00005_create_orders.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		// Check if migration creates the table
		createTableStmt := "CREATE TABLE IF NOT EXISTS " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		// Check if migration has drop table in down section
		dropTableStmt := "DROP TABLE IF EXISTS " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestUsersTableHasRequiredColumns(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00001_create_users.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read users migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"email VARCHAR",
		"password_hash VARCHAR",
		"created_at TIMESTAMP",
		"updated_at TIMESTAMP",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Users table missing required column definition: %s", column)
		}
	}

	// Email must be unique for credential lookup
	if !strings.Contains(contentStr, "users_email_key") {
		t.Error("Users table missing unique email index")
	}
}

func TestProductsTableHasRequiredColumns(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00004_create_products.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"brand VARCHAR",
		"name VARCHAR",
		"price DECIMAL",
		"category VARCHAR",
		"stock INTEGER",
		"images JSONB",
		"description TEXT",
		"specs JSONB",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required column definition: %s", column)
		}
	}
}

func TestOrdersTableHasStatusConstraint(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00005_create_orders.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}

	contentStr := string(content)

	// Check for status constraint with valid values
	requiredStatuses := []string{"pending", "paid", "shipped", "delivered", "cancelled"}
	for _, status := range requiredStatuses {
		t.Run(status, func(t *testing.T) {
			if !strings.Contains(contentStr, status) {
				t.Errorf("Orders table status constraint missing value: %s", status)
			}
		})
	}

	// Items travel as a frozen JSON snapshot, not line-item rows
	if !strings.Contains(contentStr, "items JSONB") {
		t.Error("Orders table missing items JSONB column")
	}
}

func TestProfilesTableDefaultsToCustomerRole(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00003_create_profiles.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read profiles migration: %v", err)
	}

	if !strings.Contains(string(content), "DEFAULT 'customer'") {
		t.Error("Profiles table role column should default to customer")
	}
}
