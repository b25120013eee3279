package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"electra/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service wraps the database handle with lifecycle helpers
type Service struct {
	db *sql.DB
}

// New opens a connection pool against the configured database
func New(cfg config.DatabaseConfig) (*Service, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Service{db: db}, nil
}

// DB returns the underlying handle
func (s *Service) DB() *sql.DB {
	return s.db
}

// Health pings the database and reports pool statistics
func (s *Service) Health(ctx context.Context) map[string]string {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	health := map[string]string{"status": "up"}
	if err := s.db.PingContext(pingCtx); err != nil {
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	stats := s.db.Stats()
	health["open_connections"] = fmt.Sprintf("%d", stats.OpenConnections)
	health["in_use"] = fmt.Sprintf("%d", stats.InUse)
	health["idle"] = fmt.Sprintf("%d", stats.Idle)
	return health
}

// Close closes the connection pool
func (s *Service) Close() error {
	return s.db.Close()
}
