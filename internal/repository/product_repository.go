package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"electra/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog data access. The
// storefront fetches the full catalog and derives the visible list locally,
// so List returns everything ordered by name.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, brand, name, price, category, stock, images, description, specs, created_at, updated_at`

// List retrieves the full catalog ordered by name
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY name ASC`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Upsert inserts a new product or replaces an existing one by id
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}
	specs, err := json.Marshal(product.Specs)
	if err != nil {
		return fmt.Errorf("failed to encode product specs: %w", err)
	}

	query := `
		INSERT INTO products (id, brand, name, price, category, stock, images, description, specs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET brand = EXCLUDED.brand, name = EXCLUDED.name, price = EXCLUDED.price,
		    category = EXCLUDED.category, stock = EXCLUDED.stock, images = EXCLUDED.images,
		    description = EXCLUDED.description, specs = EXCLUDED.specs, updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Brand,
		product.Name,
		product.Price,
		product.Category,
		product.Stock,
		images,
		product.Description,
		specs,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// Delete removes a product from the catalog
func (r *productRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func scanProduct(scan func(dest ...any) error) (*domain.Product, error) {
	product := &domain.Product{}
	var images, specs []byte

	err := scan(
		&product.ID,
		&product.Brand,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.Stock,
		&images,
		&product.Description,
		&specs,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to decode product images: %w", err)
		}
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &product.Specs); err != nil {
			return nil, fmt.Errorf("failed to decode product specs: %w", err)
		}
	}

	return product, nil
}
