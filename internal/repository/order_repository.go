package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"electra/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidOrderTransition = errors.New("invalid order status transition")
)

// OrderRepository defines the interface for order data access. Line items
// are stored as a frozen JSON copy of the cart at checkout time; later cart
// or catalog changes never affect a placed order.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, items, total, status, ship_name, ship_street, ship_city, ship_zip, created_at`

// Create inserts a new order. Persistence is atomic: either the row exists
// with the given status or it does not exist at all.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.UserID == uuid.Nil {
		return errors.New("order must have an owning user")
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, items, total, status, ship_name, ship_street, ship_city, ship_zip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		items,
		order.Total,
		order.Status,
		order.ShippingAddress.Name,
		order.ShippingAddress.Street,
		order.ShippingAddress.City,
		order.ShippingAddress.Zip,
		order.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// ListByUser retrieves a user's orders, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.listOrders(ctx, query, userID)
}

// ListAll retrieves every order, newest first. Admin only; enforcement
// happens at the transport boundary.
func (r *orderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	return r.listOrders(ctx, query)
}

// UpdateStatus moves an order to the given status. The legality of the
// transition is checked against the currently stored status inside the
// statement, so two concurrent updates cannot both succeed on the same row.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidOrderTransition, current.Status, status)
	}

	query := `UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, id, status, current.Status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Status changed underneath us; the caller may retry against the
		// fresh state.
		return ErrInvalidOrderTransition
	}

	return nil
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func scanOrder(scan func(dest ...any) error) (*domain.Order, error) {
	order := &domain.Order{}
	var items []byte

	err := scan(
		&order.ID,
		&order.UserID,
		&items,
		&order.Total,
		&order.Status,
		&order.ShippingAddress.Name,
		&order.ShippingAddress.Street,
		&order.ShippingAddress.City,
		&order.ShippingAddress.Zip,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to decode order items: %w", err)
		}
	}

	return order, nil
}
