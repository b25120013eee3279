package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"electra/internal/cart"
	"electra/internal/domain"
	"electra/internal/repository"
	"electra/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthenticated rejects checkout without a usable identity. An
	// order must never persist with an empty or missing user id.
	ErrNotAuthenticated = errors.New("checkout requires an authenticated session")

	// ErrEmptyCart rejects checkout before any network call is made.
	ErrEmptyCart = errors.New("cannot check out an empty cart")
)

// DefaultTimeout bounds persistence adapter calls made during checkout.
const DefaultTimeout = 10 * time.Second

// PendingOrder is the durable reference written before redirecting to the
// hosted payment page. In-memory state does not survive the redirect; this
// record is what the next startup reconciles against.
type PendingOrder struct {
	OrderID   string    `json:"order_id"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is a successful checkout: the persisted order and the hosted
// payment URL to hand the user off to.
type Result struct {
	Order      *domain.Order `json:"order"`
	PaymentURL string        `json:"payment_url"`
}

// Reconciler converts a cart snapshot plus an authenticated session into a
// persisted order. Persistence is treated as atomic: either the order row
// exists with status pending, or nothing changed and the cart is intact.
type Reconciler struct {
	orders  repository.OrderRepository
	slot    storage.Slot
	payURL  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewReconciler creates a Reconciler. payURL is the hosted payment page the
// user is redirected to after order placement.
func NewReconciler(orders repository.OrderRepository, slot storage.Slot, payURL string, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		orders:  orders,
		slot:    slot,
		payURL:  payURL,
		timeout: DefaultTimeout,
		logger:  logger,
	}
}

// PlaceOrder runs the checkout transaction for the given store and session.
// The cart is snapshotted and the total computed at the moment of
// invocation; the snapshot and the clear happen inside the store's critical
// section so no concurrent mutation is lost. The cart is cleared only after
// the order persisted; on failure the cart is byte-for-byte unchanged and
// the adapter error is surfaced. The pending-order reference is written to
// durable storage before the payment URL is returned.
func (r *Reconciler) PlaceOrder(
	ctx context.Context,
	store *cart.Store,
	sess domain.Session,
	clientID string,
	addr domain.ShippingAddress,
) (*Result, error) {
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	userID, err := uuid.Parse(sess.UserID)
	if err != nil || userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if len(store.Items()) == 0 {
		return nil, ErrEmptyCart
	}

	var order *domain.Order
	err = store.Drain(ctx, func(items []domain.CartItem) error {
		// The precondition re-check guards against a concurrent clear
		// between the fast check above and entering the critical section.
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var total float64
		for _, item := range items {
			total += item.Price * float64(item.Quantity)
		}

		candidate := &domain.Order{
			ID:              domain.NewOrderID(),
			UserID:          userID,
			Items:           items,
			Total:           total,
			Status:          domain.OrderStatusPending,
			ShippingAddress: addr,
			CreatedAt:       time.Now(),
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		if err := r.orders.Create(callCtx, candidate); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return domain.Retryable(err)
			}
			return err
		}

		order = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.writePendingReference(ctx, clientID, order)

	r.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID.String()),
		zap.Float64("total", order.Total),
	)

	return &Result{Order: order, PaymentURL: r.PaymentURL(order)}, nil
}

// PaymentURL builds the hosted payment redirect for an order, carrying the
// order id and total so the flow can be reconciled after return.
func (r *Reconciler) PaymentURL(order *domain.Order) string {
	u, err := url.Parse(r.payURL)
	if err != nil {
		return r.payURL
	}
	q := u.Query()
	q.Set("order_id", order.ID)
	q.Set("total", strconv.FormatFloat(order.Total, 'f', 2, 64))
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolvePending is the startup reconciliation step for the payment
// redirect. It reads the pending-order reference for the client and loads
// the referenced order. The reference is removed once the order left the
// pending state (or no longer exists); while payment is still outstanding
// the reference stays so the next startup checks again. Returns nil when
// there is nothing pending.
func (r *Reconciler) ResolvePending(ctx context.Context, clientID string) (*domain.Order, error) {
	key := storage.PendingOrderKey(clientID)

	raw, err := r.slot.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrSlotEmpty) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read pending order reference: %w", err)
	}

	var pending PendingOrder
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		r.logger.Warn("Malformed pending order reference, discarding", zap.Error(err))
		_ = r.slot.Delete(ctx, key)
		return nil, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	order, err := r.orders.FindByID(callCtx, pending.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			_ = r.slot.Delete(ctx, key)
			return nil, nil
		}
		return nil, err
	}

	if order.Status != domain.OrderStatusPending {
		if err := r.slot.Delete(ctx, key); err != nil {
			r.logger.Warn("Failed to clear settled pending order reference", zap.Error(err))
		}
	}

	return order, nil
}

// writePendingReference stores the redirect survival record. The order is
// already persisted at this point, so a slot failure is logged rather than
// failing the checkout; the order remains discoverable through history.
func (r *Reconciler) writePendingReference(ctx context.Context, clientID string, order *domain.Order) {
	pending := PendingOrder{OrderID: order.ID, Total: order.Total, CreatedAt: order.CreatedAt}
	raw, err := json.Marshal(pending)
	if err != nil {
		r.logger.Warn("Failed to encode pending order reference", zap.Error(err))
		return
	}
	if err := r.slot.Set(ctx, storage.PendingOrderKey(clientID), string(raw)); err != nil {
		r.logger.Warn("Failed to write pending order reference",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
