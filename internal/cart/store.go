package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"electra/internal/domain"
	"electra/internal/storage"

	"go.uber.org/zap"
)

// Store owns the working cart for one client. Every mutation writes the full
// snapshot through to the durable slot before returning, so the in-memory
// state and the persisted state are always identical from the caller's
// perspective. A mutex serializes read-modify-write sequences.
type Store struct {
	mu     sync.Mutex
	slot   storage.Slot
	key    string
	logger *zap.Logger
	cart   domain.Cart
}

// New creates a Store bound to the slot key and loads any persisted
// snapshot. An absent or malformed snapshot yields an empty cart, never an
// error; a corrupt snapshot is logged and discarded.
func New(ctx context.Context, slot storage.Slot, key string, logger *zap.Logger) *Store {
	s := &Store{slot: slot, key: key, logger: logger}

	raw, err := slot.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotEmpty) {
			logger.Warn("Failed to load cart snapshot, starting empty",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return s
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		logger.Warn("Malformed cart snapshot, starting empty",
			zap.String("key", key),
			zap.Error(err),
		)
		return s
	}

	// Drop entries a malformed snapshot could smuggle in.
	for _, item := range cart.Items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		s.cart.Items = append(s.cart.Items, item)
	}
	return s
}

// AddItem merges qty units of product into the cart. An existing entry for
// the same product id has its quantity incremented; otherwise a new entry is
// appended. Stock is advisory only and not checked here.
func (s *Store) AddItem(ctx context.Context, product domain.Product, qty int) error {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart.Items {
		if s.cart.Items[i].ID == product.ID {
			s.cart.Items[i].Quantity += qty
			return s.persistLocked(ctx)
		}
	}

	s.cart.Items = append(s.cart.Items, domain.CartItem{Product: product, Quantity: qty})
	return s.persistLocked(ctx)
}

// SetQuantity sets the quantity of an existing entry, clamped to a minimum
// of 1. Removal is explicit via RemoveItem; a quantity request of zero or
// less keeps the entry at one unit. Unknown product ids are a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart.Items {
		if s.cart.Items[i].ID == productID {
			s.cart.Items[i].Quantity = qty
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// RemoveItem deletes the entry for productID. No-op if absent.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart.Items {
		if s.cart.Items[i].ID == productID {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Items = nil
	return s.persistLocked(ctx)
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Cart{Items: s.snapshotLocked()}
}

// Items returns a copy of the current cart entries.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subtotal returns the sum of price*quantity over the cart.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Subtotal()
}

// Drain runs fn with a frozen snapshot of the cart while holding the store
// lock, then clears the cart only if fn succeeds. No concurrent mutation can
// be observed between the snapshot and the clear, so items added during
// checkout are never silently dropped. On error the cart is left exactly as
// it was.
func (s *Store) Drain(ctx context.Context, fn func(items []domain.CartItem) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.snapshotLocked()); err != nil {
		return err
	}

	s.cart.Items = nil
	return s.persistLocked(ctx)
}

func (s *Store) snapshotLocked() []domain.CartItem {
	items := make([]domain.CartItem, len(s.cart.Items))
	copy(items, s.cart.Items)
	return items
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	if err := s.slot.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("failed to persist cart snapshot: %w", err)
	}
	return nil
}
