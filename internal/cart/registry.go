package cart

import (
	"context"
	"sync"

	"electra/internal/storage"

	"go.uber.org/zap"
)

// Registry hands out one Store per client id, loading each from durable
// storage on first use. All requests for the same client share a Store, so
// its critical section covers concurrent mutations from parallel requests.
type Registry struct {
	slot   storage.Slot
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates a Registry backed by the given slot storage.
func NewRegistry(slot storage.Slot, logger *zap.Logger) *Registry {
	return &Registry{
		slot:   slot,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// Get returns the Store for a client, creating and loading it on first use.
func (r *Registry) Get(ctx context.Context, clientID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[clientID]; ok {
		return store
	}

	store := New(ctx, r.slot, storage.CartKey(clientID), r.logger)
	r.stores[clientID] = store
	return store
}
