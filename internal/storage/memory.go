package storage

import (
	"context"
	"sync"
)

// MemorySlot is an in-process Slot used by the kiosk when no Redis is
// configured and by tests. Safe for concurrent use.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySlot creates an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string]string)}
}

func (s *MemorySlot) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.values[key]
	if !ok {
		return "", ErrSlotEmpty
	}
	return val, nil
}

func (s *MemorySlot) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *MemorySlot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
