package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrSlotEmpty is returned by Get when no value is stored under the key.
var ErrSlotEmpty = errors.New("storage slot is empty")

// Slot is a durable string key-value store scoped to a client. It backs the
// cart snapshot that must survive reloads and the pending-order reference
// that must survive the external payment redirect.
type Slot interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// CartKey is the slot key holding the serialized cart for a client.
func CartKey(clientID string) string {
	return fmt.Sprintf("electra:cart:%s", clientID)
}

// PendingOrderKey is the slot key holding the order reference written before
// redirecting to the hosted payment page.
func PendingOrderKey(clientID string) string {
	return fmt.Sprintf("electra:pending_order:%s", clientID)
}
