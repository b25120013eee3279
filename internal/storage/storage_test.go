package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotImplementations(t *testing.T) map[string]Slot {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Slot{
		"memory": NewMemorySlot(),
		"redis":  NewRedisSlot(client),
	}
}

func TestSlotRoundTrip(t *testing.T) {
	for name, slot := range slotImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := slot.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrSlotEmpty)

			require.NoError(t, slot.Set(ctx, "k", `{"items":[]}`))
			val, err := slot.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `{"items":[]}`, val)

			// Overwrite replaces, last write wins.
			require.NoError(t, slot.Set(ctx, "k", "second"))
			val, err = slot.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "second", val)

			require.NoError(t, slot.Delete(ctx, "k"))
			_, err = slot.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrSlotEmpty)

			// Deleting an absent key is not an error.
			assert.NoError(t, slot.Delete(ctx, "k"))
		})
	}
}

func TestSlotKeysAreIndependent(t *testing.T) {
	for name, slot := range slotImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, slot.Set(ctx, CartKey("u1"), "cart-1"))
			require.NoError(t, slot.Set(ctx, PendingOrderKey("u1"), "order-1"))

			val, err := slot.Get(ctx, CartKey("u1"))
			require.NoError(t, err)
			assert.Equal(t, "cart-1", val)

			require.NoError(t, slot.Delete(ctx, CartKey("u1")))

			// The pending reference survives clearing the cart.
			val, err = slot.Get(ctx, PendingOrderKey("u1"))
			require.NoError(t, err)
			assert.Equal(t, "order-1", val)
		})
	}
}

func TestKeyNamespaces(t *testing.T) {
	assert.Equal(t, "electra:cart:u1", CartKey("u1"))
	assert.Equal(t, "electra:pending_order:u1", PendingOrderKey("u1"))
	assert.NotEqual(t, CartKey("u1"), CartKey("u2"))
}
