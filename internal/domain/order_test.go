package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, status := range []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, status.Valid(), "%s should be valid", status)
	}
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusTransitionsOnlyMoveForward(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusPaid, false},
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCancellationAllowedFromNonTerminalStates(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusCancelled))

	// Terminal states cannot change at all.
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPaid))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}

func TestNewOrderIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewOrderID()
		assert.True(t, strings.HasPrefix(id, "ORD-"), "id %q should carry the ORD- prefix", id)
		assert.False(t, seen[id], "order ids must not repeat")
		seen[id] = true
	}
}

func TestCartDerivedTotals(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Product: Product{ID: "a", Price: 10}, Quantity: 2},
		{Product: Product{ID: "b", Price: 2.5}, Quantity: 4},
	}}

	assert.InDelta(t, 30, cart.Subtotal(), 1e-9)
	assert.Equal(t, 6, cart.Count())

	empty := Cart{}
	assert.Zero(t, empty.Subtotal())
	assert.Zero(t, empty.Count())
}

func TestSessionAuthenticated(t *testing.T) {
	assert.False(t, Session{State: SessionUnresolved}.Authenticated())
	assert.False(t, Session{State: SessionAnonymous}.Authenticated())
	assert.False(t, Session{State: SessionAuthenticated}.Authenticated())
	assert.True(t, Session{State: SessionAuthenticated, UserID: "abc"}.Authenticated())
}
