package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks an order through its lifecycle. Transitions are
// monotonic along pending -> paid -> shipped -> delivered; cancelled is a
// terminal state reachable from any non-terminal status.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusPaid:      1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal
// transition. Statuses only move forward; cancellation is allowed from any
// non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderStatusRank[next] > orderStatusRank[s]
}

// ShippingAddress is the destination collected during checkout.
type ShippingAddress struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

// Order is an immutable-after-creation record of a completed checkout. Items
// are a frozen copy of the cart at checkout time; Total is computed once at
// creation and never recomputed, so later catalog price changes cannot
// affect a placed order.
type Order struct {
	ID              string          `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Items           []CartItem      `json:"items" db:"items"`
	Total           float64         `json:"total" db:"total"`
	Status          OrderStatus     `json:"status" db:"status"`
	ShippingAddress ShippingAddress `json:"shipping_address" db:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// NewOrderID generates a fresh order identifier.
func NewOrderID() string {
	return fmt.Sprintf("ORD-%s", uuid.New().String())
}
