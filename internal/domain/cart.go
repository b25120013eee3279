package domain

// CartItem is a product snapshot plus a quantity. A cart holds at most one
// entry per product id; repeated adds increment the quantity instead of
// duplicating the entry.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Cart is the user's working selection prior to order placement. The slice
// preserves insertion order so the UI renders items in the order they were
// added.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Subtotal is the sum of price*quantity over all items.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Count is the total number of units in the cart.
func (c Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}
