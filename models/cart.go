package models

import "time"

// CartLine is one product entry in a shopper's cart.
type CartLine struct {
	MenuItemID   string  `json:"menu_item_id"`
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}

// Cart holds the lines of a single shopper. Lines keep insertion order
// for display stability; all lines belong to one restaurant.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RestaurantID returns the restaurant all lines belong to, or "" when
// the cart is empty.
func (c *Cart) RestaurantID() string {
	if len(c.Lines) == 0 {
		return ""
	}
	return c.Lines[0].RestaurantID
}

// TotalItemCount is the sum of line quantities (cart badge count).
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Subtotal is recomputed from scratch on every call; rounding happens
// only at display time.
func (c *Cart) Subtotal() float64 {
	total := 0.0
	for _, line := range c.Lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// LineIndex returns the position of the line holding menuItemID, or -1.
func (c *Cart) LineIndex(menuItemID string) int {
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}
