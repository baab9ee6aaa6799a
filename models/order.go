package models

// OrderItem is one line of an outbound order, in the wire shape the
// marketplace API expects.
type OrderItem struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// CreateOrderRequest is the create-order payload sent to the
// marketplace. All items belong to one restaurant by cart construction.
type CreateOrderRequest struct {
	RestaurantID    string      `json:"restaurantId"`
	OrderItems      []OrderItem `json:"orderItems"`
	CustomerAddress string      `json:"customerAddress"`
}

// OrderRecord is the marketplace's view of a created order. TotalAmount
// is the authoritative figure once an order exists; the storefront's own
// total is display-only.
type OrderRecord struct {
	ID          string  `json:"_id"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

// MenuItem is the product payload an add-to-cart request carries,
// as fetched from the marketplace menu endpoints.
type MenuItem struct {
	ID           string  `json:"_id"`
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	IsAvailable  bool    `json:"is_available"`
}
