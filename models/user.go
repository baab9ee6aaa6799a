package models

const (
	RoleCustomer   = "customer"
	RoleRestaurant = "restaurant"
	RoleDelivery   = "delivery"
)

// Identity is the authenticated shopper as minted by the marketplace
// auth service. The storefront consumes it, it never creates one.
type Identity struct {
	ID              string  `json:"id"`
	Role            string  `json:"role"`
	Name            string  `json:"name"`
	FullAddress     string  `json:"full_address,omitempty"`
	District        string  `json:"district,omitempty"`
	Province        string  `json:"province,omitempty"`
	DeliveryBalance float64 `json:"delivery_balance,omitempty"`
}

// DeliverableAddress resolves the address an order ships to: the
// free-text full address when present, otherwise "district, province".
// ok is false when neither is usable.
func (u *Identity) DeliverableAddress() (addr string, ok bool) {
	if u == nil {
		return "", false
	}
	if u.FullAddress != "" {
		return u.FullAddress, true
	}
	if u.District != "" && u.Province != "" {
		return u.District + ", " + u.Province, true
	}
	return "", false
}
