package dto

// CartItem is one line of the customer's cart.
type CartItem struct {
	ID            ID      `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OrderQuantity int     `json:"orderQuantity"`
	ItemImage     string  `json:"itemImage,omitempty"`
}

// Cart is the server-computed cart snapshot.
type Cart struct {
	ID            ID         `json:"id"`
	CustomerName  string     `json:"customerName"`
	CartValue     float64    `json:"cartValue"`
	DiscountValue float64    `json:"discountValue"`
	Items         []CartItem `json:"items"`
}

// Clone returns a deep copy so callers can patch items freely.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}

// Address is a saved delivery address.
type Address struct {
	ID          ID      `json:"id,omitempty"`
	AddressType string  `json:"addressType"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	PostalCode  string  `json:"postalCode"`
	Landmark    string  `json:"landmark,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	IsDefault   bool    `json:"isDefault,omitempty"`
}
