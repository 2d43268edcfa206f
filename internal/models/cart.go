package models

import "github.com/google/uuid"

// Cart is the single open cart of a customer.
type Cart struct {
	SerialModel
	CustomerID uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	Customer   *Customer  `gorm:"constraint:OnDelete:CASCADE"`
	Items      []CartItem `gorm:"constraint:OnDelete:CASCADE"`
}

// CartItem is one menu item in a cart. The pair (cart, item) is unique.
type CartItem struct {
	SerialModel
	CartID   uint  `gorm:"uniqueIndex:idx_cart_item"`
	ItemID   uint  `gorm:"uniqueIndex:idx_cart_item"`
	Item     *Item `gorm:"constraint:OnDelete:CASCADE"`
	Quantity int
}
