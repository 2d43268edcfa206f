package models

import (
	"time"

	"github.com/google/uuid"
)

// Order lifecycle states.
const (
	OrderStatusPaymentPending = "PAYMENT_PENDING"
	OrderStatusProcessing     = "PROCESSING"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
)

// Order is created from a cart and paid through the gateway.
type Order struct {
	SerialModel
	CustomerID      uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_order_idempotency"`
	Customer        *Customer
	AddressID       uint
	Status          string `gorm:"index"`
	OrderTime       time.Time
	Subtotal        float64
	DeliveryFee     float64
	Tax             float64
	TotalDiscount   float64
	TotalAmount     float64
	Currency        string
	RazorpayOrderID string `gorm:"uniqueIndex"`
	PaymentID       string
	// IdempotencyKey is NULL when the client sent none, so the unique
	// index only constrains keyed requests.
	IdempotencyKey *string `gorm:"uniqueIndex:idx_order_idempotency"`
	Items          []OrderItem
}

// OrderItem is a priced snapshot of a cart line.
type OrderItem struct {
	SerialModel
	OrderID  uint `gorm:"index"`
	ItemID   uint
	ItemName string
	Quantity int
	Price    float64
}

// PaymentAttempt records every signature check against an order, accepted
// or not.
type PaymentAttempt struct {
	SerialModel
	OrderID         uint   `gorm:"index"`
	RazorpayOrderID string `gorm:"index"`
	PaymentID       string
	Signature       string
	Accepted        bool
	Reason          string
	VerifiedAt      time.Time
}
