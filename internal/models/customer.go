package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a mobile-number account. It is created on the first
// successful OTP verification.
type Customer struct {
	BaseModel
	Mobile    string            `gorm:"uniqueIndex;size:10" json:"mobile"`
	FullName  string            `json:"fullName"`
	Email     string            `json:"email"`
	Addresses []CustomerAddress `json:"addresses,omitempty"`
	Orders    []Order           `json:"-"`
}

// OTPVerification keeps track of codes sent to a mobile number. Only the
// bcrypt hash of the code is stored.
type OTPVerification struct {
	BaseModel
	Mobile    string     `gorm:"index" json:"mobile"`
	CodeHash  string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Attempts  int        `json:"attempts"`
	UsedAt    *time.Time `json:"used_at"`
}

// CustomerAddress is a saved delivery address.
type CustomerAddress struct {
	SerialModel
	CustomerID  uuid.UUID `gorm:"type:uuid;index" json:"-"`
	AddressType string    `json:"addressType"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postalCode"`
	Landmark    string    `json:"landmark,omitempty"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	IsDefault   bool      `json:"isDefault"`
}
