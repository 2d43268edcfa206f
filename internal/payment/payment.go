// Package payment models the handoff to a Razorpay-style payment gateway.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"
)

// Gateway error codes.
const (
	CodeCancelled = "PAYMENT_CANCELLED"
	CodeDeclined  = "BAD_REQUEST_ERROR"
	CodeInvalid   = "INVALID_OPTIONS"
)

// DefaultFailureDescription is shown when the gateway gives no reason.
const DefaultFailureDescription = "Payment could not be completed"

// Prefill seeds the payment sheet's customer fields.
type Prefill struct {
	Email   string `json:"email"`
	Contact string `json:"contact"`
	Name    string `json:"name"`
}

// Options is what the client hands to the gateway.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	OrderID     string  `json:"order_id"`
	Description string  `json:"description"`
	Name        string  `json:"name"`
	Image       string  `json:"image,omitempty"`
	Prefill     Prefill `json:"prefill"`
	ThemeColor  string  `json:"theme_color"`
}

// Result is a successful payment.
type Result struct {
	PaymentID string
	OrderID   string
	Signature string
}

// Error is a failed or cancelled payment.
type Error struct {
	Code        string
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return DefaultFailureDescription
	}
	return e.Description
}

// Gateway opens a payment for a gateway order and blocks until the
// customer pays, fails or cancels.
type Gateway interface {
	Open(ctx context.Context, opts Options) (*Result, error)
}

// AmountInSubunits converts a major-unit total to the gateway's integer
// subunits (paise, cents).
func AmountInSubunits(total float64) int64 {
	return int64(math.Round(total * 100))
}

// Sign computes hex(HMAC-SHA256(orderID + "|" + paymentID, secret)).
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	want, err := hex.DecodeString(Sign(orderID, paymentID, secret))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}

func validate(opts Options) error {
	switch {
	case opts.OrderID == "":
		return &Error{Code: CodeInvalid, Description: "gateway order id is missing"}
	case opts.Amount <= 0:
		return &Error{Code: CodeInvalid, Description: "amount must be positive"}
	}
	return nil
}
