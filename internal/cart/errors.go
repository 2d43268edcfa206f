package cart

import (
	"errors"
	"fmt"

	"github.com/example/foodapp/internal/dto"
)

// Messages shown to the customer.
const (
	MsgSelectAddress   = "Please select a shipping address."
	MsgEmptyCart       = "Your cart is empty."
	MsgUnknownAddress  = "Please choose one of your saved addresses."
	MsgPaymentVerified = "Payment verified! Your order is confirmed."
	PaymentFailedTitle = "Payment Failed"
)

var (
	// ErrCheckoutInProgress rejects a second concurrent Checkout.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	// ErrIllegalTransition means the checkout state machine was misused.
	ErrIllegalTransition = errors.New("illegal transition of checkout state")
)

// PaymentFailedError is returned when the gateway fails or cancels, or the
// backend refuses the payment signature. The created order is left as is.
type PaymentFailedError struct {
	Title          string
	Message        string
	OrderID        dto.ID
	GatewayOrderID string
	Err            error
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *PaymentFailedError) Unwrap() error { return e.Err }
