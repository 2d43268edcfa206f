package dto

// PlaceOrderRequest turns the current cart into an order.
type PlaceOrderRequest struct {
	CartID    ID `json:"cartId"`
	AddressID ID `json:"addressId"`
}

// PlacedOrder carries what the client needs to open the payment handoff.
type PlacedOrder struct {
	OrderID         ID      `json:"orderId"`
	TotalAmount     float64 `json:"totalAmount"`
	RazorpayOrderID string  `json:"razorpayOrderId"`
	Currency        string  `json:"currency,omitempty"`
}

// PaymentVerification is sent as query parameters to verify-payment.
type PaymentVerification struct {
	OrderID   string
	PaymentID string
	Signature string
}

// PaymentVerificationResult is the backend's answer to verify-payment.
type PaymentVerificationResult struct {
	OrderID ID     `json:"orderId,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// OrderStatus is the backend's order lifecycle state.
type OrderStatus string

const (
	OrderPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderProcessing     OrderStatus = "PROCESSING"
	OrderAccepted       OrderStatus = "ACCEPTED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCancelled      OrderStatus = "CANCELLED"
	OrderRejected       OrderStatus = "REJECTED"
)

// Label is the text shown next to an order.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPaymentPending:
		return "Awaiting payment"
	case OrderProcessing:
		return "Processing"
	case OrderAccepted:
		return "Accepted"
	case OrderPreparing:
		return "Preparing"
	case OrderOutForDelivery:
		return "On the way"
	case OrderDelivered:
		return "Delivered"
	case OrderCancelled:
		return "Cancelled"
	case OrderRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// OrderLine is one item inside a past order.
type OrderLine struct {
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is an entry of the customer's order history.
type Order struct {
	OrderID       ID          `json:"orderId"`
	OrderStatus   OrderStatus `json:"orderStatus"`
	OrderTime     string      `json:"orderTime"`
	TotalAmount   float64     `json:"totalAmount"`
	TotalDiscount float64     `json:"totalDiscount"`
	Items         []OrderLine `json:"orderItemDTOS"`
}
