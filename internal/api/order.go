package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/example/foodapp/internal/dto"
)

const (
	MsgCreateOrderFailed    = "Failed to create order"
	MsgProcessPaymentFailed = "Failed to process payment"
	MsgLoadOrdersFailed     = "Failed to fetch orders"
)

// PlaceOrder turns the cart into a backend order awaiting payment. A
// non-empty idempotencyKey makes retries of the same attempt safe.
func (c *Client) PlaceOrder(ctx context.Context, in dto.PlaceOrderRequest, idempotencyKey string) (*dto.PlacedOrder, error) {
	var env dto.Envelope[*dto.PlacedOrder]
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "/customer/place-order",
		body:           in,
		auth:           true,
		idempotencyKey: idempotencyKey,
		fallback:       MsgCreateOrderFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.RazorpayOrderID == "" {
		return nil, &Error{Kind: KindServer, Status: http.StatusOK, Message: MsgCreateOrderFailed}
	}
	return env.Data, nil
}

// VerifyPayment hands the gateway result to the backend for signature checks.
func (c *Client) VerifyPayment(ctx context.Context, v dto.PaymentVerification) (*dto.PaymentVerificationResult, error) {
	var env dto.Envelope[*dto.PaymentVerificationResult]
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/customer/verify-payment",
		query: url.Values{
			"orderId":   {v.OrderID},
			"paymentId": {v.PaymentID},
			"signature": {v.Signature},
		},
		auth:     true,
		fallback: MsgProcessPaymentFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return &dto.PaymentVerificationResult{Message: env.Message}, nil
	}
	return env.Data, nil
}

// ListOrders returns the customer's order history, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]dto.Order, error) {
	var env dto.Envelope[[]dto.Order]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/customer/orders",
		auth:     true,
		fallback: MsgLoadOrdersFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
