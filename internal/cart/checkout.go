package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/payment"
)

// Receipt describes a verified payment.
type Receipt struct {
	OrderID        dto.ID
	GatewayOrderID string
	PaymentID      string
	TotalAmount    float64
	Message        string
}

// State returns the checkout state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Checkout runs create order, gateway, verify. Without a selected address
// it fails before any request. A gateway failure or a rejected signature
// yields *PaymentFailedError and no further backend call; the created order
// is neither retried nor cancelled. Calling Checkout again starts a new
// order.
func (f *Flow) Checkout(ctx context.Context) (*Receipt, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if f.selected == "" {
		f.mu.Unlock()
		return nil, api.NewValidationError(MsgSelectAddress)
	}
	current := f.projectLocked()
	if current == nil || len(current.Items) == 0 {
		f.mu.Unlock()
		return nil, api.NewValidationError(MsgEmptyCart)
	}
	if f.gateway == nil {
		f.mu.Unlock()
		return nil, errors.New("cart: no payment gateway configured")
	}
	if err := f.setStateLocked(StateAddressSelected); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.inFlight = true
	req := dto.PlaceOrderRequest{CartID: current.ID, AddressID: f.selected}
	customerName := current.CustomerName
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	key := f.newKey()
	log := f.log.With(zap.String("idempotency_key", key))

	order, err := f.api.PlaceOrder(ctx, req, key)
	if err != nil {
		log.Warn("place order failed", zap.Error(err))
		return nil, err
	}
	f.setState(StateOrderCreated)
	log = log.With(zap.String("order_id", order.OrderID.String()), zap.String("gateway_order_id", order.RazorpayOrderID))

	opts := f.merchant.OptionsFor(order.OrderID.String(), order.RazorpayOrderID, order.TotalAmount, customerName)
	if order.Currency != "" {
		opts.Currency = order.Currency
	}
	f.setState(StatePaymentPending)

	result, err := f.gateway.Open(ctx, opts)
	if err != nil {
		f.setState(StatePaymentFailed)
		desc := payment.DefaultFailureDescription
		var payErr *payment.Error
		if errors.As(err, &payErr) && payErr.Description != "" {
			desc = payErr.Description
		}
		log.Warn("payment failed", zap.Error(err))
		return nil, &PaymentFailedError{
			Title:          PaymentFailedTitle,
			Message:        desc,
			OrderID:        order.OrderID,
			GatewayOrderID: order.RazorpayOrderID,
			Err:            err,
		}
	}

	_, err = f.api.VerifyPayment(ctx, dto.PaymentVerification{
		OrderID:   order.RazorpayOrderID,
		PaymentID: result.PaymentID,
		Signature: result.Signature,
	})
	if err != nil {
		f.setState(StatePaymentFailed)
		log.Warn("payment verification failed", zap.Error(err))
		return nil, &PaymentFailedError{
			Title:          PaymentFailedTitle,
			Message:        api.Message(err, api.MsgProcessPaymentFailed),
			OrderID:        order.OrderID,
			GatewayOrderID: order.RazorpayOrderID,
			Err:            err,
		}
	}
	f.setState(StatePaymentVerified)
	log.Info("order paid", zap.String("payment_id", result.PaymentID))

	if err := f.Fetch(ctx); err != nil {
		log.Warn("refresh after checkout failed", zap.Error(err))
	}

	return &Receipt{
		OrderID:        order.OrderID,
		GatewayOrderID: order.RazorpayOrderID,
		PaymentID:      result.PaymentID,
		TotalAmount:    order.TotalAmount,
		Message:        MsgPaymentVerified,
	}, nil
}

func (f *Flow) setState(next State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.setStateLocked(next); err != nil {
		f.log.Error("checkout state", zap.String("from", f.state.String()), zap.String("to", next.String()), zap.Error(err))
	}
}

func (f *Flow) setStateLocked(next State) error {
	if f.state == next && next == StateAddressSelected {
		return nil
	}
	if !f.state.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	f.state = next
	return nil
}
