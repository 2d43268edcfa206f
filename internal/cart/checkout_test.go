package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/payment"
)

// recordingGateway captures the options it was opened with.
type recordingGateway struct {
	mu     sync.Mutex
	opened []payment.Options
	result *payment.Result
	err    error
	block  chan struct{}
}

func (g *recordingGateway) Open(_ context.Context, opts payment.Options) (*payment.Result, error) {
	g.mu.Lock()
	g.opened = append(g.opened, opts)
	g.mu.Unlock()
	if g.block != nil {
		<-g.block
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func TestCheckoutWithoutAddress(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, &recordingGateway{})

	_, err := f.Checkout(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindValidation))
	assert.Equal(t, MsgSelectAddress, api.Message(err, ""))
	assert.Zero(t, be.placeCalls.Load())
}

func TestCheckoutEmptyCart(t *testing.T) {
	be := newFakeBackend()
	be.cart.Items = nil
	f := newLoadedFlow(t, be, &recordingGateway{})
	require.NoError(t, f.SelectAddress("10"))

	_, err := f.Checkout(context.Background())
	assert.Equal(t, MsgEmptyCart, api.Message(err, ""))
	assert.Zero(t, be.placeCalls.Load())
}

func TestCheckoutSuccess(t *testing.T) {
	be := newFakeBackend()
	gw := &recordingGateway{result: &payment.Result{PaymentID: "pay_1", OrderID: "order_test77", Signature: "sig"}}
	f := newLoadedFlow(t, be, gw)
	f.newKey = func() string { return "idem-1" }
	require.NoError(t, f.SelectAddress("10"))
	fetches := be.getCartCalls.Load()

	receipt, err := f.Checkout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &Receipt{
		OrderID:        "77",
		GatewayOrderID: "order_test77",
		PaymentID:      "pay_1",
		TotalAmount:    12.79,
		Message:        MsgPaymentVerified,
	}, receipt)
	assert.Equal(t, StatePaymentVerified, f.State())

	assert.Equal(t, "idem-1", be.lastKey)
	assert.Equal(t, dto.PlaceOrderRequest{CartID: "cart-1", AddressID: "10"}, be.lastPlaceRequest)
	assert.Equal(t, dto.PaymentVerification{OrderID: "order_test77", PaymentID: "pay_1", Signature: "sig"}, be.lastVerification)

	require.Len(t, gw.opened, 1)
	opts := gw.opened[0]
	assert.Equal(t, int64(1279), opts.Amount)
	assert.Equal(t, "order_test77", opts.OrderID)
	assert.Equal(t, "Order #77", opts.Description)
	assert.Equal(t, "Asha", opts.Prefill.Name)
	assert.Equal(t, "INR", opts.Currency)

	assert.Equal(t, fetches+1, be.getCartCalls.Load(), "cart refetched after payment")
}

func TestCheckoutGatewayFailure(t *testing.T) {
	be := newFakeBackend()
	gw := &recordingGateway{err: &payment.Error{Code: payment.CodeDeclined, Description: "Card declined"}}
	f := newLoadedFlow(t, be, gw)
	require.NoError(t, f.SelectAddress("10"))

	_, err := f.Checkout(context.Background())

	var failed *PaymentFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, PaymentFailedTitle, failed.Title)
	assert.Equal(t, "Card declined", failed.Message)
	assert.Equal(t, dto.ID("77"), failed.OrderID)
	assert.Equal(t, StatePaymentFailed, f.State())

	assert.Equal(t, int32(1), be.placeCalls.Load(), "no retry")
	assert.Zero(t, be.verifyCalls.Load(), "no verify or cancel call")
}

func TestCheckoutGatewayFailureWithoutDescription(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, &recordingGateway{err: errors.New("sheet crashed")})
	require.NoError(t, f.SelectAddress("10"))

	_, err := f.Checkout(context.Background())
	var failed *PaymentFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, payment.DefaultFailureDescription, failed.Message)
}

func TestCheckoutVerificationRejected(t *testing.T) {
	be := newFakeBackend()
	be.verifyErr = &api.Error{Kind: api.KindServer, Status: 400, Message: "Invalid payment signature"}
	gw := &recordingGateway{result: &payment.Result{PaymentID: "pay_1", Signature: "bad"}}
	f := newLoadedFlow(t, be, gw)
	require.NoError(t, f.SelectAddress("10"))

	_, err := f.Checkout(context.Background())
	var failed *PaymentFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "Invalid payment signature", failed.Message)
	assert.Equal(t, StatePaymentFailed, f.State())
}

func TestCheckoutPlaceOrderFailure(t *testing.T) {
	be := newFakeBackend()
	be.placeErr = &api.Error{Kind: api.KindServer, Status: 400, Message: api.MsgCreateOrderFailed}
	gw := &recordingGateway{}
	f := newLoadedFlow(t, be, gw)
	require.NoError(t, f.SelectAddress("10"))

	_, err := f.Checkout(context.Background())
	assert.Equal(t, api.MsgCreateOrderFailed, api.Message(err, ""))
	assert.Empty(t, gw.opened)
	assert.Equal(t, StateAddressSelected, f.State())
}

func TestCheckoutRetryCreatesNewOrder(t *testing.T) {
	be := newFakeBackend()
	gw := &recordingGateway{err: &payment.Error{Code: payment.CodeCancelled}}
	f := newLoadedFlow(t, be, gw)
	require.NoError(t, f.SelectAddress("10"))

	keys := []string{"k1", "k2"}
	f.newKey = func() string {
		k := keys[0]
		keys = keys[1:]
		return k
	}

	_, err := f.Checkout(context.Background())
	require.Error(t, err)

	gw.err = nil
	gw.result = &payment.Result{PaymentID: "pay_2", Signature: "s"}
	_, err = f.Checkout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), be.placeCalls.Load())
	assert.Equal(t, "k2", be.lastKey)
}

func TestConcurrentCheckoutRejected(t *testing.T) {
	be := newFakeBackend()
	gw := &recordingGateway{
		result: &payment.Result{PaymentID: "pay_1", Signature: "s"},
		block:  make(chan struct{}),
	}
	f := newLoadedFlow(t, be, gw)
	require.NoError(t, f.SelectAddress("10"))

	done := make(chan error, 1)
	go func() {
		_, err := f.Checkout(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return f.State() == StatePaymentPending }, timeoutShort, tick)

	_, err := f.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.ErrorIs(t, f.SelectAddress("10"), ErrCheckoutInProgress)

	close(gw.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), be.placeCalls.Load())
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateIdle.CanTransitionTo(StateAddressSelected))
	assert.False(t, StateIdle.CanTransitionTo(StateOrderCreated))
	assert.True(t, StatePaymentPending.CanTransitionTo(StatePaymentFailed))
	assert.False(t, StatePaymentVerified.CanTransitionTo(StatePaymentPending))
	assert.True(t, StatePaymentFailed.IsTerminal())
	assert.False(t, StateOrderCreated.IsTerminal())
}
