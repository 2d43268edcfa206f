package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/payment"
)

// fakeBackend is an in-memory cart server. Hooks, when set, run before the
// default behaviour and may block or fail the call.
type fakeBackend struct {
	mu        sync.Mutex
	cart      dto.Cart
	addresses []dto.Address

	getCartHook func(ctx context.Context) (*dto.Cart, error)
	updateHook  func(ctx context.Context, id dto.ID, q int) error
	removeErr   error
	placeErr    error
	verifyErr   error

	getCartCalls atomic.Int32
	updateCalls  atomic.Int32
	placeCalls   atomic.Int32
	verifyCalls  atomic.Int32

	lastKey          string
	lastPlaceRequest dto.PlaceOrderRequest
	lastVerification dto.PaymentVerification
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cart: dto.Cart{
			ID:            "cart-1",
			CustomerName:  "Asha",
			CartValue:     10.00,
			DiscountValue: 1.00,
			Items: []dto.CartItem{
				{ID: "1", Name: "Masala Dosa", Price: 4.00, OrderQuantity: 1},
				{ID: "2", Name: "Paneer Tikka", Price: 6.00, OrderQuantity: 1},
			},
		},
		addresses: []dto.Address{
			{ID: "10", AddressType: "Home", Street: "1 MG Road", City: "Pune", State: "MH", PostalCode: "411001"},
		},
	}
}

func (b *fakeBackend) snapshot() *dto.Cart {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cart.Clone()
}

func (b *fakeBackend) recalc() {
	total := 0.0
	for _, it := range b.cart.Items {
		total += it.Price * float64(it.OrderQuantity)
	}
	b.cart.CartValue = total
}

func (b *fakeBackend) GetCart(ctx context.Context) (*dto.Cart, error) {
	b.getCartCalls.Add(1)
	if b.getCartHook != nil {
		return b.getCartHook(ctx)
	}
	return b.snapshot(), nil
}

func (b *fakeBackend) ListAddresses(context.Context) ([]dto.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]dto.Address(nil), b.addresses...), nil
}

func (b *fakeBackend) UpdateCartItem(ctx context.Context, id dto.ID, q int) error {
	b.updateCalls.Add(1)
	if b.updateHook != nil {
		if err := b.updateHook(ctx, id, q); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.cart.Items {
		if b.cart.Items[i].ID == id {
			b.cart.Items[i].OrderQuantity = q
		}
	}
	b.recalc()
	return nil
}

func (b *fakeBackend) RemoveCartItem(_ context.Context, id dto.ID) error {
	if b.removeErr != nil {
		return b.removeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.cart.Items[:0]
	for _, it := range b.cart.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	b.cart.Items = items
	b.recalc()
	return nil
}

func (b *fakeBackend) PlaceOrder(_ context.Context, in dto.PlaceOrderRequest, key string) (*dto.PlacedOrder, error) {
	b.placeCalls.Add(1)
	b.mu.Lock()
	b.lastKey = key
	b.lastPlaceRequest = in
	b.mu.Unlock()
	if b.placeErr != nil {
		return nil, b.placeErr
	}
	return &dto.PlacedOrder{OrderID: "77", TotalAmount: 12.79, RazorpayOrderID: "order_test77"}, nil
}

func (b *fakeBackend) VerifyPayment(_ context.Context, v dto.PaymentVerification) (*dto.PaymentVerificationResult, error) {
	b.verifyCalls.Add(1)
	b.mu.Lock()
	b.lastVerification = v
	b.mu.Unlock()
	if b.verifyErr != nil {
		return nil, b.verifyErr
	}
	return &dto.PaymentVerificationResult{Status: "PROCESSING"}, nil
}

func newLoadedFlow(t *testing.T, be *fakeBackend, gw payment.Gateway) *Flow {
	t.Helper()
	f := New(be, Options{Gateway: gw, Merchant: payment.DefaultMerchant("rzp_test")})
	require.NoError(t, f.Fetch(context.Background()))
	return f
}

func TestFetchAppliesCartAndAddresses(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)

	v := f.View()
	require.NoError(t, v.Err)
	require.NotNil(t, v.Cart)
	assert.Len(t, v.Cart.Items, 2)
	assert.Len(t, v.Addresses, 1)
	assert.Equal(t, StateIdle, v.State)
}

func TestFetchFailureShowsError(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)

	boom := &api.Error{Kind: api.KindTransport, Message: api.MsgLoadCartFailed}
	be.getCartHook = func(context.Context) (*dto.Cart, error) { return nil, boom }
	require.ErrorIs(t, f.Fetch(context.Background()), boom)

	v := f.View()
	assert.ErrorIs(t, v.Err, boom)
	assert.Nil(t, v.Cart)

	be.getCartHook = nil
	require.NoError(t, f.Fetch(context.Background()))
	assert.NoError(t, f.View().Err)
	assert.NotNil(t, f.View().Cart)
}

func TestUpdateQuantityBelowOneIsNoop(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)
	before := f.View()
	fetches := be.getCartCalls.Load()

	require.NoError(t, f.UpdateQuantity(context.Background(), "1", 0))
	require.NoError(t, f.UpdateQuantity(context.Background(), "1", -3))

	assert.Equal(t, before, f.View())
	assert.Zero(t, be.updateCalls.Load())
	assert.Equal(t, fetches, be.getCartCalls.Load())
}

func TestMutationConvergesOnServerState(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)
	ctx := context.Background()

	require.NoError(t, f.UpdateQuantity(ctx, "1", 3))
	v := f.View()
	assert.Equal(t, be.snapshot(), v.Cart)
	assert.Zero(t, v.Pending)
	assert.InDelta(t, 18.0, v.Cart.CartValue, 1e-9)

	require.NoError(t, f.RemoveItem(ctx, "2"))
	v = f.View()
	assert.Equal(t, be.snapshot(), v.Cart)
	assert.Len(t, v.Cart.Items, 1)
}

func TestOptimisticPatchVisibleWhileInFlight(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	be.updateHook = func(context.Context, dto.ID, int) error {
		close(entered)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.UpdateQuantity(context.Background(), "2", 5) }()

	<-entered
	v := f.View()
	assert.Equal(t, 1, v.Pending)
	assert.Equal(t, 5, v.Cart.Items[1].OrderQuantity)

	close(release)
	require.NoError(t, <-done)
	assert.Zero(t, f.View().Pending)
	assert.Equal(t, 5, f.View().Cart.Items[1].OrderQuantity)
}

func TestRejectedMutationRollsBack(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)

	reject := &api.Error{Kind: api.KindServer, Status: 400, Message: "Only 2 left"}
	be.updateHook = func(context.Context, dto.ID, int) error { return reject }

	err := f.UpdateQuantity(context.Background(), "1", 9)
	require.ErrorIs(t, err, reject)
	assert.Equal(t, "Only 2 left", api.Message(err, api.MsgUpdateQuantityFailed))

	v := f.View()
	assert.Zero(t, v.Pending)
	assert.Equal(t, 1, v.Cart.Items[0].OrderQuantity)
	assert.Equal(t, int32(2), be.getCartCalls.Load(), "refetched after the failed update")
}

func TestRejectedRemoveRollsBack(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)
	be.removeErr = &api.Error{Kind: api.KindServer, Status: 404, Message: api.MsgRemoveItemFailed}

	require.Error(t, f.RemoveItem(context.Background(), "1"))
	assert.Len(t, f.View().Cart.Items, 2)
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	be := newFakeBackend()
	f := New(be, Options{})

	old := be.snapshot()
	entered := make(chan struct{})
	release := make(chan struct{})
	var first atomic.Bool
	first.Store(true)
	be.getCartHook = func(context.Context) (*dto.Cart, error) {
		if first.CompareAndSwap(true, false) {
			close(entered)
			<-release
			return old, nil
		}
		return be.snapshot(), nil
	}

	slow := make(chan error, 1)
	go func() { slow <- f.Fetch(context.Background()) }()
	<-entered

	require.NoError(t, be.UpdateCartItem(context.Background(), "1", 4))
	require.NoError(t, f.Fetch(context.Background()))

	close(release)
	require.NoError(t, <-slow)

	v := f.View()
	assert.Equal(t, 4, v.Cart.Items[0].OrderQuantity, "older response must not overwrite newer state")
}

func TestIncrementDecrement(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)
	ctx := context.Background()

	require.NoError(t, f.Increment(ctx, "1"))
	assert.Equal(t, 2, f.View().Cart.Items[0].OrderQuantity)

	require.NoError(t, f.Decrement(ctx, "1"))
	require.NoError(t, f.Decrement(ctx, "1"))
	assert.Equal(t, 1, f.View().Cart.Items[0].OrderQuantity, "decrement never goes below one")

	assert.True(t, api.IsKind(f.Increment(ctx, "nope"), api.KindValidation))
}

func TestSelectAddress(t *testing.T) {
	f := newLoadedFlow(t, newFakeBackend(), nil)

	err := f.SelectAddress("999")
	assert.True(t, api.IsKind(err, api.KindValidation))

	require.NoError(t, f.SelectAddress("10"))
	assert.Equal(t, StateAddressSelected, f.State())
	assert.Equal(t, dto.ID("10"), f.View().SelectedAddress)
}

func TestSummaryUsesServerCartValue(t *testing.T) {
	f := newLoadedFlow(t, newFakeBackend(), nil)

	s := f.View().Summary
	assert.Equal(t, Summary{Subtotal: 1000, DeliveryFee: 299, Tax: 80, Discount: 100, Total: 1279}, s)
	assert.Equal(t, "$12.79", FormatCents(s.Total))
}

func TestConcurrentMutationsConverge(t *testing.T) {
	be := newFakeBackend()
	f := newLoadedFlow(t, be, nil)

	var wg sync.WaitGroup
	for q := 2; q <= 6; q++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			assert.NoError(t, f.UpdateQuantity(context.Background(), "1", q))
		}(q)
	}
	wg.Wait()
	require.NoError(t, f.Fetch(context.Background()))

	v := f.View()
	assert.Zero(t, v.Pending)
	assert.Equal(t, be.snapshot(), v.Cart)
}

func TestPricingCustomFee(t *testing.T) {
	p := NewPricing(0, 0.05)
	s := p.Summarize(20, 0)
	assert.Equal(t, int64(2100), s.Total)
	assert.Equal(t, "-$0.50", FormatCents(-50))
}

func TestZeroPricingIsKept(t *testing.T) {
	be := newFakeBackend()
	be.cart.DiscountValue = 0
	free := NewPricing(0, 0)
	f := New(be, Options{Pricing: &free})
	require.NoError(t, f.Fetch(context.Background()))

	s := f.View().Summary
	assert.Equal(t, int64(0), s.DeliveryFee)
	assert.Equal(t, int64(0), s.Tax)
	assert.Equal(t, int64(1000), s.Total)
	assert.Equal(t, free, f.Pricing())
}

func TestNilPricingUsesDefaults(t *testing.T) {
	f := New(newFakeBackend(), Options{})
	assert.Equal(t, DefaultPricing(), f.Pricing())
}

const (
	timeoutShort = 2 * time.Second
	tick         = 5 * time.Millisecond
)
