// Package cart drives the cart screen: loading, optimistic quantity edits,
// address choice and the checkout handshake.
package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/payment"
)

// Backend is the part of the API the cart flow uses.
type Backend interface {
	GetCart(ctx context.Context) (*dto.Cart, error)
	ListAddresses(ctx context.Context) ([]dto.Address, error)
	UpdateCartItem(ctx context.Context, id dto.ID, quantity int) error
	RemoveCartItem(ctx context.Context, id dto.ID) error
	PlaceOrder(ctx context.Context, in dto.PlaceOrderRequest, idempotencyKey string) (*dto.PlacedOrder, error)
	VerifyPayment(ctx context.Context, v dto.PaymentVerification) (*dto.PaymentVerificationResult, error)
}

// patch is an optimistic edit layered over the last server snapshot.
// A confirmed patch stays visible until the refetch of generation
// untilGen (or a newer one) lands.
type patch struct {
	id       uint64
	itemID   dto.ID
	quantity int
	remove   bool
	untilGen uint64
}

// View is what the cart screen renders.
type View struct {
	// Cart is nil until the first successful load.
	Cart            *dto.Cart
	Addresses       []dto.Address
	SelectedAddress dto.ID
	Summary         Summary
	// Err is set while the latest load has failed.
	Err     error
	Pending int
	State   State
}

// Flow is safe for concurrent use.
type Flow struct {
	api      Backend
	gateway  payment.Gateway
	merchant payment.Merchant
	pricing  Pricing
	log      *zap.Logger
	newKey   func() string

	mu         sync.Mutex
	base       *dto.Cart
	addresses  []dto.Address
	selected   dto.ID
	patches    []patch
	nextPatch  uint64
	issuedGen  uint64
	appliedGen uint64
	loadErr    error
	state      State
	inFlight   bool
}

// Options configure a Flow.
type Options struct {
	Gateway  payment.Gateway
	Merchant payment.Merchant
	// Pricing defaults to DefaultPricing when nil.
	Pricing *Pricing
	Logger  *zap.Logger
}

// New constructs a Flow.
func New(backend Backend, opts Options) *Flow {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	pricing := DefaultPricing()
	if opts.Pricing != nil {
		pricing = *opts.Pricing
	}
	return &Flow{
		api:      backend,
		gateway:  opts.Gateway,
		merchant: opts.Merchant,
		pricing:  pricing,
		log:      log.Named("cart"),
		newKey:   uuid.NewString,
		state:    StateIdle,
	}
}

// Fetch loads the cart and the saved addresses together. Either both are
// applied or neither is.
func (f *Flow) Fetch(ctx context.Context) error {
	f.mu.Lock()
	f.issuedGen++
	gen := f.issuedGen
	f.mu.Unlock()

	return f.load(ctx, gen)
}

func (f *Flow) load(ctx context.Context, gen uint64) error {
	var (
		snapshot  *dto.Cart
		addresses []dto.Address
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := f.api.GetCart(gctx)
		snapshot = c
		return err
	})
	g.Go(func() error {
		a, err := f.api.ListAddresses(gctx)
		addresses = a
		return err
	})
	err := g.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen <= f.appliedGen {
		f.log.Debug("discarding stale cart load", zap.Uint64("generation", gen), zap.Uint64("applied", f.appliedGen))
		return err
	}
	f.appliedGen = gen
	f.settleLocked(gen)

	if err != nil {
		f.loadErr = err
		f.log.Warn("cart load failed", zap.Error(err))
		return err
	}

	if snapshot == nil {
		snapshot = &dto.Cart{}
	}
	f.base = snapshot
	f.addresses = addresses
	f.loadErr = nil
	if f.selected != "" && !f.hasAddressLocked(f.selected) {
		f.selected = ""
		if f.state == StateAddressSelected {
			f.state = StateIdle
		}
	}
	return nil
}

// settleLocked drops confirmed patches whose refetch has now landed.
func (f *Flow) settleLocked(gen uint64) {
	kept := f.patches[:0]
	for _, p := range f.patches {
		if p.untilGen != 0 && p.untilGen <= gen {
			continue
		}
		kept = append(kept, p)
	}
	f.patches = kept
}

// UpdateQuantity sets an item's quantity. Quantities below one are ignored
// without a request. The cart is refetched whether or not the update
// succeeds.
func (f *Flow) UpdateQuantity(ctx context.Context, itemID dto.ID, quantity int) error {
	if quantity < 1 {
		return nil
	}
	id := f.addPatch(patch{itemID: itemID, quantity: quantity})
	err := f.api.UpdateCartItem(ctx, itemID, quantity)
	return f.finishMutation(ctx, id, err)
}

// RemoveItem deletes an item, refetching afterwards either way.
func (f *Flow) RemoveItem(ctx context.Context, itemID dto.ID) error {
	id := f.addPatch(patch{itemID: itemID, remove: true})
	err := f.api.RemoveCartItem(ctx, itemID)
	return f.finishMutation(ctx, id, err)
}

// Increment and Decrement step the current quantity by one.
func (f *Flow) Increment(ctx context.Context, itemID dto.ID) error {
	q, ok := f.currentQuantity(itemID)
	if !ok {
		return api.NewValidationError("Item is not in your cart.")
	}
	return f.UpdateQuantity(ctx, itemID, q+1)
}

func (f *Flow) Decrement(ctx context.Context, itemID dto.ID) error {
	q, ok := f.currentQuantity(itemID)
	if !ok {
		return api.NewValidationError("Item is not in your cart.")
	}
	return f.UpdateQuantity(ctx, itemID, q-1)
}

func (f *Flow) currentQuantity(itemID dto.ID) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	view := f.projectLocked()
	if view == nil {
		return 0, false
	}
	for _, it := range view.Items {
		if it.ID == itemID {
			return it.OrderQuantity, true
		}
	}
	return 0, false
}

func (f *Flow) addPatch(p patch) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPatch++
	p.id = f.nextPatch
	f.patches = append(f.patches, p)
	return p.id
}

// finishMutation rolls back a rejected patch at once, or marks an accepted
// one to be dropped by the refetch, and then refetches.
func (f *Flow) finishMutation(ctx context.Context, patchID uint64, mutErr error) error {
	f.mu.Lock()
	f.issuedGen++
	gen := f.issuedGen
	for i := range f.patches {
		if f.patches[i].id != patchID {
			continue
		}
		if mutErr != nil {
			f.patches = append(f.patches[:i], f.patches[i+1:]...)
		} else {
			f.patches[i].untilGen = gen
		}
		break
	}
	f.mu.Unlock()

	if mutErr != nil {
		f.log.Warn("cart mutation rejected", zap.Error(mutErr))
	}
	loadErr := f.load(ctx, gen)
	if mutErr != nil {
		return mutErr
	}
	return loadErr
}

// projectLocked applies pending patches to the base snapshot.
func (f *Flow) projectLocked() *dto.Cart {
	if f.base == nil {
		return nil
	}
	out := f.base.Clone()
	for _, p := range f.patches {
		items := out.Items[:0]
		for _, it := range out.Items {
			if it.ID == p.itemID {
				if p.remove {
					continue
				}
				it.OrderQuantity = p.quantity
			}
			items = append(items, it)
		}
		out.Items = items
	}
	return out
}

// View returns the cart as it should be rendered now.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		SelectedAddress: f.selected,
		Err:             f.loadErr,
		Pending:         len(f.patches),
		State:           f.state,
	}
	if f.loadErr != nil {
		return v
	}
	v.Cart = f.projectLocked()
	v.Addresses = append([]dto.Address(nil), f.addresses...)
	if v.Cart != nil {
		v.Summary = f.pricing.Summarize(v.Cart.CartValue, v.Cart.DiscountValue)
	}
	return v
}

// SelectAddress picks the shipping address for checkout. The id must be one
// of the addresses from the last load.
func (f *Flow) SelectAddress(id dto.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.hasAddressLocked(id) {
		return api.NewValidationError(MsgUnknownAddress)
	}
	if f.inFlight {
		return ErrCheckoutInProgress
	}
	f.selected = id
	return f.setStateLocked(StateAddressSelected)
}

// Addresses returns the cached address list.
func (f *Flow) Addresses() []dto.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.Address(nil), f.addresses...)
}

func (f *Flow) hasAddressLocked(id dto.ID) bool {
	for _, a := range f.addresses {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Pricing returns the charges used for summaries.
func (f *Flow) Pricing() Pricing { return f.pricing }
