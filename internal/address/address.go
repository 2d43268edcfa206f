// Package address manages the customer's saved delivery addresses.
package address

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
)

// DefaultType is used when an address has no type.
const DefaultType = "Home"

const (
	MsgAdded   = "Address added successfully"
	MsgUpdated = "Address updated successfully"
	MsgDeleted = "Address deleted successfully"
)

// Backend is the part of the API the address book uses.
type Backend interface {
	ListAddresses(ctx context.Context) ([]dto.Address, error)
	AddAddress(ctx context.Context, a dto.Address) error
	UpdateAddress(ctx context.Context, id dto.ID, a dto.Address) error
	DeleteAddress(ctx context.Context, id dto.ID) error
}

// Book is a read-through cache over the backend's address list.
type Book struct {
	api Backend
	log *zap.Logger

	mu     sync.Mutex
	cached []dto.Address
	loaded bool
}

// New constructs a Book.
func New(backend Backend, log *zap.Logger) *Book {
	if log == nil {
		log = zap.NewNop()
	}
	return &Book{api: backend, log: log.Named("address")}
}

// List returns the cached list, loading it on first use or when refresh
// is set.
func (b *Book) List(ctx context.Context, refresh bool) ([]dto.Address, error) {
	b.mu.Lock()
	if b.loaded && !refresh {
		out := append([]dto.Address(nil), b.cached...)
		b.mu.Unlock()
		return out, nil
	}
	b.mu.Unlock()

	list, err := b.api.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.cached = list
	b.loaded = true
	b.mu.Unlock()
	return append([]dto.Address(nil), list...), nil
}

// Get looks an address up in the cached list.
func (b *Book) Get(ctx context.Context, id dto.ID) (dto.Address, error) {
	list, err := b.List(ctx, false)
	if err != nil {
		return dto.Address{}, err
	}
	for _, a := range list {
		if a.ID == id {
			return a, nil
		}
	}
	return dto.Address{}, api.NewValidationError(fmt.Sprintf("Address %s not found.", id))
}

// Add saves a new address and returns the refreshed list.
func (b *Book) Add(ctx context.Context, a dto.Address) ([]dto.Address, error) {
	a = Normalize(a)
	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := b.api.AddAddress(ctx, a); err != nil {
		return nil, err
	}
	b.log.Debug("address added", zap.String("city", a.City))
	return b.List(ctx, true)
}

// Update replaces address id and returns the refreshed list.
func (b *Book) Update(ctx context.Context, id dto.ID, a dto.Address) ([]dto.Address, error) {
	if id.IsZero() {
		return nil, api.NewValidationError("Address id is required.")
	}
	a = Normalize(a)
	if err := Validate(a); err != nil {
		return nil, err
	}
	if err := b.api.UpdateAddress(ctx, id, a); err != nil {
		return nil, err
	}
	return b.List(ctx, true)
}

// Delete removes address id and returns the refreshed list.
func (b *Book) Delete(ctx context.Context, id dto.ID) ([]dto.Address, error) {
	if id.IsZero() {
		return nil, api.NewValidationError("Address id is required.")
	}
	if err := b.api.DeleteAddress(ctx, id); err != nil {
		return nil, err
	}
	return b.List(ctx, true)
}

// Normalize trims fields and fills the default type.
func Normalize(a dto.Address) dto.Address {
	a.AddressType = strings.TrimSpace(a.AddressType)
	if a.AddressType == "" {
		a.AddressType = DefaultType
	}
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Landmark = strings.TrimSpace(a.Landmark)
	return a
}

// Validate requires street, city, state and postal code.
func Validate(a dto.Address) error {
	var missing []string
	if a.Street == "" {
		missing = append(missing, "street")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.State == "" {
		missing = append(missing, "state")
	}
	if a.PostalCode == "" {
		missing = append(missing, "postal code")
	}
	if len(missing) > 0 {
		return api.NewValidationError("Please fill in " + strings.Join(missing, ", ") + ".")
	}
	return nil
}

// Format renders an address on one line.
func Format(a dto.Address) string {
	var b strings.Builder
	b.WriteString(a.Street)
	if a.Landmark != "" {
		b.WriteString(" (near " + a.Landmark + ")")
	}
	fmt.Fprintf(&b, ", %s, %s %s", a.City, a.State, a.PostalCode)
	return b.String()
}
