// Package orders presents the customer's order history.
package orders

import (
	"context"
	"time"

	"github.com/example/foodapp/internal/dto"
)

// Backend is the part of the API the order list uses.
type Backend interface {
	ListOrders(ctx context.Context) ([]dto.Order, error)
}

// Line is one item of an order with its line total in cents.
type Line struct {
	Name       string
	Quantity   int
	PriceCents int64
	TotalCents int64
}

// Entry is an order ready for display.
type Entry struct {
	ID            dto.ID
	Status        dto.OrderStatus
	Label         string
	PlacedAt      time.Time
	RawTime       string
	Lines         []Line
	TotalCents    int64
	DiscountCents int64
	NetCents      int64
}

// FormatTime renders PlacedAt like "Mar 4, 2025, 07:30 PM", falling back to
// the backend's string when it could not be parsed.
func (e Entry) FormatTime() string {
	if e.PlacedAt.IsZero() {
		return e.RawTime
	}
	return e.PlacedAt.Format("Jan 2, 2006, 03:04 PM")
}

type Service struct {
	api Backend
}

func New(backend Backend) *Service {
	return &Service{api: backend}
}

// List fetches the order history.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewEntry(o))
	}
	return out, nil
}

// NewEntry derives display fields from a backend order.
func NewEntry(o dto.Order) Entry {
	e := Entry{
		ID:            o.OrderID,
		Status:        o.OrderStatus,
		Label:         o.OrderStatus.Label(),
		PlacedAt:      parseTime(o.OrderTime),
		RawTime:       o.OrderTime,
		TotalCents:    cents(o.TotalAmount),
		DiscountCents: cents(o.TotalDiscount),
	}
	e.NetCents = e.TotalCents - e.DiscountCents
	for _, it := range o.Items {
		price := cents(it.Price)
		e.Lines = append(e.Lines, Line{
			Name:       it.ItemName,
			Quantity:   it.Quantity,
			PriceCents: price,
			TotalCents: price * int64(it.Quantity),
		})
	}
	return e
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func cents(v float64) int64 {
	if v >= 0 {
		return int64(v*100 + 0.5)
	}
	return int64(v*100 - 0.5)
}
