// Package catalog serves the home and search screens.
package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/dto"
)

// AllCategory selects every item in Search.
const AllCategory = "All"

// Offer is a promotional banner on the home screen.
type Offer struct {
	ID   string
	Text string
	Code string
}

// Offers is the fixed list of promotions shown on the home screen.
var Offers = []Offer{
	{ID: "1", Text: "50% OFF up to ₹100", Code: "FOODIE50"},
	{ID: "2", Text: "30% OFF on all orders", Code: "HUNGRY30"},
	{ID: "3", Text: "Free delivery on first order", Code: "FREEDEL"},
}

// Backend is the part of the API the catalog uses.
type Backend interface {
	Categories(ctx context.Context) ([]dto.Category, error)
	Items(ctx context.Context) ([]dto.Item, error)
	ItemsByCategory(ctx context.Context, categoryID dto.ID) ([]dto.Item, error)
	AddToCart(ctx context.Context, itemID dto.ID) error
}

type Catalog struct {
	api Backend
	log *zap.Logger
}

func New(backend Backend, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{api: backend, log: log.Named("catalog")}
}

func (c *Catalog) Categories(ctx context.Context) ([]dto.Category, error) {
	return c.api.Categories(ctx)
}

func (c *Catalog) Items(ctx context.Context) ([]dto.Item, error) {
	return c.api.Items(ctx)
}

func (c *Catalog) ItemsByCategory(ctx context.Context, categoryID dto.ID) ([]dto.Item, error) {
	return c.api.ItemsByCategory(ctx, categoryID)
}

// Search lists the items of category (by name, case-insensitive; "" or
// "All" for every item) whose name contains query, ignoring case.
func (c *Catalog) Search(ctx context.Context, category, query string) ([]dto.Item, error) {
	category = strings.TrimSpace(category)

	var (
		items []dto.Item
		err   error
	)
	if category == "" || strings.EqualFold(category, AllCategory) {
		items, err = c.api.Items(ctx)
	} else {
		var id dto.ID
		id, err = c.categoryID(ctx, category)
		if err != nil {
			return nil, err
		}
		items, err = c.api.ItemsByCategory(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return Filter(items, query), nil
}

func (c *Catalog) categoryID(ctx context.Context, name string) (dto.ID, error) {
	cats, err := c.api.Categories(ctx)
	if err != nil {
		return "", err
	}
	for _, cat := range cats {
		if strings.EqualFold(cat.Name, name) {
			return cat.ID, nil
		}
	}
	return "", api.NewValidationError("Unknown category \"" + name + "\".")
}

// Filter keeps items whose name contains query, ignoring case.
func Filter(items []dto.Item, query string) []dto.Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]dto.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

// AddToCart adds one unit of itemID to the customer's cart.
func (c *Catalog) AddToCart(ctx context.Context, itemID dto.ID) error {
	if itemID.IsZero() {
		return api.NewValidationError("Item id is required.")
	}
	if err := c.api.AddToCart(ctx, itemID); err != nil {
		return err
	}
	c.log.Debug("item added to cart", zap.String("item_id", itemID.String()))
	return nil
}

// Home is everything the home screen shows.
type Home struct {
	Offers     []Offer
	Categories []dto.Category
	Items      []dto.Item
}

// Home loads categories and items together.
func (c *Catalog) Home(ctx context.Context) (*Home, error) {
	home := &Home{Offers: Offers}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := c.api.Categories(gctx)
		home.Categories = cats
		return err
	})
	g.Go(func() error {
		items, err := c.api.Items(gctx)
		home.Items = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return home, nil
}
