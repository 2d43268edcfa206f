package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/cart"
	"github.com/example/foodapp/internal/catalog"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/profile"
)

func (a *App) home(ctx context.Context, _ []string) error {
	name := "USER"
	if u := a.session.State().User; u != nil && u.FullName != "" {
		name = u.FullName
	} else if p, err := a.profiles.Get(ctx); err == nil {
		name = profile.DisplayName(p)
	}

	h, err := a.catalog.Home(ctx)
	if err != nil {
		return withRetry(err, api.MsgLoadItemsFailed, "home")
	}

	fmt.Fprintf(a.out, "Hello, %s\n\n", name)

	fmt.Fprintln(a.out, "Best Offers")
	for _, o := range h.Offers {
		fmt.Fprintf(a.out, "  %-28s code %s\n", o.Text, o.Code)
	}

	fmt.Fprintln(a.out, "\nFood Categories")
	for _, c := range h.Categories {
		fmt.Fprintf(a.out, "  %s\n", c.Name)
	}

	fmt.Fprintln(a.out, "\nPopular Items")
	a.printItems(h.Items)
	return nil
}

func (a *App) search(ctx context.Context, args []string) error {
	fs := newFlags("search")
	category := fs.String("category", catalog.AllCategory, "category name")
	fs.SetOutput(a.err)
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := a.catalog.Search(ctx, *category, strings.Join(fs.Args(), " "))
	if err != nil {
		return withRetry(err, api.MsgLoadItemsFailed, "search")
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No items found")
		return nil
	}
	a.printItems(items)
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return api.NewValidationError("Usage: foodapp add <item-id>")
	}
	if err := a.catalog.AddToCart(ctx, dto.ID(args[0])); err != nil {
		return withTitle(defaultAlertTitle, err, api.MsgAddToCartFailed)
	}
	fmt.Fprintln(a.out, "Added to cart")
	return nil
}

func (a *App) printItems(items []dto.Item) {
	for _, it := range items {
		fmt.Fprintf(a.out, "  [%s] %-24s %8s", it.ID, it.Name, cart.FormatCents(cart.Cents(it.Price)))
		if it.CategoryName != "" {
			fmt.Fprintf(a.out, "  %s", it.CategoryName)
		}
		fmt.Fprintln(a.out)
	}
}
