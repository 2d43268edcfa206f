package cli

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/example/foodapp/internal/address"
	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/cart"
	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/profile"
)

func (a *App) ordersCmd(ctx context.Context, _ []string) error {
	entries, err := a.orders.List(ctx)
	if err != nil {
		return withRetry(err, api.MsgLoadOrdersFailed, "orders")
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No Orders Yet")
		fmt.Fprintln(a.out, "Your order history will appear here")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(a.out, "Order #%s  %s  %s\n", e.ID, e.Label, e.FormatTime())
		for _, l := range e.Lines {
			fmt.Fprintf(a.out, "  %-24s x%-3d %8s\n", l.Name, l.Quantity, cart.FormatCents(l.TotalCents))
		}
		if e.DiscountCents != 0 {
			fmt.Fprintf(a.out, "  %-29s %8s\n", "Discount", cart.FormatCents(-e.DiscountCents))
		}
		fmt.Fprintf(a.out, "  %-29s %8s\n\n", "Total", cart.FormatCents(e.NetCents))
	}
	return nil
}

func (a *App) profileCmd(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "edit" {
		return a.editProfile(ctx, args[1:])
	}
	if len(args) > 0 {
		return api.NewValidationError("Usage: foodapp profile [edit --name N --email E]")
	}

	p, err := a.profiles.Get(ctx)
	if err != nil {
		return withRetry(err, api.MsgLoadProfileFailed, "profile")
	}
	fmt.Fprintln(a.out, profile.DisplayName(p))
	fmt.Fprintf(a.out, "  Mobile: %s %s\n", countryCode, p.Mobile)
	if p.Email != "" {
		fmt.Fprintf(a.out, "  Email:  %s\n", p.Email)
	}
	fmt.Fprintf(a.out, "  Processing orders: %d\n", p.ProcessingOrdersCount)
	fmt.Fprintf(a.out, "  Delivered orders:  %d\n", p.DeliveredOrdersCount)
	if len(p.Addresses) > 0 {
		fmt.Fprintln(a.out, "  Addresses:")
		for _, addr := range p.Addresses {
			fmt.Fprintf(a.out, "    [%s] %s: %s\n", addr.ID, addr.AddressType, address.Format(addr))
		}
	}
	return nil
}

// editProfile starts from the saved profile, like the edit screen, and
// overrides the fields given on the command line.
func (a *App) editProfile(ctx context.Context, args []string) error {
	fs := newFlags("profile edit")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	fs.SetOutput(a.err)
	if err := fs.Parse(args); err != nil {
		return err
	}

	current, err := a.profiles.Get(ctx)
	if err != nil {
		return withTitle(defaultAlertTitle, err, api.MsgLoadProfileFailed)
	}
	form := profile.Form{FullName: current.FullName, Email: current.Email}
	if fs.Changed("name") {
		form.FullName = *name
	}
	if fs.Changed("email") {
		form.Email = *email
	}

	if err := a.profiles.Update(ctx, form); err != nil {
		return withTitle(defaultAlertTitle, err, api.MsgUpdateProfileFailed)
	}
	fmt.Fprintf(a.out, "Success: %s\n", profile.MsgUpdated)
	return nil
}

func (a *App) addressCmd(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		list, err := a.book.List(ctx, true)
		if err != nil {
			return withRetry(err, api.MsgLoadAddressesFailed, "address list")
		}
		a.printAddresses(list)
		return nil
	case "add":
		fs, form := addressFlags("address add")
		fs.SetOutput(a.err)
		if err := fs.Parse(args); err != nil {
			return err
		}
		list, err := a.book.Add(ctx, form.address(dto.Address{}, fs))
		if err != nil {
			return withTitle(defaultAlertTitle, err, api.MsgAddAddressFailed)
		}
		fmt.Fprintf(a.out, "Success: %s\n", address.MsgAdded)
		a.printAddresses(list)
		return nil
	case "update":
		fs, form := addressFlags("address update")
		fs.SetOutput(a.err)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return api.NewValidationError("Usage: foodapp address update <id> [flags]")
		}
		id := dto.ID(fs.Arg(0))
		existing, err := a.book.Get(ctx, id)
		if err != nil {
			return withTitle(defaultAlertTitle, err, api.MsgUpdateAddressFailed)
		}
		list, err := a.book.Update(ctx, id, form.address(existing, fs))
		if err != nil {
			return withTitle(defaultAlertTitle, err, api.MsgUpdateAddressFailed)
		}
		fmt.Fprintf(a.out, "Success: %s\n", address.MsgUpdated)
		a.printAddresses(list)
		return nil
	case "delete":
		if len(args) != 1 {
			return api.NewValidationError("Usage: foodapp address delete <id>")
		}
		list, err := a.book.Delete(ctx, dto.ID(args[0]))
		if err != nil {
			return withTitle(defaultAlertTitle, err, api.MsgDeleteAddressFailed)
		}
		fmt.Fprintf(a.out, "Success: %s\n", address.MsgDeleted)
		a.printAddresses(list)
		return nil
	default:
		return api.NewValidationError(fmt.Sprintf("Unknown address action %q.", sub))
	}
}

func (a *App) printAddresses(list []dto.Address) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No saved addresses")
		return
	}
	for _, addr := range list {
		def := ""
		if addr.IsDefault {
			def = " (default)"
		}
		fmt.Fprintf(a.out, "  [%s] %s%s: %s\n", addr.ID, addr.AddressType, def, address.Format(addr))
	}
}

type addressForm struct {
	kind, street, city, state, postal, landmark *string
	lat, lng                                    *float64
	isDefault                                   *bool
}

func addressFlags(name string) (*pflag.FlagSet, addressForm) {
	fs := newFlags(name)
	return fs, addressForm{
		kind:      fs.String("type", address.DefaultType, "Home, Work or Other"),
		street:    fs.String("street", "", "street and house number"),
		city:      fs.String("city", "", "city"),
		state:     fs.String("state", "", "state"),
		postal:    fs.String("postal-code", "", "postal code"),
		landmark:  fs.String("landmark", "", "nearby landmark"),
		lat:       fs.Float64("lat", 0, "latitude"),
		lng:       fs.Float64("lng", 0, "longitude"),
		isDefault: fs.Bool("default", false, "make this the default address"),
	}
}

// address overlays the flags that were set (all of them for a new
// address) onto base.
func (f addressForm) address(base dto.Address, fs *pflag.FlagSet) dto.Address {
	isNew := base.ID.IsZero()
	set := func(flag string) bool { return isNew || fs.Changed(flag) }

	if set("type") {
		base.AddressType = *f.kind
	}
	if set("street") {
		base.Street = *f.street
	}
	if set("city") {
		base.City = *f.city
	}
	if set("state") {
		base.State = *f.state
	}
	if set("postal-code") {
		base.PostalCode = *f.postal
	}
	if set("landmark") {
		base.Landmark = *f.landmark
	}
	if set("lat") {
		base.Latitude = *f.lat
	}
	if set("lng") {
		base.Longitude = *f.lng
	}
	if set("default") {
		base.IsDefault = *f.isDefault
	}
	return base
}
