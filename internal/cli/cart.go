package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/example/foodapp/internal/address"
	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/cart"
	"github.com/example/foodapp/internal/dto"
)

func (a *App) cartCmd(ctx context.Context, args []string) error {
	if err := a.cart.Fetch(ctx); err != nil {
		return withRetry(err, api.MsgLoadCartFailed, "cart")
	}

	if len(args) > 0 {
		if err := a.editCart(ctx, args); err != nil {
			return err
		}
	}
	return a.printCart()
}

func (a *App) editCart(ctx context.Context, args []string) error {
	sub, rest := args[0], args[1:]
	need := 1
	if sub == "qty" {
		need = 2
	}
	if len(rest) != need {
		return api.NewValidationError("Usage: foodapp cart [qty <id> <n> | inc <id> | dec <id> | rm <id>]")
	}
	id := dto.ID(rest[0])

	var err error
	switch sub {
	case "qty":
		n, convErr := strconv.Atoi(rest[1])
		if convErr != nil {
			return api.NewValidationError("Quantity must be a number.")
		}
		err = a.cart.UpdateQuantity(ctx, id, n)
	case "inc":
		err = a.cart.Increment(ctx, id)
	case "dec":
		err = a.cart.Decrement(ctx, id)
	case "rm":
		err = a.cart.RemoveItem(ctx, id)
		if err != nil {
			return withTitle(defaultAlertTitle, err, api.MsgRemoveItemFailed)
		}
		return nil
	default:
		return api.NewValidationError(fmt.Sprintf("Unknown cart action %q.", sub))
	}
	return withTitle(defaultAlertTitle, err, api.MsgUpdateQuantityFailed)
}

func (a *App) printCart() error {
	v := a.cart.View()
	if v.Err != nil {
		return withRetry(v.Err, api.MsgLoadCartFailed, "cart")
	}
	if v.Cart == nil || len(v.Cart.Items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}

	for _, it := range v.Cart.Items {
		line := cart.Cents(it.Price) * int64(it.OrderQuantity)
		fmt.Fprintf(a.out, "  [%s] %-24s x%-3d %8s\n", it.ID, it.Name, it.OrderQuantity, cart.FormatCents(line))
	}

	s := v.Summary
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "  %-14s %8s\n", "Subtotal", cart.FormatCents(s.Subtotal))
	fmt.Fprintf(a.out, "  %-14s %8s\n", "Delivery Fee", cart.FormatCents(s.DeliveryFee))
	fmt.Fprintf(a.out, "  %-14s %8s\n", "Tax", cart.FormatCents(s.Tax))
	if s.Discount != 0 {
		fmt.Fprintf(a.out, "  %-14s %8s\n", "Discount", cart.FormatCents(-s.Discount))
	}
	fmt.Fprintf(a.out, "  %-14s %8s\n", "Total", cart.FormatCents(s.Total))

	fmt.Fprintln(a.out, "\nShipping Address")
	if len(v.Addresses) == 0 {
		fmt.Fprintln(a.out, "  No saved addresses. Add one with: foodapp address add")
		return nil
	}
	for _, addr := range v.Addresses {
		mark := " "
		if addr.ID == v.SelectedAddress {
			mark = "*"
		}
		fmt.Fprintf(a.out, " %s[%s] %s: %s\n", mark, addr.ID, addr.AddressType, address.Format(addr))
	}
	return nil
}

func (a *App) checkout(ctx context.Context, args []string) error {
	fs := newFlags("checkout")
	addressID := fs.String("address", "", "id of the shipping address")
	fs.SetOutput(a.err)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.cart.Fetch(ctx); err != nil {
		return withRetry(err, api.MsgLoadCartFailed, "cart")
	}
	if *addressID != "" {
		if err := a.cart.SelectAddress(dto.ID(*addressID)); err != nil {
			return err
		}
	}
	if err := a.printCart(); err != nil {
		return err
	}

	receipt, err := a.cart.Checkout(ctx)
	if err != nil {
		return checkoutError(err)
	}
	fmt.Fprintf(a.out, "\nSuccess: %s\n\n", receipt.Message)
	return a.ordersCmd(ctx, nil)
}

// checkoutError keeps payment failures under their own title and labels
// everything else the way the cart screen does.
func checkoutError(err error) error {
	if api.IsKind(err, api.KindValidation) {
		return err
	}
	var pf *cart.PaymentFailedError
	if errors.As(err, &pf) || errors.Is(err, cart.ErrCheckoutInProgress) {
		return err
	}
	return withTitle(defaultAlertTitle, err, api.MsgProcessPaymentFailed)
}
