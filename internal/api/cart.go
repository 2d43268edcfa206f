package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/foodapp/internal/dto"
)

const (
	MsgLoadCartFailed       = "Failed to load cart data"
	MsgUpdateQuantityFailed = "Failed to update quantity"
	MsgRemoveItemFailed     = "Failed to remove item"
	MsgAddToCartFailed      = "Failed to add item to cart"
)

// GetCart returns the authoritative cart snapshot.
func (c *Client) GetCart(ctx context.Context) (*dto.Cart, error) {
	var env dto.Envelope[*dto.Cart]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/customer/get-customer-cart",
		auth:     true,
		fallback: MsgLoadCartFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return &dto.Cart{}, nil
	}
	return env.Data, nil
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, id dto.ID, quantity int) error {
	return c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/customer/update-cart-item/" + url.PathEscape(id.String()),
		query:    url.Values{"quantity": {strconv.Itoa(quantity)}},
		auth:     true,
		fallback: MsgUpdateQuantityFailed,
	}, nil)
}

// RemoveCartItem deletes a cart line.
func (c *Client) RemoveCartItem(ctx context.Context, id dto.ID) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/customer/remove-product/" + url.PathEscape(id.String()),
		auth:     true,
		fallback: MsgRemoveItemFailed,
	}, nil)
}

// AddToCart adds one unit of a menu item.
func (c *Client) AddToCart(ctx context.Context, itemID dto.ID) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/customer/add-product/" + url.PathEscape(itemID.String()),
		auth:     true,
		fallback: MsgAddToCartFailed,
	}, nil)
}
