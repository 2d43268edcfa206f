package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/example/foodapp/internal/dto"
)

const (
	MsgLoadAddressesFailed = "Failed to load addresses"
	MsgAddAddressFailed    = "Failed to add address"
	MsgUpdateAddressFailed = "Failed to update address"
	MsgDeleteAddressFailed = "Failed to delete address"
)

// ListAddresses returns the customer's saved addresses.
func (c *Client) ListAddresses(ctx context.Context) ([]dto.Address, error) {
	var env dto.Envelope[[]dto.Address]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/customer/get-customer-address",
		auth:     true,
		fallback: MsgLoadAddressesFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) AddAddress(ctx context.Context, a dto.Address) error {
	a.ID = ""
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/customer/add-address",
		body:     a,
		auth:     true,
		fallback: MsgAddAddressFailed,
	}, nil)
}

func (c *Client) UpdateAddress(ctx context.Context, id dto.ID, a dto.Address) error {
	a.ID = id
	return c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/customer/update-address/" + url.PathEscape(id.String()),
		body:     a,
		auth:     true,
		fallback: MsgUpdateAddressFailed,
	}, nil)
}

func (c *Client) DeleteAddress(ctx context.Context, id dto.ID) error {
	return c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/customer/delete-address/" + url.PathEscape(id.String()),
		auth:     true,
		fallback: MsgDeleteAddressFailed,
	}, nil)
}
