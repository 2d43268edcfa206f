package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/example/foodapp/internal/dto"
)

// Catalog endpoints are public.
const (
	MsgLoadCategoriesFailed = "Failed to fetch categories"
	MsgLoadItemsFailed      = "Failed to fetch items"
)

func (c *Client) Categories(ctx context.Context) ([]dto.Category, error) {
	var env dto.Envelope[[]dto.Category]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/admin/get-all-categories",
		fallback: MsgLoadCategoriesFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Items(ctx context.Context) ([]dto.Item, error) {
	var env dto.Envelope[[]dto.Item]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/admin/get-all-items",
		fallback: MsgLoadItemsFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) ItemsByCategory(ctx context.Context, categoryID dto.ID) ([]dto.Item, error) {
	var env dto.Envelope[[]dto.Item]
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/admin/items/" + url.PathEscape(categoryID.String()),
		fallback: MsgLoadItemsFailed,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
