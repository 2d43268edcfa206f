package api

import (
	"context"
	"net/http"

	"github.com/example/foodapp/internal/dto"
)

const (
	MsgLoadProfileFailed   = "Failed to fetch profile data"
	MsgUpdateProfileFailed = "Failed to update profile"
)

// GetProfile returns the profile. Unlike most endpoints the payload is not
// wrapped in an envelope.
func (c *Client) GetProfile(ctx context.Context) (*dto.Profile, error) {
	var out dto.Profile
	err := c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/customer/profile",
		auth:     true,
		fallback: MsgLoadProfileFailed,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in dto.ProfileUpdate) error {
	return c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/customer/profile",
		body:     in,
		auth:     true,
		fallback: MsgUpdateProfileFailed,
	}, nil)
}
