package api

import (
	"context"
	"net/http"

	"github.com/example/foodapp/internal/dto"
)

// Fallback messages for auth calls.
const (
	MsgSendOTPFailed   = "Failed to send OTP"
	MsgVerifyOTPFailed = "Failed to verify OTP"
)

// Login asks the backend to send an OTP to mobile.
func (c *Client) Login(ctx context.Context, mobile string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/customer/login",
		body:     dto.LoginRequest{MobileNumber: mobile},
		fallback: MsgSendOTPFailed,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify exchanges an OTP for a token and the customer record.
func (c *Client) Verify(ctx context.Context, mobile, otp string) (*dto.VerifyResponse, error) {
	var out dto.VerifyResponse
	err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/customer/verify",
		body:     dto.VerifyRequest{MobileNumber: mobile, OTP: otp},
		fallback: MsgVerifyOTPFailed,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
