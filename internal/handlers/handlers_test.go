package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/foodapp/internal/middleware"
	"github.com/example/foodapp/internal/models"
	"github.com/example/foodapp/internal/services"
	"github.com/example/foodapp/internal/utils"
)

const testSecret = "handler-secret"

type body struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, target, token, payload string) (int, body) {
	t.Helper()
	var r io.Reader
	if payload != "" {
		r = strings.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, r)
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out body
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func dataMessage(t *testing.T, b body) string {
	t.Helper()
	var d struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(b.Data, &d))
	return d.Message
}

// newValidationApp mounts handlers without a database. Every request it
// receives must be rejected before storage is touched.
func newValidationApp() *fiber.App {
	log := zap.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})

	auth := NewAuthHandler(nil, services.LogSender{Log: log}, AuthConfig{JWTSecret: testSecret}, log)
	carts := NewCartHandler(nil)
	orders := NewOrderHandler(nil, Pricing{DeliveryFee: 2.99, TaxRate: 0.08}, log)
	payments := NewPaymentHandler(nil)
	profiles := NewProfileHandler(nil)

	app.Post("/customer/login", auth.Login)
	app.Post("/customer/verify", auth.Verify)

	protected := app.Group("/customer", middleware.AuthMiddleware(testSecret))
	protected.Put("/update-cart-item/:id", carts.UpdateCartItem)
	protected.Post("/place-order", middleware.Idempotency(), orders.PlaceOrder)
	protected.Post("/verify-payment", payments.VerifyPayment)
	protected.Put("/profile", profiles.UpdateProfile)
	protected.Post("/add-address", profiles.CreateAddress)
	protected.Put("/update-address/:id", profiles.UpdateAddress)
	return app
}

func TestErrorHandlerEnvelopes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Get("/auth", func(c *fiber.Ctx) error { return newAuthError(fiber.StatusBadRequest, "bad number") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "Item not found") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("connection reset") })

	status, b := call(t, app, "GET", "/auth", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, b.Success)
	assert.Equal(t, "bad number", dataMessage(t, b))

	status, b = call(t, app, "GET", "/missing", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Item not found", b.Message)

	status, b = call(t, app, "GET", "/boom", "", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", b.Message)
}

func TestLoginValidation(t *testing.T) {
	app := newValidationApp()

	for _, mobile := range []string{"", "12345", "98765432101", "98765abcde"} {
		status, b := call(t, app, "POST", "/customer/login", "", `{"mobileNumber":"`+mobile+`"}`)
		assert.Equal(t, fiber.StatusBadRequest, status, mobile)
		assert.Equal(t, "Please enter a valid 10-digit mobile number", dataMessage(t, b))
	}
}

func TestVerifyValidation(t *testing.T) {
	app := newValidationApp()

	status, b := call(t, app, "POST", "/customer/verify", "", `{"mobileNumber":"9876543210","otp":"123"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Please enter the 6-digit OTP", dataMessage(t, b))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newValidationApp()

	status, _ := call(t, app, "PUT", "/customer/profile", "", `{"fullName":"A","email":"a@b.co"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRequestValidation(t *testing.T) {
	app := newValidationApp()
	token, err := utils.GenerateToken(testSecret, uuid.New(), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		method  string
		target  string
		payload string
		status  int
		message string
	}{
		{"zero quantity", "PUT", "/customer/update-cart-item/5?quantity=0", "", 400, "Quantity must be at least 1"},
		{"bad item id", "PUT", "/customer/update-cart-item/abc?quantity=2", "", 400, "invalid id"},
		{"no address", "POST", "/customer/place-order", `{"cartId":"1"}`, 400, "Please select a shipping address."},
		{"long idempotency key", "POST", "/customer/place-order", "", 400, "Idempotency-Key is too long"},
		{"verify without signature", "POST", "/customer/verify-payment?orderId=order_1&paymentId=pay_1", "", 400, "orderId, paymentId and signature are required"},
		{"blank name", "PUT", "/customer/profile", `{"fullName":"  ","email":"a@b.co"}`, 400, "Full name is required"},
		{"bad email", "PUT", "/customer/profile", `{"fullName":"Asha","email":"asha@"}`, 400, "Please enter a valid email"},
		{"address without city", "POST", "/customer/add-address", `{"addressType":"Home","street":"1 MG Road","state":"KA","postalCode":"560001"}`, 400, "missing required fields: city"},
		{"update bad id", "PUT", "/customer/update-address/0", `{}`, 400, "invalid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			if tt.name == "long idempotency key" {
				req.Header.Set(middleware.IdempotencyHeader, strings.Repeat("k", 300))
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			var b body
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, b.Success)
			assert.Equal(t, tt.message, b.Message)
		})
	}
}

func TestAdminTransitions(t *testing.T) {
	assert.True(t, canTransition(models.OrderStatusProcessing, models.OrderStatusDelivered))
	assert.True(t, canTransition(models.OrderStatusPaymentPending, models.OrderStatusCancelled))
	assert.False(t, canTransition(models.OrderStatusPaymentPending, models.OrderStatusDelivered))
	assert.False(t, canTransition(models.OrderStatusDelivered, models.OrderStatusCancelled))
	assert.False(t, canTransition(models.OrderStatusProcessing, "SHIPPED"))
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 0.8, round2(10*0.08), 1e-9)
	assert.InDelta(t, 12.79, round2(9+2.99+0.8), 1e-9)
	assert.InDelta(t, 1.01, round2(1.005+0.0001), 1e-9)
}
