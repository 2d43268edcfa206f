package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPlumSendsOTPWithCachedToken(t *testing.T) {
	var logins, sends atomic.Int32
	var lastPhone atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("POST /sms/send", func(w http.ResponseWriter, r *http.Request) {
		sends.Add(1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		lastPhone.Store(body["phone"])
		assert.Contains(t, body["message"], "123456")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	plum := NewPlumService(PlumConfig{BaseURL: srv.URL + "/", Username: "u", Password: "p", Enabled: true}, zap.NewNop())
	require.NoError(t, plum.SendOTP(context.Background(), "9876543210", "123456"))
	require.NoError(t, plum.SendOTP(context.Background(), "9876543210", "123456"))

	assert.Equal(t, int32(1), logins.Load())
	assert.Equal(t, int32(2), sends.Load())
	assert.Equal(t, "919876543210", lastPhone.Load())
}

func TestPlumRefreshesTokenOn401(t *testing.T) {
	var logins atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		n := logins.Add(1)
		token := "stale"
		if n > 1 {
			token = "fresh"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": token})
	})
	mux.HandleFunc("POST /sms/send", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	plum := NewPlumService(PlumConfig{BaseURL: srv.URL, Enabled: true}, zap.NewNop())
	require.NoError(t, plum.SendSMS(context.Background(), "91999", "hi"))
	assert.Equal(t, int32(2), logins.Load())
}

func TestPlumReportsGatewayFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
	})
	mux.HandleFunc("POST /sms/send", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	plum := NewPlumService(PlumConfig{BaseURL: srv.URL, Enabled: true}, zap.NewNop())
	err := plum.SendOTP(context.Background(), "9876543210", "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestPlumDisabled(t *testing.T) {
	plum := NewPlumService(PlumConfig{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	assert.Error(t, plum.SendOTP(context.Background(), "9876543210", "000000"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1,234.50 INR", FormatPrice(1234.5, "INR"))
	assert.Equal(t, "0.00 INR", FormatPrice(0, ""))
	assert.Equal(t, "1,234,567.89 USD", FormatPrice(1234567.891, "USD"))
	assert.Equal(t, "999.99 INR", FormatPrice(999.99, "INR"))
}

func TestTelegramNotifyPaidOrder(t *testing.T) {
	var sent atomic.Value
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/botbot-token/sendMessage", r.URL.Path)
		var msg telegramMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)
		sent.Store(msg)
	}))
	defer srv.Close()

	tg := NewTelegramService("bot-token", "-100", zap.NewNop())
	tg.baseURL = srv.URL

	err := tg.NotifyPaidOrder(context.Background(), OrderNotification{
		OrderID:     42,
		Items:       []OrderItemNotification{{Name: "Chicken Burger", Quantity: 2, Price: 6}},
		TotalAmount: 15.95,
		Currency:    "INR",
		Mobile:      "9876543210",
		PaymentID:   "pay_1",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	got, _ := sent.Load().(telegramMessage)
	assert.Equal(t, "-100", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "Chicken Burger")
	assert.Contains(t, got.Text, "12.00 INR")
	assert.Contains(t, got.Text, "15.95 INR")
	assert.Contains(t, got.Text, "Not provided")
}

func TestTelegramWithoutAdminChatSendsNothing(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	tg := NewTelegramService("bot-token", "", zap.NewNop())
	tg.baseURL = srv.URL
	require.NoError(t, tg.NotifyPaidOrder(context.Background(), OrderNotification{OrderID: 1}))
	assert.Zero(t, calls.Load())
}

func TestTelegramErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tg := NewTelegramService("bot-token", "-100", zap.NewNop())
	tg.baseURL = srv.URL
	assert.Error(t, tg.SendToAdmin(context.Background(), "hello"))
}

func TestNewGatewayOrderID(t *testing.T) {
	a, b := NewGatewayOrderID(), NewGatewayOrderID()
	assert.Regexp(t, `^order_[0-9a-f]{14}$`, a)
	assert.NotEqual(t, a, b)
}
