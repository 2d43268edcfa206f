package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:9090")
	t.Setenv("SESSION_BACKEND", "memory")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "prompt", cfg.PaymentMode)
	assert.Equal(t, "INR", cfg.PaymentCurrency)
	assert.InDelta(t, 2.99, cfg.DeliveryFee, 1e-9)
	assert.InDelta(t, 0.08, cfg.TaxRate, 1e-9)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
}

func TestLoadClientReadsEnvironment(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("PAYMENT_MODE", "sandbox")
	t.Setenv("RAZORPAY_KEY_SECRET", "shh")
	t.Setenv("TAX_RATE", "0.05")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sandbox", cfg.PaymentMode)
	assert.InDelta(t, 0.05, cfg.TaxRate, 1e-9)
}

func TestLoadClientRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"relative url":    {"API_URL": "/api"},
		"unknown backend": {"API_URL": "http://x", "SESSION_BACKEND": "sqlite"},
		"sandbox secret":  {"API_URL": "http://x", "SESSION_BACKEND": "memory", "PAYMENT_MODE": "sandbox"},
		"unknown mode":    {"API_URL": "http://x", "SESSION_BACKEND": "memory", "PAYMENT_MODE": "cash"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadClient()
			assert.Error(t, err)
		})
	}
}

func TestLoadServerDevSecret(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "gateway-secret")
	t.Setenv("ENV", "development")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpires())
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
}

func TestLoadServerProductionNeedsSecret(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "gateway-secret")
	t.Setenv("ENV", "production")

	_, err := LoadServer()
	assert.Error(t, err)
}
