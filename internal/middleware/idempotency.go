package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// IdempotencyHeader deduplicates order creation.
const IdempotencyHeader = "Idempotency-Key"

const (
	idempotencyContextKey = "idempotencyKey"
	maxIdempotencyKeyLen  = 255
)

// Idempotency validates the optional Idempotency-Key header and stores it
// in context for the handler.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyHeader)
		if len(key) > maxIdempotencyKeyLen {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key is too long")
		}
		if key != "" {
			c.Locals(idempotencyContextKey, key)
		}
		return c.Next()
	}
}

// GetIdempotencyKey returns the request's key, or "" when none was sent.
func GetIdempotencyKey(c *fiber.Ctx) string {
	key, _ := c.Locals(idempotencyContextKey).(string)
	return key
}
