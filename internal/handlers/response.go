package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/middleware"
)

// authError is rendered with the message under data.message, which is
// where the login screens read it from.
type authError struct {
	status  int
	message string
}

func (e *authError) Error() string { return e.message }

func newAuthError(status int, message string) error {
	return &authError{status: status, message: message}
}

// ErrorHandler renders every handler error as {success:false, message}.
// Unexpected errors are logged and reported as a 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *authError
		if errors.As(err, &ae) {
			return c.Status(ae.status).JSON(fiber.Map{
				"success": false,
				"data":    fiber.Map{"message": ae.message},
			})
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
	}
}

func envelope(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func currentCustomer(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.GetCurrentCustomerID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func idOf(id uint) dto.ID {
	return dto.ID(strconv.FormatUint(uint64(id), 10))
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || n == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(n), nil
}

func parseUint(id dto.ID) (uint, error) {
	n, err := strconv.ParseUint(id.String(), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", id)
	}
	return uint(n), nil
}
