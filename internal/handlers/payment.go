package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/services"
)

// PaymentHandler verifies gateway payments for placed orders.
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// VerifyPayment checks the gateway signature sent as query parameters and
// marks the order as paid.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	req := services.VerificationRequest{
		CustomerID:      customerID,
		RazorpayOrderID: c.Query("orderId"),
		PaymentID:       c.Query("paymentId"),
		Signature:       c.Query("signature"),
	}
	if req.RazorpayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return fiber.NewError(fiber.StatusBadRequest, "orderId, paymentId and signature are required")
	}

	order, err := h.payments.Verify(c.UserContext(), req)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	case errors.Is(err, services.ErrInvalidSignature):
		return fiber.NewError(fiber.StatusBadRequest, "Payment verification failed")
	case errors.Is(err, services.ErrOrderNotPayable):
		return fiber.NewError(fiber.StatusConflict, "Order is not awaiting payment")
	case err != nil:
		return err
	}

	return envelope(c, fiber.StatusOK, "Payment verified successfully", dto.PaymentVerificationResult{
		OrderID: idOf(order.ID),
		Status:  order.Status,
		Message: "Payment verified successfully",
	})
}
