package handlers

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/middleware"
	"github.com/example/foodapp/internal/models"
	"github.com/example/foodapp/internal/services"
	"github.com/example/foodapp/internal/utils"
)

// Pricing holds the charges added to every order.
type Pricing struct {
	DeliveryFee float64
	TaxRate     float64
	Currency    string
}

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db      *gorm.DB
	pricing Pricing
	log     *zap.Logger
	now     func() time.Time
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, pricing Pricing, log *zap.Logger) *OrderHandler {
	if pricing.Currency == "" {
		pricing.Currency = "INR"
	}
	return &OrderHandler{db: db, pricing: pricing, log: log.Named("orders"), now: time.Now}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func placedOrder(o *models.Order) dto.PlacedOrder {
	return dto.PlacedOrder{
		OrderID:         idOf(o.ID),
		TotalAmount:     o.TotalAmount,
		RazorpayOrderID: o.RazorpayOrderID,
		Currency:        o.Currency,
	}
}

// PlaceOrder turns the cart into an order awaiting payment. A repeated
// Idempotency-Key returns the order created by the first request.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	var req dto.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	key := middleware.GetIdempotencyKey(c)
	if key != "" {
		if existing, err := h.findByKey(customerID, key); err != nil {
			return err
		} else if existing != nil {
			return envelope(c, fiber.StatusOK, "Order already created", placedOrder(existing))
		}
	}

	order, err := h.createOrder(customerID, req, key)
	if err != nil {
		// A concurrent request with the same key won the insert.
		if key != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, ferr := h.findByKey(customerID, key); ferr == nil && existing != nil {
				return envelope(c, fiber.StatusOK, "Order already created", placedOrder(existing))
			}
		}
		return err
	}

	h.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("gateway_order_id", order.RazorpayOrderID),
		zap.Float64("total", order.TotalAmount))
	return envelope(c, fiber.StatusCreated, "Order created", placedOrder(order))
}

func (h *OrderHandler) findByKey(customerID uuid.UUID, key string) (*models.Order, error) {
	var order models.Order
	err := h.db.Where("customer_id = ? AND idempotency_key = ?", customerID, key).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (h *OrderHandler) createOrder(customerID uuid.UUID, req dto.PlaceOrderRequest, key string) (*models.Order, error) {
	addressID, err := parseUint(req.AddressID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Please select a shipping address.")
	}

	var order models.Order
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var address models.CustomerAddress
		if err := tx.First(&address, "id = ? AND customer_id = ?", addressID, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "Please select a shipping address.")
			}
			return err
		}

		cart, err := loadCart(tx, customerID)
		if err != nil {
			return err
		}
		if !req.CartID.IsZero() && req.CartID != idOf(cart.ID) {
			return fiber.NewError(fiber.StatusBadRequest, "Cart not found")
		}
		if len(cart.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Your cart is empty.")
		}

		subtotal := cartValue(cart)
		tax := round2(subtotal * h.pricing.TaxRate)
		order = models.Order{
			CustomerID:      customerID,
			AddressID:       address.ID,
			Status:          models.OrderStatusPaymentPending,
			OrderTime:       h.now(),
			Subtotal:        subtotal,
			DeliveryFee:     h.pricing.DeliveryFee,
			Tax:             tax,
			TotalAmount:     round2(subtotal + h.pricing.DeliveryFee + tax),
			Currency:        h.pricing.Currency,
			RazorpayOrderID: services.NewGatewayOrderID(),
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		for _, line := range cart.Items {
			if line.Item == nil {
				continue
			}
			order.Items = append(order.Items, models.OrderItem{
				ItemID:   line.ItemID,
				ItemName: line.Item.Name,
				Quantity: line.Quantity,
				Price:    line.Item.Price,
			})
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the customer's orders, newest first. page and limit
// narrow the list when given.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	customerID, err := currentCustomer(c)
	if err != nil {
		return err
	}

	query := h.db.Where("customer_id = ?", customerID).Preload("Items").Order("order_time desc")
	if c.Query("page") != "" || c.Query("limit") != "" {
		pg := utils.ParsePagination(c)
		query = query.Limit(pg.Limit).Offset(pg.Offset)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return err
	}

	out := make([]dto.Order, 0, len(orders))
	for _, o := range orders {
		entry := dto.Order{
			OrderID:       idOf(o.ID),
			OrderStatus:   dto.OrderStatus(o.Status),
			OrderTime:     o.OrderTime.Format(time.RFC3339),
			TotalAmount:   o.TotalAmount,
			TotalDiscount: o.TotalDiscount,
			Items:         make([]dto.OrderLine, 0, len(o.Items)),
		}
		for _, it := range o.Items {
			entry.Items = append(entry.Items, dto.OrderLine{ItemName: it.ItemName, Quantity: it.Quantity, Price: it.Price})
		}
		out = append(out, entry)
	}
	return envelope(c, fiber.StatusOK, "", out)
}
