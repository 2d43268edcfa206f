package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/foodapp/internal/models"
	"github.com/example/foodapp/internal/utils"
)

// AdminHandler manages back-office endpoints.
type AdminHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, log *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, log: log.Named("admin")}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalCustomers int64
	if err := h.db.Model(&models.Customer{}).Count(&totalCustomers).Error; err != nil {
		return err
	}

	var statusCounts []struct {
		Status string
		Count  int64
	}
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	var totalOrders int64
	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
		totalOrders += sc.Count
	}

	// Revenue counts paid orders only.
	paid := []string{models.OrderStatusProcessing, models.OrderStatusDelivered}
	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status IN ?", paid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var todayRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("status IN ? AND order_time::date = CURRENT_DATE", paid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	return envelope(c, fiber.StatusOK, "", fiber.Map{
		"total_customers":  totalCustomers,
		"total_orders":     totalOrders,
		"total_revenue":    round2(totalRevenue),
		"today_revenue":    round2(todayRevenue),
		"orders_by_status": ordersByStatus,
	})
}

type adminOrder struct {
	ID              uint    `json:"id"`
	Status          string  `json:"status"`
	OrderTime       string  `json:"order_time"`
	TotalAmount     float64 `json:"total_amount"`
	Currency        string  `json:"currency"`
	RazorpayOrderID string  `json:"razorpay_order_id"`
	PaymentID       string  `json:"payment_id,omitempty"`
	Mobile          string  `json:"mobile"`
	Items           int     `json:"items"`
}

// ListAllOrders returns all orders with pagination and an optional status filter.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("Customer").
		Order("order_time desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	out := make([]adminOrder, 0, len(orders))
	for _, o := range orders {
		row := adminOrder{
			ID:              o.ID,
			Status:          o.Status,
			OrderTime:       o.OrderTime.Format(time.RFC3339),
			TotalAmount:     o.TotalAmount,
			Currency:        o.Currency,
			RazorpayOrderID: o.RazorpayOrderID,
			PaymentID:       o.PaymentID,
		}
		if o.Customer != nil {
			row.Mobile = o.Customer.Mobile
		}
		for _, it := range o.Items {
			row.Items += it.Quantity
		}
		out = append(out, row)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

var adminTransitions = map[string][]string{
	models.OrderStatusPaymentPending: {models.OrderStatusCancelled},
	models.OrderStatusProcessing:     {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

func canTransition(from, to string) bool {
	for _, next := range adminTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves a paid order forward, or cancels it.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var order models.Order
	if err := h.db.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}
	if !canTransition(order.Status, req.Status) {
		return fiber.NewError(fiber.StatusConflict, "cannot move order from "+order.Status+" to "+req.Status)
	}

	res := h.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", req.Status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusConflict, "order changed concurrently")
	}

	h.log.Info("order status changed",
		zap.Uint("order_id", order.ID),
		zap.String("from", order.Status),
		zap.String("to", req.Status))
	return envelope(c, fiber.StatusOK, "Order updated", fiber.Map{"id": idOf(order.ID), "status": req.Status})
}
