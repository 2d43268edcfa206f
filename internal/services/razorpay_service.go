package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/foodapp/internal/models"
	"github.com/example/foodapp/internal/payment"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrOrderNotPayable  = errors.New("order is not awaiting payment")
)

// PaymentService plays the Razorpay side of checkout: it hands out gateway
// order ids and checks payment signatures with the gateway secret.
type PaymentService struct {
	db       *gorm.DB
	secret   string
	telegram *TelegramService
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentService(db *gorm.DB, secret string, telegram *TelegramService, log *zap.Logger) *PaymentService {
	return &PaymentService{
		db:       db,
		secret:   secret,
		telegram: telegram,
		log:      log.Named("payment"),
		now:      time.Now,
	}
}

// NewGatewayOrderID returns an id in the gateway's order_XXXXXXXXXXXXXX form.
func NewGatewayOrderID() string {
	b := make([]byte, 7)
	if _, err := rand.Read(b); err != nil {
		return "order_" + uuid.NewString()[:14]
	}
	return "order_" + hex.EncodeToString(b)
}

// VerificationRequest is what the client forwards from the gateway.
type VerificationRequest struct {
	CustomerID      uuid.UUID
	RazorpayOrderID string
	PaymentID       string
	Signature       string
}

// Verify checks the signature and moves the order to PROCESSING. Accepted
// and rejected attempts are both recorded. Repeating a verification that
// already succeeded with the same payment id returns the order again.
func (s *PaymentService) Verify(ctx context.Context, req VerificationRequest) (*models.Order, error) {
	var (
		order   models.Order
		paidNow bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			Where("razorpay_order_id = ? AND customer_id = ?", req.RazorpayOrderID, req.CustomerID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		switch {
		case !payment.VerifySignature(req.RazorpayOrderID, req.PaymentID, req.Signature, s.secret):
			return ErrInvalidSignature
		case order.Status == models.OrderStatusProcessing && order.PaymentID == req.PaymentID:
			return nil
		case order.Status != models.OrderStatusPaymentPending:
			return ErrOrderNotPayable
		}

		paidNow = true
		order.Status = models.OrderStatusProcessing
		order.PaymentID = req.PaymentID
		if err := tx.Model(&order).Updates(map[string]any{
			"status":     order.Status,
			"payment_id": order.PaymentID,
		}).Error; err != nil {
			return err
		}
		if err := s.clearCart(tx, order.CustomerID); err != nil {
			return err
		}
		return tx.Create(&models.PaymentAttempt{
			OrderID:         order.ID,
			RazorpayOrderID: req.RazorpayOrderID,
			PaymentID:       req.PaymentID,
			Signature:       req.Signature,
			Accepted:        true,
			VerifiedAt:      s.now(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrOrderNotPayable) {
			s.recordRejected(ctx, order.ID, req, err)
		}
		return nil, err
	}

	if paidNow {
		s.log.Info("order paid",
			zap.Uint("order_id", order.ID),
			zap.String("payment_id", req.PaymentID))
		go s.notify(order)
	}
	return &order, nil
}

func (s *PaymentService) clearCart(tx *gorm.DB, customerID uuid.UUID) error {
	sub := tx.Model(&models.Cart{}).Select("id").Where("customer_id = ?", customerID)
	return tx.Where("cart_id IN (?)", sub).Delete(&models.CartItem{}).Error
}

func (s *PaymentService) recordRejected(ctx context.Context, orderID uint, req VerificationRequest, cause error) {
	attempt := models.PaymentAttempt{
		OrderID:         orderID,
		RazorpayOrderID: req.RazorpayOrderID,
		PaymentID:       req.PaymentID,
		Signature:       req.Signature,
		Reason:          cause.Error(),
		VerifiedAt:      s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&attempt).Error; err != nil {
		s.log.Warn("record rejected payment failed", zap.Error(err))
	}
	s.log.Warn("payment rejected",
		zap.String("gateway_order_id", req.RazorpayOrderID),
		zap.Error(cause))
}

func (s *PaymentService) notify(order models.Order) {
	if s.telegram == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var customer models.Customer
	_ = s.db.WithContext(ctx).First(&customer, "id = ?", order.CustomerID).Error
	var addr models.CustomerAddress
	_ = s.db.WithContext(ctx).First(&addr, order.AddressID).Error

	items := make([]OrderItemNotification, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderItemNotification{Name: it.ItemName, Quantity: it.Quantity, Price: it.Price})
	}

	err := s.telegram.NotifyPaidOrder(ctx, OrderNotification{
		OrderID:     order.ID,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Customer:    customer.FullName,
		Mobile:      customer.Mobile,
		Address:     fmt.Sprintf("%s, %s %s", addr.Street, addr.City, addr.PostalCode),
		PaymentID:   order.PaymentID,
	})
	if err != nil {
		s.log.Warn("telegram notification failed", zap.Uint("order_id", order.ID), zap.Error(err))
	}
}
