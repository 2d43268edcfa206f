package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/foodapp/internal/dto"
	"github.com/example/foodapp/internal/models"
	"github.com/example/foodapp/internal/services"
	"github.com/example/foodapp/internal/utils"
)

const maxOTPAttempts = 5

// AuthConfig holds token and code lifetimes.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
}

// AuthHandler bundles dependencies for the OTP login endpoints.
type AuthHandler struct {
	db     *gorm.DB
	sender services.OTPSender
	cfg    AuthConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, sender services.OTPSender, cfg AuthConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, sender: sender, cfg: cfg, log: log.Named("auth"), now: time.Now}
}

// Login issues a six digit code for a mobile number.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return newAuthError(fiber.StatusBadRequest, "invalid request body")
	}
	if !utils.ValidMobileNumber(req.MobileNumber) {
		return newAuthError(fiber.StatusBadRequest, "Please enter a valid 10-digit mobile number")
	}

	code, err := generateVerificationCode()
	if err != nil {
		return newAuthError(fiber.StatusInternalServerError, "failed to generate verification code")
	}
	hash, err := utils.HashOTP(code)
	if err != nil {
		return newAuthError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	verification := models.OTPVerification{
		Mobile:    req.MobileNumber,
		CodeHash:  hash,
		ExpiresAt: h.now().Add(h.cfg.OTPTTL),
	}
	if err := h.db.Create(&verification).Error; err != nil {
		return err
	}

	if err := h.sender.SendOTP(c.UserContext(), req.MobileNumber, code); err != nil {
		h.log.Warn("otp delivery failed", zap.String("mobile", req.MobileNumber), zap.Error(err))
		return newAuthError(fiber.StatusBadGateway, "Failed to send OTP")
	}

	return c.JSON(dto.LoginResponse{
		Success:      true,
		Message:      "OTP sent successfully",
		MobileNumber: req.MobileNumber,
	})
}

// Verify checks the latest unused code and returns a token. The customer
// is created on first login.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return newAuthError(fiber.StatusBadRequest, "invalid request body")
	}
	if !utils.ValidMobileNumber(req.MobileNumber) || !utils.ValidOTP(req.OTP) {
		return newAuthError(fiber.StatusBadRequest, "Please enter the 6-digit OTP")
	}

	var verification models.OTPVerification
	err := h.db.Where("mobile = ? AND used_at IS NULL", req.MobileNumber).
		Order("created_at desc").
		First(&verification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newAuthError(fiber.StatusBadRequest, "OTP not found. Please request a new one.")
	}
	if err != nil {
		return err
	}

	now := h.now()
	switch {
	case verification.ExpiresAt.Before(now):
		return newAuthError(fiber.StatusBadRequest, "OTP expired. Please request a new one.")
	case verification.Attempts >= maxOTPAttempts:
		return newAuthError(fiber.StatusTooManyRequests, "Too many attempts. Please request a new OTP.")
	case !utils.CheckOTP(verification.CodeHash, req.OTP):
		if err := h.db.Model(&verification).Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return err
		}
		return newAuthError(fiber.StatusBadRequest, "Invalid OTP")
	}

	var customer models.Customer
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&verification).Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Where(models.Customer{Mobile: req.MobileNumber}).FirstOrCreate(&customer).Error
	})
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, customer.ID, h.cfg.TokenTTL)
	if err != nil {
		return newAuthError(fiber.StatusInternalServerError, "failed to generate token")
	}

	h.log.Info("customer verified", zap.String("customer_id", customer.ID.String()))
	return c.JSON(dto.VerifyResponse{
		Token: token,
		User: dto.User{
			CustomerID:   dto.ID(customer.ID.String()),
			MobileNumber: customer.Mobile,
			FullName:     customer.FullName,
			Email:        customer.Email,
		},
	})
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
