package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/foodapp/internal/config"
	"github.com/example/foodapp/internal/handlers"
	"github.com/example/foodapp/internal/middleware"
	"github.com/example/foodapp/internal/services"
)

// NewApp builds the fiber app with the JSON error envelope and the common
// middleware stack.
func NewApp(log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Food App Sandbox",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	return app
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Server, log *zap.Logger) {
	var sender services.OTPSender = services.LogSender{Log: log.Named("otp")}
	if cfg.PlumEnabled {
		sender = services.NewPlumService(services.PlumConfig{
			BaseURL:  cfg.PlumBaseURL,
			Username: cfg.PlumUsername,
			Password: cfg.PlumPassword,
			Enabled:  cfg.PlumEnabled,
		}, log)
	}

	var telegram *services.TelegramService
	if cfg.TelegramBotToken != "" {
		telegram = services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	}
	payments := services.NewPaymentService(db, cfg.RazorpayKeySecret, telegram, log)

	authHandler := handlers.NewAuthHandler(db, sender, handlers.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenExpires(),
		OTPTTL:    cfg.OTPTTL,
	}, log)
	catalogHandler := handlers.NewCatalogHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db, handlers.Pricing{
		DeliveryFee: cfg.DeliveryFee,
		TaxRate:     cfg.TaxRate,
		Currency:    cfg.PaymentCurrency,
	}, log)
	paymentHandler := handlers.NewPaymentHandler(payments)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db, log)

	customer := app.Group("/customer")
	customer.Post("/login", authHandler.Login)
	customer.Post("/verify", authHandler.Verify)

	// Everything below needs a bearer token.
	protected := customer.Group("", middleware.AuthMiddleware(cfg.JWTSecret))

	protected.Get("/get-customer-cart", cartHandler.GetCart)
	protected.Put("/update-cart-item/:id", cartHandler.UpdateCartItem)
	protected.Delete("/remove-product/:id", cartHandler.RemoveProduct)
	protected.Post("/add-product/:id", cartHandler.AddProduct)

	protected.Post("/place-order", middleware.Idempotency(), orderHandler.PlaceOrder)
	protected.Post("/verify-payment", paymentHandler.VerifyPayment)
	protected.Get("/orders", orderHandler.ListOrders)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/get-customer-address", profileHandler.ListAddresses)
	protected.Post("/add-address", profileHandler.CreateAddress)
	protected.Put("/update-address/:id", profileHandler.UpdateAddress)
	protected.Delete("/delete-address/:id", profileHandler.DeleteAddress)

	// The catalog is public even though it lives under /admin.
	admin := app.Group("/admin")
	admin.Get("/get-all-categories", catalogHandler.ListCategories)
	admin.Get("/get-all-items", catalogHandler.ListItems)
	admin.Get("/items/:categoryId", catalogHandler.ItemsByCategory)

	if cfg.AdminToken == "" {
		return
	}
	backOffice := admin.Group("", middleware.AdminKey(cfg.AdminToken))
	backOffice.Get("/dashboard", adminHandler.DashboardStats)
	backOffice.Get("/orders", adminHandler.ListAllOrders)
	backOffice.Put("/orders/:id/status", adminHandler.UpdateOrderStatus)
}
