package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/kiakia/loanbot-backend/internal/handlers"
	"github.com/kiakia/loanbot-backend/internal/middleware"
	"github.com/kiakia/loanbot-backend/internal/services"
	"github.com/kiakia/loanbot-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, conversation *services.ConversationService, reconciler *services.PaymentReconciler) {
	whatsappHandler := handlers.NewWhatsAppHandler(conversation)
	paymentHandler := handlers.NewPaymentHandler(store, reconciler)
	adminHandler := handlers.NewAdminHandler(store)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the Kiya Loan Bot Server!",
			"status":  "running",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":          "/health",
				"webhook":         "/webhook/whatsapp",
				"payment_webhook": "/payment/webhook",
				"payment_status":  "/payment/status/:phone",
				"admin":           "/admin",
			},
		})
	})

	app.Get("/health", handlers.HealthCheck)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// WhatsApp webhook - signature validation is environment-aware so ngrok
	// development works without Twilio's signed URLs.
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)
		log.Println("⚠️  WhatsApp webhook validation DISABLED for development")
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsappHandler.HandleWebhook)
	}

	// ========== PAYMENT ROUTES ==========
	payment := app.Group("/payment")
	payment.Post("/webhook", paymentHandler.HandleWebhook)
	payment.Post("/confirm", middleware.RequireAdminKey(), paymentHandler.HandleManualConfirm)
	payment.Get("/status/:phone", paymentHandler.HandlePaymentStatus)

	// ========== TEST ROUTES (Development Only) ==========
	if os.Getenv("ENVIRONMENT") == "development" {
		app.Post("/test/whatsapp", whatsappHandler.HandleTestWebhook)
	}

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdminKey())
	admin.Get("/sessions", adminHandler.GetSessions)
	admin.Get("/sessions/:phone", adminHandler.GetSession)
	admin.Delete("/sessions/:phone", adminHandler.DeleteSession)
	admin.Get("/stats", adminHandler.GetStats)
	admin.Post("/clear-sessions", adminHandler.ClearSessions)
}
