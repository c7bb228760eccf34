package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/kiakia/loanbot-backend/database"
	"github.com/kiakia/loanbot-backend/internal/jobs"
	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/routes"
	"github.com/kiakia/loanbot-backend/internal/services"
	"github.com/kiakia/loanbot-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(&models.SessionRecord{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Initialize the outbound WhatsApp transport. Without Twilio credentials
	// the bot still runs against the test webhook in development.
	var messenger services.Messenger
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Printf("⚠️  Twilio not configured (%v) - outbound messages will be logged only", err)
		messenger = services.LogMessenger{}
	} else {
		log.Println("✅ Twilio service initialized")
		messenger = twilioService
	}

	// Initialize services
	backend := services.NewHTTPBackendClient()
	conversation := services.NewConversationService(store, backend, messenger)
	reconciler := services.NewPaymentReconciler(store, conversation)

	// Start session maintenance jobs
	sessionJob := jobs.NewSessionJob(store)
	sessionJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Kiya Loan Bot v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, store, conversation, reconciler)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping session jobs...")
		sessionJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Kiya Loan Bot starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("📱 WhatsApp: %s", getWhatsAppStatus())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getWhatsAppStatus() string {
	if os.Getenv("TWILIO_ACCOUNT_SID") == "" {
		return "Not configured (dry-run)"
	}
	return "Configured"
}
