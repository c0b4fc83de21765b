package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"qcc-stakevault/internal/adapters/chain"
	"qcc-stakevault/internal/adapters/http/middleware"
	"qcc-stakevault/internal/adapters/http/routes"
	"qcc-stakevault/internal/adapters/persistence/models"
	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "qcc-stakevault/docs" // Swagger docs
)

// @title QCC StakeVault API
// @version 1.0
// @description Fixed-term QCC token staking with automated settlement and deposit reconciliation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@qcc-chain.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host staking-api.qcc-chain.com
// @BasePath /api
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the rate table and the admin credential
	if err := config.SeedMasterData(db, cfg); err != nil {
		log.Printf("⚠️ Warning: Failed to seed master data: %v", err)
	}

	// Settlement network client (dry-run unless real transactions are enabled)
	chainClient := chain.NewHTTPClient(cfg.Chain)
	if !cfg.Chain.EnableRealTransactions {
		log.Println("⚠️ Real transactions disabled: payouts run in dry-run mode")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "QCC StakeVault API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	sweepService, reconcileService := routes.Setup(app, db, cfg, chainClient)

	// Scheduled sweep and reconciliation passes
	cronService := services.NewCronService(sweepService, reconcileService, cfg.Cron)
	cronService.Start()
	defer cronService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
