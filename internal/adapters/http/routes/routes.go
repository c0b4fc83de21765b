package routes

import (
	"qcc-stakevault/internal/adapters/chain"
	"qcc-stakevault/internal/adapters/http/handlers"
	"qcc-stakevault/internal/adapters/http/middleware"
	"qcc-stakevault/internal/adapters/persistence/repositories"
	"qcc-stakevault/internal/config"
	"qcc-stakevault/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. The sweep and reconcile
// services are returned so the caller can hand them to the cron scheduler;
// manual triggers and scheduled passes share the same instances.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, chainClient chain.Client) (*services.SweepService, *services.ReconcileService) {
	// Initialize repositories
	stakingRepo := repositories.NewStakingRepository(db)
	rateRepo := repositories.NewRateRepository(db)
	adminRepo := repositories.NewAdminRepository(db)

	// Initialize services
	stakingService := services.NewStakingService(stakingRepo, rateRepo, chainClient, cfg.Staking)
	sweepService := services.NewSweepService(stakingRepo, chainClient, cfg.Recon.CallDelay)
	reconcileService := services.NewReconcileService(stakingRepo, chainClient, cfg.Recon)
	rateService := services.NewRateService(rateRepo, cfg.Staking)
	adminService := services.NewAdminService(adminRepo, cfg.JWT)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	stakingHandler := handlers.NewStakingHandler(stakingService, sweepService, reconcileService)
	rateHandler := handlers.NewRateHandler(rateService, adminService)
	adminHandler := handlers.NewAdminHandler(adminService, chainClient)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	api := app.Group("/api")
	setupStakingRoutes(api.Group("/staking"), stakingHandler, rateHandler, cfg)
	setupAdminRoutes(api.Group("/admin"), adminHandler, cfg)

	return sweepService, reconcileService
}

// setupStakingRoutes configures staking routes
func setupStakingRoutes(router fiber.Router, handler *handlers.StakingHandler, rateHandler *handlers.RateHandler, cfg *config.Config) {
	// Public routes
	router.Post("/", handler.Create)
	router.Get("/periods", handler.Periods)
	router.Get("/stats", handler.Stats)
	router.Get("/rates", rateHandler.GetRates)
	router.Put("/rates", middleware.StrictRateLimiter(), rateHandler.UpdateRates)
	router.Get("/wallet/:address", handler.GetByWallet)

	// Admin routes (registered before the :id wildcards)
	router.Get("/", middleware.AdminAuth(cfg), handler.List)
	router.Get("/expiring", middleware.AdminAuth(cfg), handler.Expiring)
	router.Post("/process-expired", middleware.AdminAuth(cfg), middleware.StrictRateLimiter(), handler.ProcessExpired)
	router.Post("/reconcile", middleware.AdminAuth(cfg), middleware.StrictRateLimiter(), handler.Reconcile)

	// Wildcard routes last
	router.Get("/:id", handler.GetByID)
	router.Put("/:id/cancel", handler.Cancel)
}

// setupAdminRoutes configures admin credential routes
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler, cfg *config.Config) {
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Get("/status", handler.Status)

	// Protected routes
	router.Put("/password", middleware.AdminAuth(cfg), middleware.StrictRateLimiter(), handler.ChangePassword)
	router.Get("/chain-status", middleware.AdminAuth(cfg), handler.ChainStatus)
}
