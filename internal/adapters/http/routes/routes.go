package routes

import (
	"univida-claims/internal/adapters/http/handlers"
	"univida-claims/internal/adapters/http/middleware"
	"univida-claims/internal/adapters/persistence/repositories"
	"univida-claims/internal/config"
	"univida-claims/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	claimRepo := repositories.NewClaimRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize services
	gateService := services.NewGateService()
	deadlineService := services.NewDeadlineService()
	auditService := services.NewAuditService()
	alertService := services.NewAlertService(deadlineService)
	lifecycleService := services.NewLifecycleService(gateService, deadlineService, auditService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	claimHandler := handlers.NewClaimHandler(
		lifecycleService,
		gateService,
		deadlineService,
		alertService,
		claimRepo,
		alertRepo,
		auditRepo,
	)
	alertHandler := handlers.NewAlertHandler(alertService, alertRepo, claimRepo)
	auditHandler := handlers.NewAuditHandler(auditRepo, claimRepo)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, claimHandler, alertHandler, auditHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	claimHandler *handlers.ClaimHandler,
	alertHandler *handlers.AlertHandler,
	auditHandler *handlers.AuditHandler,
	cfg *config.Config,
) {
	// Public claim report (rate limited, no token required)
	router.Post("/public/claims", middleware.PublicReportRateLimiter(), claimHandler.CreatePublic)

	// Claim routes (authenticated operators)
	claimRoutes := router.Group("/claims")
	claimRoutes.Use(middleware.ActorMiddleware(cfg))
	setupClaimRoutes(claimRoutes, claimHandler, alertHandler, auditHandler)

	// Alert routes (authenticated operators)
	alertRoutes := router.Group("/alerts")
	alertRoutes.Use(middleware.ActorMiddleware(cfg))
	alertRoutes.Get("/", alertHandler.ListUnresolved)
}

// setupClaimRoutes configures claim lifecycle routes
func setupClaimRoutes(
	router fiber.Router,
	claimHandler *handlers.ClaimHandler,
	alertHandler *handlers.AlertHandler,
	auditHandler *handlers.AuditHandler,
) {
	router.Post("/", claimHandler.Create)
	router.Get("/", claimHandler.List)
	router.Get("/:caseCode", claimHandler.Get)

	// Lifecycle operations
	router.Post("/:caseCode/transition", claimHandler.Transition)
	router.Post("/:caseCode/send-to-insurer", claimHandler.SendToInsurer)
	router.Post("/:caseCode/invalidate", claimHandler.Invalidate)

	// Expedient data
	router.Put("/:caseCode/documents", claimHandler.RecordDocument)
	router.Put("/:caseCode/beneficiaries", claimHandler.RecordBeneficiary)
	router.Post("/:caseCode/signatures", claimHandler.RecordSignature)
	router.Put("/:caseCode/liquidation", claimHandler.RecordLiquidation)
	router.Put("/:caseCode/payment", claimHandler.RecordPayment)

	// Read-only evaluations
	router.Get("/:caseCode/gates", claimHandler.Gates)
	router.Get("/:caseCode/deadlines", claimHandler.Deadlines)

	// Alerts & audit per claim
	router.Get("/:caseCode/alerts", alertHandler.ListByClaim)
	router.Post("/:caseCode/alerts/resolve", alertHandler.Resolve)
	router.Get("/:caseCode/audit", auditHandler.ListByClaim)

	// Admin only
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/:caseCode/reopen", claimHandler.Reopen)
}
