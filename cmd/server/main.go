package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"univida-claims/internal/adapters/http/middleware"
	"univida-claims/internal/adapters/http/routes"
	"univida-claims/internal/adapters/persistence/models"
	"univida-claims/internal/config"
	"univida-claims/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title Univida Siniestros API
// @version 1.0
// @description Motor de ciclo de vida de siniestros del seguro estudiantil

// @contact.name API Support
// @contact.email soporte@univida.bo

// @host siniestros.univida.bo
// @BasePath /api/v1
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

	// Seed demo claims in dev mode
	if cfg.IsDev() {
		if err := config.SeedDemoClaims(db); err != nil {
			log.Printf("⚠️ Warning: Failed to seed demo claims: %v", err)
		}
	}

	// Start the alert sweep
	cronService := services.NewCronService(db, cfg.Sweep.Schedule)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Univida Siniestros API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

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
