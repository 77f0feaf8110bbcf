package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/airo-kpi/redo-service/internal/api/http/handlers"
	"github.com/airo-kpi/redo-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimit      fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.Token)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle)
	if cfg.RateLimit != nil {
		reports.Use(cfg.RateLimit)
	}
	reports.Post("/redo", cfg.Reports.GenerateRedo)
	reports.Get("/redo/runs", cfg.Reports.ListRuns)
}
