package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/http/handlers"
	"github.com/spec-kit/query-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Queries        *handlers.QueriesHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Show)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/session", cfg.Auth.Session)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	dashboardGroup := app.Group("/dashboard", cfg.AuthMiddleware.Handle)
	dashboardGroup.Get("", cfg.Dashboard.Show)
	dashboardGroup.Post("/refresh", cfg.Dashboard.Refresh)
	dashboardGroup.Put("/selection/:id", cfg.Dashboard.Select)
	dashboardGroup.Delete("/selection", cfg.Dashboard.Deselect)
	dashboardGroup.Delete("/notices", cfg.Dashboard.DismissNotices)

	queriesGroup := app.Group("/queries", cfg.AuthMiddleware.Handle)
	queriesGroup.Get("", cfg.Queries.List)
	queriesGroup.Get("/:id", cfg.Queries.Get)
	queriesGroup.Get("/:id/contact", cfg.Queries.Contact)
	queriesGroup.Post("/:id/reply", cfg.Queries.Reply)
	queriesGroup.Delete("/:id", cfg.Queries.Delete)

	adminGroup := app.Group("/admin", cfg.AuthMiddleware.Handle)
	adminGroup.Post("/clear", cfg.Dashboard.Clear)
}
