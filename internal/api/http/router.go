package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aera-issue-service/internal/api/http/handlers"
	"github.com/spec-kit/aera-issue-service/internal/auth"
	"github.com/spec-kit/aera-issue-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	Technician     *handlers.TechnicianHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	issues := api.Group("/issues", cfg.AuthMiddleware.Handle)
	issues.Post("", auth.RequireRole(domain.RoleDataCollector), cfg.Issues.CreateIssue)
	issues.Get("", auth.RequireAuthenticated(), cfg.Issues.ListIssues)
	issues.Put("/:id/assign", auth.RequireRole(domain.RoleManager), cfg.Issues.AssignIssue)
	issues.Put("/:id/status", auth.RequireRole(domain.RoleManager), cfg.Issues.UpdateIssue)
	issues.Get("/:id/history", auth.RequireRole(domain.RoleManager), cfg.Issues.ListHistory)
	issues.Put("/:id/complete", auth.RequireRole(domain.RoleTechnician, domain.RoleManager), cfg.Issues.CompleteIssue)

	technician := api.Group("/technician", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleTechnician))
	technician.Get("/tasks", cfg.Technician.Tasks)
	technician.Put("/tasks/:id", cfg.Technician.UpdateTask)
}
