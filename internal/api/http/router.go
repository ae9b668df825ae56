package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/demand-service/internal/api/http/handlers"
	"github.com/spec-kit/demand-service/internal/auth"
	"github.com/spec-kit/demand-service/internal/domain"
	"github.com/spec-kit/demand-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Projects       *handlers.ProjectsHandler
	Requests       *handlers.RequestsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)

	// Guards are mounted per prefix so unmatched paths still fall through to 404.
	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}
	app.Get("/me", append(authenticated, cfg.Users.Me)...)

	users := app.Group("/users", append(authenticated, auth.RequireRole(domain.RoleAdministrator))...)
	users.Get("/", cfg.Users.List)
	users.Delete("/:id", cfg.Users.Remove)

	projects := app.Group("/projects", authenticated...)
	projects.Post("/", cfg.Projects.Create)
	projects.Get("/", cfg.Projects.List)
	projects.Get("/:id/members", cfg.Projects.ListMembers)
	projects.Put("/:id/members/:userId", cfg.Projects.AddMember)
	projects.Delete("/:id/members/:userId", cfg.Projects.RemoveMember)

	requests := app.Group("/requests", authenticated...)
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Patch("/:id/status", cfg.Requests.UpdateStatus)
	requests.Put("/:id/grantee", cfg.Requests.AssignGrantee)
}
