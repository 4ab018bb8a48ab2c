package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/courier-service/internal/api/http/handlers"
	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Packages       *handlers.PackagesHandler
	Tracking       *handlers.TrackingHandler
	Users          *handlers.UsersHandler
	Directory      *handlers.DirectoryHandler
	Reference      *handlers.ReferenceHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// NewApp builds the fiber application. Request values are immutable because
// route params and bodies end up stored by the in-memory adapter.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{AppName: name, Immutable: true})
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)
	api.Get("/tracking/:code", cfg.Tracking.Track)
	api.Post("/tracking/:code/reschedule", cfg.Tracking.Reschedule)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/me", cfg.Auth.Me)

	protected.Get("/packages", cfg.Packages.List)
	protected.Get("/packages/expanded", cfg.Packages.ListExpanded)
	protected.Get("/packages/:id", cfg.Packages.Get)
	protected.Post("/packages", auth.RequireCapability(auth.CapCreatePackage), cfg.Packages.Create)
	protected.Patch("/packages/:id/status", cfg.Packages.UpdateStatus)
	protected.Post("/packages/:id/reschedule", auth.RequireCapability(auth.CapReschedule), cfg.Packages.Reschedule)
	protected.Get("/couriers/me/packages", cfg.Packages.ListMine)

	protected.Get("/operators", cfg.Directory.Operators)
	protected.Get("/operators/phone", cfg.Directory.OperatorPhone)
	protected.Get("/couriers", cfg.Directory.Couriers)
	protected.Get("/roles", cfg.Directory.Roles)
	protected.Get("/statuses", cfg.Directory.Statuses)

	manageRefs := auth.RequireCapability(auth.CapManageReferenceData)
	protected.Get("/branches", cfg.Reference.ListBranches)
	protected.Post("/branches", manageRefs, cfg.Reference.CreateBranch)
	protected.Put("/branches/:id", manageRefs, cfg.Reference.UpdateBranch)
	protected.Get("/clients", cfg.Reference.ListClients)
	protected.Post("/clients", manageRefs, cfg.Reference.CreateClient)
	protected.Put("/clients/:id", manageRefs, cfg.Reference.UpdateClient)
	protected.Get("/distributors", cfg.Reference.ListDistributors)
	protected.Post("/distributors", manageRefs, cfg.Reference.CreateDistributor)
	protected.Put("/distributors/:id", manageRefs, cfg.Reference.UpdateDistributor)

	admin := protected.Group("/users", auth.RequireAdmin())
	admin.Get("", cfg.Users.List)
	admin.Post("", cfg.Users.Create)
	admin.Get("/:id", cfg.Users.Get)
	admin.Put("/:id", cfg.Users.Update)
	admin.Delete("/:id", cfg.Users.Delete)
}
