package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk/internal/api/http/handlers"
	"github.com/quickdesk/helpdesk/internal/auth"
	"github.com/quickdesk/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Notifications  *handlers.NotificationsHandler
	Activity       *handlers.ActivityHandler
	Dashboard      *handlers.DashboardHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/logout", cfg.Auth.Logout)
	protected.Get("/auth/me", cfg.Auth.Me)

	protected.Get("/categories", cfg.Categories.List)
	protected.Get("/notifications", cfg.Notifications.ListUnread)
	protected.Get("/notifications/count", cfg.Notifications.UnreadCount)
	protected.Post("/notifications/read-all", cfg.Notifications.MarkAllRead)
	protected.Post("/notifications/:id/read", cfg.Notifications.MarkRead)
	protected.Get("/activity", cfg.Activity.Mine)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/rating", cfg.Tickets.RateTicket)

	staff := protected.Group("/staff", auth.RequireStaff())
	staff.Get("/dashboard", cfg.Dashboard.Counts)
	staff.Get("/activity", cfg.Activity.Recent)
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Post("/tickets/:id/assign", cfg.StaffTickets.AssignTicket)
	staff.Post("/tickets/:id/status", cfg.StaffTickets.ChangeStatus)
	staff.Get("/tickets/:id/activity", cfg.Activity.ForTicket)
	staff.Get("/users/:id/activity", cfg.Activity.ForUser)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Auth.ListUsers)
	admin.Patch("/users/:id/role", cfg.Auth.UpdateUserRole)
	admin.Post("/categories", cfg.Categories.Create)
	admin.Delete("/categories/:id", cfg.Categories.Delete)
}
