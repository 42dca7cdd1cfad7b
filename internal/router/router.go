package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/css-intel/courtevent/internal/config"
	"github.com/css-intel/courtevent/internal/handler"
	"github.com/css-intel/courtevent/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this to verify that the
	// service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while the profile endpoint lives under the protected /v1 group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterEvents wires the event browsing and organizer CRUD routes.
// Listing and reading are public so attendees can browse without an
// account; the public GETs sit behind the Redis response cache when one
// is configured.  Mutations require an ORGANIZER token.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/events", h.List, cached)
	e.GET("/v1/events/:id", h.Get, cached)

	org := e.Group("/v1/events")
	org.Use(middleware.JWTAuth(jwtSecret))
	org.Use(middleware.RequireRole("ORGANIZER"))
	org.POST("", h.Create)
	org.PUT("/:id", h.Update)
	org.DELETE("/:id", h.Delete)
}

// RegisterTickets wires ticket issuance, listing and validation.  Any
// authenticated profile can register for an event and see their own
// tickets; the per-event listing is organizer-only (ownership is
// enforced in the handler).  Validation is used by staff scanners.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, jwtSecret string) {
	g := e.Group("/v1/tickets")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("/register", h.Register)
	g.GET("/mine", h.ListMine)
	g.GET("/event/:event_id", h.ListByEvent, middleware.RequireRole("ORGANIZER"))
	g.GET("/validate/:ticket_id", h.Validate, middleware.RequireRole("ORGANIZER", "STAFF"))
}

// RegisterCheckin wires the staff check-in surface.  Scanning and the
// reconciliation view are restricted to staff and organizers.
func RegisterCheckin(e *echo.Echo, h *handler.CheckinHandler, jwtSecret string) {
	g := e.Group("/v1/checkin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ORGANIZER", "STAFF"))
	g.POST("/scan", h.Scan)
	g.GET("/event/:event_id", h.ListByEvent)
	g.GET("/stats/:event_id", h.Stats)
	g.GET("/unreconciled/:event_id", h.Unreconciled)
}

// RegisterRegistrations wires the RSVP routes for authenticated
// profiles.
func RegisterRegistrations(e *echo.Echo, h *handler.RegistrationHandler, jwtSecret string) {
	g := e.Group("/v1/registrations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", h.Create)
	g.GET("/mine", h.ListMine)
	g.DELETE("/:id", h.Cancel)
}

// RegisterAnalytics wires the organizer-facing aggregation endpoints.
func RegisterAnalytics(e *echo.Echo, h *handler.AnalyticsHandler, jwtSecret string) {
	g := e.Group("/v1/analytics")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ORGANIZER"))
	g.GET("/event/:event_id", h.EventAnalytics)
	g.GET("/organizer", h.OrganizerStats)
}
