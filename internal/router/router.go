package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/officefit/office-yoga/internal/handler"    // import the handlers that implement business logic
	"github.com/officefit/office-yoga/internal/middleware" // import middleware for the shared-secret guard
)

// RegisterRoutes registers routes that carry no business logic on the
// provided Echo instance.  Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the endpoints that are deliberately exempt
// from the shared-secret guard.  This is an explicit allow-list: the
// registration-status check and the profile blob are read (and merged)
// by the chat front end before it holds any key context, and the coach
// and office catalogs are harmless reference data.  The catalogs and
// the status check additionally sit behind the response cache when one
// is configured.
func RegisterPublic(e *echo.Echo, u *handler.UserHandler, co *handler.CoachHandler, of *handler.OfficeHandler, cache echo.MiddlewareFunc) {
	// Profile blob read and merge-update, keyed by the external chat id.
	e.GET("/users/info/:telegram_id", u.GetInfo)
	e.PUT("/users/info/:telegram_id", u.UpdateInfo)
	// First-contact check: has this chat id been registered yet?
	e.GET("/users/is_registered/:telegram_id", u.IsRegistered, cache)
	// Reference catalogs.
	e.GET("/coaches", co.ListCoaches, cache)
	e.GET("/offices", of.ListOffices, cache)
}

// RegisterAPI registers all guarded endpoints.  Every route in this
// group compares the X-API-KEY header against the single shared secret
// before the handler runs; a mismatch is rejected with 401 and causes
// no side effects.
func RegisterAPI(e *echo.Echo, u *handler.UserHandler, ev *handler.EventHandler, reg *handler.RegistrationHandler, apiKey string) {
	g := e.Group("", middleware.APIKey(apiKey))

	// User lifecycle and preferences.
	g.POST("/users", u.CreateUser)
	g.PUT("/users/update_by_telegram_id", u.UpdateByTelegramID)
	g.GET("/users/office/:telegram_id", u.GetOffice)
	g.PUT("/users/office/:telegram_id", u.SetOffice)

	// Registration engine.
	g.POST("/event_registrations", reg.Create)
	g.POST("/event_registrations/delete", reg.Delete)

	// Availability queries.
	g.GET("/upcoming_events", ev.Upcoming)
	g.GET("/available_events", ev.Available)
	g.GET("/user_events", ev.UserEvents)

	// Admin roster.
	g.GET("/upcoming_event_registrations", reg.Roster)
}
