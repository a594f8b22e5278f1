package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"crypto/subtle" // constant-time comparison for the shared secret
	"net/http"      // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
)

// HeaderAPIKey is the request header carrying the shared secret.
const HeaderAPIKey = "X-API-KEY"

// APIKey returns an Echo middleware that guards mutating and privileged
// endpoints with a single process-wide shared secret.  The secret is
// injected once at startup from configuration; requests whose X-API-KEY
// header is absent or does not match are rejected with 401 before any
// handler runs, so a bad key can never cause side effects.  Endpoints
// that expose only public reads (registration-status check, coach and
// office catalogs, profile blob) are deliberately registered without
// this guard.
func APIKey(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderAPIKey)
			// Constant-time compare avoids leaking how much of the key
			// matched.  An empty header never matches a non-empty secret.
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}
			return next(c)
		}
	}
}
