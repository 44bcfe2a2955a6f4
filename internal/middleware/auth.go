package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // request-scoped context passed to the validator
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/task-manager-api/internal/model" // resolved user passed downstream
)

// TokenValidator resolves a raw bearer token to the user it acts as and
// echoes back the validated token string. service.TokenService satisfies
// this; tests plug in fakes.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (model.User, string, error)
}

// Auth returns an Echo middleware that gates owner-scoped routes. It
// strips the "Bearer " scheme from the Authorization header, asks the
// validator to resolve the token, and stores the (user, token) pair in
// the request context for downstream handlers. Any failure (missing
// header, malformed token, failed validation) short-circuits with 401
// and performs no downstream work. The gate holds no state of its own.
func Auth(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			user, token, err := tokens.Validate(c.Request().Context(), raw)
			if err != nil {
				// Forged, expired, revoked and unknown-user tokens all look
				// the same from outside.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please authenticate"})
			}

			c.Set("user", user)
			c.Set("token", token)
			return next(c)
		}
	}
}

// SessionUser extracts the authenticated user stored by Auth. The boolean
// is false when the route was not gated.
func SessionUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get("user").(model.User)
	return u, ok
}

// SessionToken extracts the validated token string stored by Auth.
func SessionToken(c echo.Context) (string, bool) {
	t, ok := c.Get("token").(string)
	return t, ok
}
