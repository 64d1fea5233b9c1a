// Package middleware carries the HTTP-side auth plumbing: cookie
// transport, session verification, and the role guard.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gametopup/storefront/domain"
	"github.com/gametopup/storefront/services"
)

// RequireSession verifies the session cookie and stashes the identity in
// the request context. Missing or invalid tokens get a 401; the handler
// never runs.
func RequireSession(auth *services.AuthService, cookies *CookieWriter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookies.Read(c, SessionCookieName)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			}

			id, err := auth.IdentityFromToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			}

			c.SetRequest(c.Request().WithContext(domain.WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}

// RequireRole enforces the single authorization predicate on top of
// RequireSession. It must run after RequireSession.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := domain.IdentityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			}
			if !domain.HasRole(id, role) {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}
