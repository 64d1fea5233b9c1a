package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Cookie names used by the auth flow.
const (
	SessionCookieName = "topup_session"
	PendingCookieName = "topup_pending"
)

// CookieWriter serializes signed tokens into cookies and back. The token
// content is opaque here; only the token service can mint or validate it.
type CookieWriter struct {
	secure bool
}

// NewCookieWriter creates a CookieWriter. secure should be true in
// production-like environments so cookies are HTTPS-only.
func NewCookieWriter(secure bool) *CookieWriter {
	return &CookieWriter{secure: secure}
}

// Attach sets an HttpOnly, SameSite=Lax cookie carrying the token.
func (w *CookieWriter) Attach(c echo.Context, name, token string, maxAgeSeconds int) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the named cookie's value, or "" when absent.
func (w *CookieWriter) Read(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

// Clear overwrites the named cookie with an empty, immediately expiring
// value.
func (w *CookieWriter) Clear(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
