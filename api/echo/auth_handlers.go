package echo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gametopup/storefront/domain"
	"github.com/gametopup/storefront/middleware"
	"github.com/gametopup/storefront/services"
)

// RegisterHandler creates a customer account.
func (a *API) RegisterHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	user, err := a.auth.Register(c.Request().Context(), services.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// LoginHandler runs the password step. On success the pending token goes
// into a short-lived cookie and the caller is told to submit the OTP code
// that was delivered out-of-band.
func (a *API) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	pending, err := a.auth.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	a.cookies.Attach(c, middleware.PendingCookieName, pending.PendingToken, pending.ExpiresIn)
	return c.JSON(http.StatusOK, map[string]any{
		"otp_required": true,
		"expires_in":   pending.ExpiresIn,
	})
}

// VerifyOTPHandler runs the second factor step. A matching code swaps the
// pending cookie for the long-lived session cookie.
func (a *API) VerifyOTPHandler(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	pendingToken := a.cookies.Read(c, middleware.PendingCookieName)
	if pendingToken == "" {
		return writeError(c, domain.ErrUnauthenticated)
	}

	session, err := a.auth.VerifyOTP(c.Request().Context(), pendingToken, req.Code)
	if err != nil {
		return writeError(c, err)
	}

	a.cookies.Clear(c, middleware.PendingCookieName)
	a.cookies.Attach(c, middleware.SessionCookieName, session.SessionToken, session.ExpiresIn)
	return c.JSON(http.StatusOK, toUserResponse(session.User))
}

// LogoutHandler drops the session cookie. Sessions are stateless tokens,
// so there is nothing server-side to clean up.
func (a *API) LogoutHandler(c echo.Context) error {
	a.cookies.Clear(c, middleware.SessionCookieName)
	a.cookies.Clear(c, middleware.PendingCookieName)
	return c.NoContent(http.StatusNoContent)
}

// AdminListUsersHandler returns a page of accounts.
func (a *API) AdminListUsersHandler(c echo.Context) error {
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	users, nextToken, err := a.auth.ListUsers(c.Request().Context(), c.QueryParam("page_token"), pageSize)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"users":           out,
		"next_page_token": nextToken,
	})
}

// MeHandler returns the authenticated identity.
func (a *API) MeHandler(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, userResponse{
		ID:    id.UserID,
		Email: id.Email,
		Name:  id.Name,
		Role:  string(id.Role),
	})
}
