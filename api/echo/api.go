// Package echo exposes the storefront over HTTP.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gametopup/storefront/domain"
	"github.com/gametopup/storefront/middleware"
	"github.com/gametopup/storefront/services"
)

// API holds the handler dependencies.
type API struct {
	auth    *services.AuthService
	catalog *services.CatalogService
	orders  *services.OrderService
	carts   services.CartStore
	cookies *middleware.CookieWriter

	callbackToken string
}

// NewAPI initializes the storefront API.
func NewAPI(
	auth *services.AuthService,
	catalog *services.CatalogService,
	orders *services.OrderService,
	carts services.CartStore,
	cookies *middleware.CookieWriter,
	callbackToken string,
) *API {
	return &API{
		auth:          auth,
		catalog:       catalog,
		orders:        orders,
		carts:         carts,
		cookies:       cookies,
		callbackToken: callbackToken,
	}
}

// RegisterRoutes registers all storefront routes.
func (a *API) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/register", a.RegisterHandler)
	e.POST("/api/auth/login", a.LoginHandler)
	e.POST("/api/auth/verify-otp", a.VerifyOTPHandler)
	e.POST("/api/auth/logout", a.LogoutHandler)

	e.GET("/api/products", a.ListProductsHandler)
	e.GET("/api/products/:id", a.GetProductHandler)

	e.POST("/api/payments/webhook", a.InvoiceCallbackHandler)

	authed := e.Group("", middleware.RequireSession(a.auth, a.cookies))
	authed.GET("/api/auth/me", a.MeHandler)
	authed.GET("/api/cart", a.GetCartHandler)
	authed.POST("/api/cart", a.AddToCartHandler)
	authed.DELETE("/api/cart/:productID", a.RemoveFromCartHandler)
	authed.POST("/api/checkout", a.CheckoutHandler)
	authed.GET("/api/orders", a.ListMyOrdersHandler)

	admin := e.Group("/api/admin",
		middleware.RequireSession(a.auth, a.cookies),
		middleware.RequireRole(domain.RoleAdmin),
	)
	admin.GET("/products", a.AdminListProductsHandler)
	admin.POST("/products", a.CreateProductHandler)
	admin.PUT("/products/:id", a.UpdateProductHandler)
	admin.DELETE("/products/:id", a.DeleteProductHandler)
	admin.GET("/users", a.AdminListUsersHandler)
	admin.GET("/orders", a.AdminListOrdersHandler)
	admin.PATCH("/orders/:id/status", a.UpdateOrderStatusHandler)
}

// writeError maps domain errors onto HTTP responses. Anything outside the
// taxonomy surfaces as a 500 without detail.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrValidation.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: domain.ErrInvalidCredentials.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: domain.ErrUnauthenticated.Error()})
	case errors.Is(err, domain.ErrOTPExpired):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "code incorrect or expired"})
	case errors.Is(err, domain.ErrInvalidCode):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "code incorrect or expired"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: domain.ErrForbidden.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		return c.JSON(http.StatusConflict, errorResponse{Error: domain.ErrEmailTaken.Error()})
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrEmptyCart.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// identity pulls the verified identity placed by RequireSession.
func identity(c echo.Context) (*domain.Identity, error) {
	id, ok := domain.IdentityFromContext(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}
