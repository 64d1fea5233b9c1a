package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/gametopup/storefront/domain"
)

// ListProductsHandler returns the purchasable catalog.
func (a *API) ListProductsHandler(c echo.Context) error {
	products, err := a.catalog.ListActive(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProductHandler returns one product.
func (a *API) GetProductHandler(c echo.Context) error {
	p, err := a.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GetCartHandler returns the caller's cart contents.
func (a *API) GetCartHandler(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := a.carts.Items(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// AddToCartHandler adds a product to the caller's cart.
func (a *API) AddToCartHandler(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}

	var req cartAddRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	// Reject unknown products before they land in the cart.
	if _, err := a.catalog.Get(c.Request().Context(), req.ProductID); err != nil {
		return writeError(c, err)
	}
	if err := a.carts.Add(c.Request().Context(), id.UserID, req.ProductID, req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveFromCartHandler drops a product from the caller's cart.
func (a *API) RemoveFromCartHandler(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := a.carts.Remove(c.Request().Context(), id.UserID, c.Param("productID")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckoutHandler turns the caller's cart into a pending order with a
// payment invoice.
func (a *API) CheckoutHandler(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := a.orders.Checkout(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// ListMyOrdersHandler returns the caller's orders.
func (a *API) ListMyOrdersHandler(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	orders, err := a.orders.ListForUser(c.Request().Context(), id.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// InvoiceCallbackHandler relays the payment provider's status callback
// onto the order. Authenticated by a shared callback token header, not a
// user session. An unconfigured token disables the endpoint entirely:
// comparing a missing header against "" would otherwise let anyone mark
// orders paid.
func (a *API) InvoiceCallbackHandler(c echo.Context) error {
	if a.callbackToken == "" {
		log.Warn().Msg("webhook: callback token not configured, rejecting callback")
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid callback token"})
	}
	if c.Request().Header.Get("X-Callback-Token") != a.callbackToken {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid callback token"})
	}

	var req invoiceCallbackRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return writeError(c, domain.ErrValidation)
	}

	if err := a.orders.HandleInvoiceCallback(c.Request().Context(), req.ID, req.Status); err != nil {
		log.Error().Err(err).Str("invoiceID", req.ID).Msg("webhook: callback handling failed")
		return writeError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// AdminListProductsHandler returns every product including inactive ones.
func (a *API) AdminListProductsHandler(c echo.Context) error {
	products, err := a.catalog.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProductHandler adds a catalog product.
func (a *API) CreateProductHandler(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	p := &domain.Product{
		Name:         req.Name,
		Game:         req.Game,
		Denomination: req.Denomination,
		Price:        req.Price,
		Active:       req.Active,
	}
	if err := a.catalog.Create(c.Request().Context(), p); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateProductHandler modifies a catalog product.
func (a *API) UpdateProductHandler(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	p := &domain.Product{
		ID:           c.Param("id"),
		Name:         req.Name,
		Game:         req.Game,
		Denomination: req.Denomination,
		Price:        req.Price,
		Active:       req.Active,
	}
	if err := a.catalog.Update(c.Request().Context(), p); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProductHandler removes a catalog product.
func (a *API) DeleteProductHandler(c echo.Context) error {
	if err := a.catalog.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminListOrdersHandler returns every order.
func (a *API) AdminListOrdersHandler(c echo.Context) error {
	orders, err := a.orders.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatusHandler force-sets an order status.
func (a *API) UpdateOrderStatusHandler(c echo.Context) error {
	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, domain.ErrValidation)
	}
	if err := a.orders.SetStatus(c.Request().Context(), c.Param("id"), domain.OrderStatus(req.Status)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
