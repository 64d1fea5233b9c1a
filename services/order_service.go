package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gametopup/storefront/domain"
)

// CartStore holds per-user cart contents keyed by product ID.
type CartStore interface {
	Add(ctx context.Context, userID, productID string, qty int64) error
	Remove(ctx context.Context, userID, productID string) error
	Items(ctx context.Context, userID string) (map[string]int64, error)
	Clear(ctx context.Context, userID string) error
}

// InvoiceCreator creates a payment collection invoice with the external
// provider.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, externalID string, amount int64, payerEmail, description string) (invoiceID, invoiceURL string, err error)
}

// OrderService owns checkout and order status transitions. The payment
// provider is the source of truth for paid/expired; this service only
// relays its callbacks onto the order record.
type OrderService struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	carts    CartStore
	invoices InvoiceCreator
}

// NewOrderService creates an OrderService.
func NewOrderService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	carts CartStore,
	invoices InvoiceCreator,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		carts:    carts,
		invoices: invoices,
	}
}

// Checkout prices the user's cart server-side, creates a pending order,
// requests a payment invoice, and clears the cart. Cart quantities are
// authoritative only for quantity; prices always come from the catalog.
func (s *OrderService) Checkout(ctx context.Context, id *domain.Identity) (*domain.Order, error) {
	items, err := s.carts.Items(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	var lines []domain.OrderLine
	var total int64
	for productID, qty := range items {
		if qty <= 0 {
			continue
		}
		p, err := s.products.GetProductByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("pricing cart item %s: %w", productID, err)
		}
		if !p.Active {
			continue
		}
		lines = append(lines, domain.OrderLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  qty,
		})
		total += p.Price * qty
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := &domain.Order{
		UserID: id.UserID,
		Lines:  lines,
		Total:  total,
		Status: domain.OrderStatusPending,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	invoiceID, invoiceURL, err := s.invoices.CreateInvoice(ctx, order.ID, total, id.Email,
		fmt.Sprintf("Top-up order %s", order.ID))
	if err != nil {
		// The order stays pending without an invoice; the customer can
		// retry checkout and the stale order expires on the admin side.
		log.Error().Err(err).Str("orderID", order.ID).Msg("checkout: invoice creation failed")
		return nil, fmt.Errorf("creating invoice: %w", err)
	}
	if err := s.orders.SetOrderInvoice(ctx, order.ID, invoiceID, invoiceURL); err != nil {
		return nil, fmt.Errorf("recording invoice: %w", err)
	}
	order.InvoiceID = invoiceID
	order.InvoiceURL = invoiceURL

	if err := s.carts.Clear(ctx, id.UserID); err != nil {
		log.Warn().Err(err).Str("userID", id.UserID).Msg("checkout: failed to clear cart")
	}

	log.Info().Str("orderID", order.ID).Int64("total", total).Msg("checkout: order created")
	return order, nil
}

// HandleInvoiceCallback applies a provider status callback to the order
// referenced by invoice ID.
func (s *OrderService) HandleInvoiceCallback(ctx context.Context, invoiceID, status string) error {
	order, err := s.orders.GetOrderByInvoiceID(ctx, invoiceID)
	if err != nil {
		return err
	}

	// Paid is terminal. Providers retry and reorder callbacks; a late
	// EXPIRED must not undo a completed payment.
	if order.Status == domain.OrderStatusPaid {
		log.Warn().Str("orderID", order.ID).Str("status", status).Msg("webhook: order already paid, ignoring callback")
		return nil
	}

	var next domain.OrderStatus
	switch status {
	case "PAID", "SETTLED":
		next = domain.OrderStatusPaid
	case "EXPIRED":
		next = domain.OrderStatusExpired
	default:
		log.Warn().Str("invoiceID", invoiceID).Str("status", status).Msg("webhook: ignoring unknown invoice status")
		return nil
	}

	if err := s.orders.UpdateOrderStatus(ctx, order.ID, next); err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	log.Info().Str("orderID", order.ID).Str("status", string(next)).Msg("webhook: order status updated")
	return nil
}

// ListForUser returns the user's own orders.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUserID(ctx, userID)
}

// ListAll returns every order. Admin only.
func (s *OrderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListOrders(ctx)
}

// SetStatus force-sets an order status. Admin only.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusPaid, domain.OrderStatusExpired, domain.OrderStatusFailed:
	default:
		return domain.ErrValidation
	}
	return s.orders.UpdateOrderStatus(ctx, orderID, status)
}
