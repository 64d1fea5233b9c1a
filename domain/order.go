package domain

import "time"

// OrderStatus tracks an order through the invoice lifecycle.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusExpired OrderStatus = "EXPIRED"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// OrderLine is a priced snapshot of a product at checkout time. Later
// catalog edits do not change what the customer agreed to pay.
type OrderLine struct {
	ProductID string `bson:"product_id"`
	Name      string `bson:"name"`
	UnitPrice int64  `bson:"unit_price"`
	Quantity  int64  `bson:"quantity"`
}

// Order is a checkout result awaiting (or past) payment collection.
type Order struct {
	ID         string      `bson:"_id,omitempty"`
	UserID     string      `bson:"user_id"`
	Lines      []OrderLine `bson:"lines"`
	Total      int64       `bson:"total"`
	Status     OrderStatus `bson:"status"`
	InvoiceID  string      `bson:"invoice_id,omitempty"`
	InvoiceURL string      `bson:"invoice_url,omitempty"`
	CreatedAt  time.Time   `bson:"created_at"`
	UpdatedAt  time.Time   `bson:"updated_at"`
}
