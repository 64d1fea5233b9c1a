package domain

import (
	"context"
	"time"
)

// UserRepository is the persistence contract for user credential records.
// SetOTPChallenge and ClearOTPChallenge are field-level writes: they touch
// only the OTP pair, so concurrent logins resolve as last-write-wins on
// the challenge without clobbering the rest of the record.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByPhone(ctx context.Context, phone string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	SetOTPChallenge(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	ClearOTPChallenge(ctx context.Context, userID string) error
	ListUsers(ctx context.Context, pageToken string, pageSize int) ([]*User, string, error)
}

// ProductRepository is the persistence contract for catalog products.
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id string) (*Product, error)
	ListActiveProducts(ctx context.Context) ([]*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// OrderRepository is the persistence contract for checkout orders.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetOrderByInvoiceID(ctx context.Context, invoiceID string) (*Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*Order, error)
	ListOrders(ctx context.Context) ([]*Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error
	SetOrderInvoice(ctx context.Context, id, invoiceID, invoiceURL string) error
}
