package domain

import "errors"

// Authentication and validation errors returned by the service layer.
// Handlers map these to HTTP responses; anything not in this list is
// treated as an internal failure.
var (
	ErrValidation         = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrOTPExpired         = errors.New("otp code expired")
	ErrInvalidCode        = errors.New("invalid otp code")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")

	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("cart is empty")
)
