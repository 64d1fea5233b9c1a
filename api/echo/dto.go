package echo

import (
	"strings"

	"github.com/gametopup/storefront/domain"
)

// Request DTOs. Each operation binds into its own schema and rejects
// malformed input before any domain logic runs.

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r *registerRequest) validate() error {
	if !strings.Contains(r.Email, "@") || r.Name == "" || len(r.Password) < 8 {
		return domain.ErrValidation
	}
	return nil
}

type loginRequest struct {
	Identifier string `json:"identifier"` // email or phone
	Password   string `json:"password"`
}

func (r *loginRequest) validate() error {
	if r.Identifier == "" || r.Password == "" {
		return domain.ErrValidation
	}
	return nil
}

type verifyOTPRequest struct {
	Code string `json:"code"`
}

func (r *verifyOTPRequest) validate() error {
	if len(r.Code) != 6 {
		return domain.ErrValidation
	}
	for _, c := range r.Code {
		if c < '0' || c > '9' {
			return domain.ErrValidation
		}
	}
	return nil
}

type productRequest struct {
	Name         string `json:"name"`
	Game         string `json:"game"`
	Denomination string `json:"denomination"`
	Price        int64  `json:"price"`
	Active       bool   `json:"active"`
}

func (r *productRequest) validate() error {
	if r.Name == "" || r.Game == "" || r.Price <= 0 {
		return domain.ErrValidation
	}
	return nil
}

type cartAddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func (r *cartAddRequest) validate() error {
	if r.ProductID == "" || r.Quantity <= 0 {
		return domain.ErrValidation
	}
	return nil
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

type invoiceCallbackRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Response DTOs.

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

type errorResponse struct {
	Error string `json:"error"`
}
