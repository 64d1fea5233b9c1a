package domain

import "context"

type contextKey string

// identityContextKey is where middleware stashes the verified session
// identity for handlers downstream.
const identityContextKey contextKey = "authenticated_identity"

// Identity is the verified content of a session token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// HasRole is the single authorization predicate used by every privileged
// endpoint. Admins implicitly satisfy the customer role.
func HasRole(id *Identity, required Role) bool {
	if id == nil {
		return false
	}
	if id.Role == RoleAdmin {
		return true
	}
	return id.Role == required
}

// WithIdentity returns a context carrying the verified identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the verified identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok && id != nil
}
