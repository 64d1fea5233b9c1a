package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gametopup/storefront/domain"
)

// minSecretLen is the minimum signing secret length for HS256.
const minSecretLen = 32

// TokenService issues and verifies the signed, self-contained tokens the
// auth flow puts in cookies. Tokens are HS256 JWTs; validity is purely a
// function of signature and expiry, there is no server-side token table.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService with a process-wide signing
// secret. The secret comes from configuration at startup; a short secret
// is a construction error, not a per-request one.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("token signing secret must be at least %d bytes", minSecretLen)
	}
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue embeds jti/iat/exp into the claim set, signs it, and returns the
// compact URL-safe token string.
func (s *TokenService) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	now := s.now()
	mapClaims := jwt.MapClaims{
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range claims {
		mapClaims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded claims.
// Every failure mode collapses to domain.ErrInvalidToken: callers treat
// malformed, tampered, and expired tokens identically.
func (s *TokenService) Verify(tokenStr string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
