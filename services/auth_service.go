package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gametopup/storefront/domain"
	"github.com/gametopup/storefront/internal/auth/otp"
)

// DefaultSessionTTL is the lifetime of a full session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// AuthService owns the login state machine:
//
//	Anonymous --Login--> PendingOtp --VerifyOTP--> Authenticated
//
// The pending and session states live entirely inside signed tokens; the
// only server-side state is the hashed OTP challenge on the user record.
type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens *TokenService
	sender OTPSender

	otpTTL     time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

// AuthOption adjusts an AuthService at construction time.
type AuthOption func(*AuthService)

// WithOTPTTL overrides the OTP challenge lifetime. The pending token and
// cookie inherit the same window.
func WithOTPTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.otpTTL = ttl
		}
	}
}

// WithSessionTTL overrides the session token lifetime.
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// NewAuthService creates an AuthService. Dependencies are injected once
// at process start; there is no hidden global state.
func NewAuthService(
	users domain.UserRepository,
	hasher PasswordHasher,
	tokens *TokenService,
	sender OTPSender,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		sender:     sender,
		otpTTL:     otp.ChallengeTTL,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PendingLogin is the result of a successful password check: the caller
// holds a short-lived token and must present the delivered OTP code next.
type PendingLogin struct {
	PendingToken string
	ExpiresIn    int // seconds
}

// Session is a fully established login.
type Session struct {
	SessionToken string
	ExpiresIn    int // seconds
	User         *domain.User
}

// RegisterInput is the parsed signup request.
type RegisterInput struct {
	Email    string
	Name     string
	Phone    string
	Password string
}

// Register creates a customer account with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.Name == "" || len(in.Password) < 8 {
		return nil, domain.ErrValidation
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        strings.ToLower(in.Email),
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("userID", user.ID).Msg("user registered")
	return user, nil
}

// Login performs the first authentication step. A wrong password and an
// unknown identifier both return ErrInvalidCredentials so callers cannot
// enumerate accounts. On success a fresh OTP challenge is stored
// (overwriting any outstanding one), the plaintext code is handed to the
// out-of-band sender, and a pending token scoped to the user is returned.
// The plaintext code never appears in the result or the logs.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*PendingLogin, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrValidation
	}

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Msg("login: unknown identifier")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		log.Warn().Str("userID", user.ID).Msg("login: incorrect password")
		return nil, domain.ErrInvalidCredentials
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("generating otp code: %w", err)
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("hashing otp code: %w", err)
	}

	expiresAt := s.now().Add(s.otpTTL)
	if err := s.users.SetOTPChallenge(ctx, user.ID, codeHash, expiresAt); err != nil {
		return nil, fmt.Errorf("storing otp challenge: %w", err)
	}

	// Delivery is best-effort. The challenge is already stored, so a
	// failed send only means the user times out and logs in again.
	msg := fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.sender.Send(ctx, user.Phone, msg); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("login: otp delivery failed")
	}

	pendingToken, err := s.tokens.Issue(map[string]any{"sub": user.ID}, s.otpTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing pending token: %w", err)
	}

	log.Info().Str("userID", user.ID).Msg("login: password accepted, otp challenge issued")
	return &PendingLogin{
		PendingToken: pendingToken,
		ExpiresIn:    int(s.otpTTL.Seconds()),
	}, nil
}

// VerifyOTP performs the second authentication step. The pending token
// must be valid and unexpired, the stored challenge must still exist and
// be unexpired, and the submitted code must match its hash. A matching
// code consumes the challenge; an expired one clears it as a side effect.
func (s *AuthService) VerifyOTP(ctx context.Context, pendingToken, code string) (*Session, error) {
	if code == "" {
		return nil, domain.ErrValidation
	}

	claims, err := s.tokens.Verify(pendingToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	// The challenge may already be consumed, or never issued for this
	// token generation. Either way the caller restarts at login.
	if !user.HasPendingOTP() {
		log.Warn().Str("userID", user.ID).Msg("verify-otp: no outstanding challenge")
		return nil, domain.ErrUnauthenticated
	}

	if s.now().After(*user.OTPExpiresAt) {
		// Logical expiry already invalidates the hash; clearing it is
		// cleanup so the record doesn't carry a dead challenge around.
		if err := s.users.ClearOTPChallenge(ctx, user.ID); err != nil {
			log.Error().Err(err).Str("userID", user.ID).Msg("verify-otp: failed to clear expired challenge")
		}
		return nil, domain.ErrOTPExpired
	}

	if err := s.hasher.Verify(*user.OTPCodeHash, code); err != nil {
		log.Warn().Str("userID", user.ID).Msg("verify-otp: code mismatch")
		return nil, domain.ErrInvalidCode
	}

	// Single use: the challenge is gone before the session exists.
	if err := s.users.ClearOTPChallenge(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("clearing otp challenge: %w", err)
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.UpdateUser(ctx, user); err != nil {
		log.Warn().Err(err).Str("userID", user.ID).Msg("verify-otp: failed to update last login")
	}

	sessionToken, err := s.tokens.Issue(map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"name":  user.Name,
	}, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing session token: %w", err)
	}

	log.Info().Str("userID", user.ID).Msg("verify-otp: session established")
	return &Session{
		SessionToken: sessionToken,
		ExpiresIn:    int(s.sessionTTL.Seconds()),
		User:         user,
	}, nil
}

// IdentityFromToken verifies a session token and maps its claims to an
// Identity. Used by the session middleware.
func (s *AuthService) IdentityFromToken(sessionToken string) (*domain.Identity, error) {
	claims, err := s.tokens.Verify(sessionToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || !domain.Role(role).Valid() {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.Identity{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   domain.Role(role),
	}, nil
}

// defaultUserPageSize bounds admin user listings when the caller does not
// ask for a size.
const defaultUserPageSize = 50

// ListUsers returns a page of accounts. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, pageToken string, pageSize int) ([]*domain.User, string, error) {
	if pageSize <= 0 {
		pageSize = defaultUserPageSize
	}
	return s.users.ListUsers(ctx, pageToken, pageSize)
}

// lookup resolves the login identifier. Email is canonical; a value that
// doesn't look like an email is treated as a phone number, an alternate
// key into the same credential record.
func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.users.GetUserByEmail(ctx, strings.ToLower(identifier))
	}
	return s.users.GetUserByPhone(ctx, identifier)
}
