package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gametopup/storefront/domain"
	"github.com/gametopup/storefront/internal/auth"
)

// memUserRepo is a minimal in-memory UserRepository for flow tests. The
// OTP writes mutate state the way the mongo implementation does, which
// the single-use and expiry scenarios depend on.
type memUserRepo struct {
	users map[string]*domain.User // by ID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = "user-" + u.Email
	}
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) UpdateUser(_ context.Context, u *domain.User) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	// Field-level OTP writes stay authoritative: UpdateUser does not
	// touch the challenge pair, mirroring the mongo $set behavior.
	cp := *u
	cp.OTPCodeHash = stored.OTPCodeHash
	cp.OTPExpiresAt = stored.OTPExpiresAt
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) SetOTPChallenge(_ context.Context, userID, codeHash string, expiresAt time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.OTPCodeHash = &codeHash
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (r *memUserRepo) ClearOTPChallenge(_ context.Context, userID string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.OTPCodeHash = nil
	u.OTPExpiresAt = nil
	return nil
}

func (r *memUserRepo) ListUsers(_ context.Context, _ string, _ int) ([]*domain.User, string, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, "", nil
}

// captureSender records delivered messages so tests can read the code
// back out of the message body.
type captureSender struct {
	destinations []string
	messages     []string
	fail         bool
}

func (s *captureSender) Send(_ context.Context, destination, message string) error {
	if s.fail {
		return errors.New("gateway unreachable")
	}
	s.destinations = append(s.destinations, destination)
	s.messages = append(s.messages, message)
	return nil
}

// lastCode extracts the 6-digit code from the most recent message.
func (s *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.messages)
	msg := s.messages[len(s.messages)-1]
	for i := 0; i+6 <= len(msg); i++ {
		candidate := msg[i : i+6]
		digits := true
		for _, c := range candidate {
			if c < '0' || c > '9' {
				digits = false
				break
			}
		}
		if digits {
			return candidate
		}
	}
	t.Fatalf("no code found in message %q", msg)
	return ""
}

type authFixture struct {
	svc    *AuthService
	repo   *memUserRepo
	sender *captureSender
	userID string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	repo := newMemUserRepo()
	sender := &captureSender{}
	tokens, err := NewTokenService(testSigningSecret)
	require.NoError(t, err)
	svc := NewAuthService(repo, auth.NewArgon2Hasher(), tokens, sender)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Phone:    "+6281234567890",
		Password: "S3cret!pass",
	})
	require.NoError(t, err)

	return &authFixture{svc: svc, repo: repo, sender: sender, userID: user.ID}
}

func (f *authFixture) storedUser(t *testing.T) *domain.User {
	t.Helper()
	u, err := f.repo.GetUserByID(context.Background(), f.userID)
	require.NoError(t, err)
	return u
}

func TestAuthService_LoginThenVerify(t *testing.T) {
	// Scenario: full happy path through the state machine.
	f := newAuthFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	require.NotEmpty(t, pending.PendingToken)
	assert.Equal(t, 300, pending.ExpiresIn)

	// Challenge stored, code delivered out-of-band, never in the result.
	u := f.storedUser(t)
	require.True(t, u.HasPendingOTP())
	code := f.sender.lastCode(t)
	assert.NotContains(t, pending.PendingToken, code)
	assert.Equal(t, "+6281234567890", f.sender.destinations[0])

	session, err := f.svc.VerifyOTP(ctx, pending.PendingToken, code)
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionToken)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), session.ExpiresIn)
	assert.Equal(t, domain.RoleCustomer, session.User.Role)

	// Challenge consumed.
	u = f.storedUser(t)
	assert.False(t, u.HasPendingOTP())
	assert.NotNil(t, u.LastLoginAt)

	// Session token carries the full identity claim set.
	id, err := f.svc.IdentityFromToken(session.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, f.userID, id.UserID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "Alice", id.Name)
	assert.Equal(t, domain.RoleCustomer, id.Role)
}

func TestAuthService_EnumerationResistance(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, errUnknown := f.svc.Login(ctx, "nobody@example.com", "whatever")
	_, errWrongPw := f.svc.Login(ctx, "alice@example.com", "wrong-password")

	assert.True(t, errors.Is(errUnknown, domain.ErrInvalidCredentials))
	assert.True(t, errors.Is(errWrongPw, domain.ErrInvalidCredentials))
	// No challenge must be written on a failed password check.
	assert.False(t, f.storedUser(t).HasPendingOTP())
}

func TestAuthService_NoLockoutOnRepeatedFailures(t *testing.T) {
	// Three wrong passwords in a row all fail identically; there is no
	// lockout state. Documented limitation, not a bug.
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(ctx, "alice@example.com", "wrong-password")
		assert.True(t, errors.Is(err, domain.ErrInvalidCredentials), "attempt %d", i+1)
	}
}

func TestAuthService_WrongCodeKeepsChallenge(t *testing.T) {
	// Scenario: wrong code leaves the pending state untouched so the
	// caller may retry with the same token.
	f := newAuthFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	code := f.sender.lastCode(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = f.svc.VerifyOTP(ctx, pending.PendingToken, wrong)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	assert.True(t, f.storedUser(t).HasPendingOTP(), "challenge must survive a wrong code")

	// The correct code still works afterwards.
	_, err = f.svc.VerifyOTP(ctx, pending.PendingToken, code)
	assert.NoError(t, err)
}

func TestAuthService_SingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	code := f.sender.lastCode(t)

	_, err = f.svc.VerifyOTP(ctx, pending.PendingToken, code)
	require.NoError(t, err)

	// The consumed challenge must never validate again.
	_, err = f.svc.VerifyOTP(ctx, pending.PendingToken, code)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestAuthService_ExpiredChallenge(t *testing.T) {
	// Scenario: clock advances past the OTP expiry; the correct code is
	// rejected and the challenge fields are cleared as a side effect.
	f := newAuthFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	code := f.sender.lastCode(t)

	// Expire just the stored challenge so the pending token itself is
	// still within its window.
	u := f.repo.users[f.userID]
	expired := time.Now().Add(-time.Second)
	u.OTPExpiresAt = &expired

	_, err = f.svc.VerifyOTP(ctx, pending.PendingToken, code)
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))
	assert.False(t, f.storedUser(t).HasPendingOTP(), "expired challenge must be cleared")
}

func TestAuthService_ExpiredPendingToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	code := f.sender.lastCode(t)

	// Both the token clock and the challenge clock move forward.
	f.svc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	f.svc.tokens.now = f.svc.now

	_, err = f.svc.VerifyOTP(ctx, pending.PendingToken, code)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestAuthService_ReloginOverwritesChallenge(t *testing.T) {
	// Two logins race: the second challenge overwrites the first, and
	// the first code now fails as a plain mismatch. Accepted last-write-
	// wins behavior.
	f := newAuthFixture(t)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	firstCode := f.sender.lastCode(t)

	_, err = f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	secondCode := f.sender.lastCode(t)

	if firstCode == secondCode {
		t.Skip("codes collided; overwrite indistinguishable")
	}

	_, err = f.svc.VerifyOTP(ctx, first.PendingToken, firstCode)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestAuthService_DeliveryFailureDoesNotBlockPending(t *testing.T) {
	// A failed send is logged, not surfaced: the challenge is already
	// stored and the pending token is still issued.
	f := newAuthFixture(t)
	f.sender.fail = true
	ctx := context.Background()

	pending, err := f.svc.Login(ctx, "alice@example.com", "S3cret!pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pending.PendingToken)
	assert.True(t, f.storedUser(t).HasPendingOTP())
}

func TestAuthService_PhoneIdentifier(t *testing.T) {
	// Phone login is an alternate lookup key into the same flow.
	f := newAuthFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Login(ctx, "+6281234567890", "S3cret!pass")
	require.NoError(t, err)

	code := f.sender.lastCode(t)
	_, err = f.svc.VerifyOTP(ctx, pending.PendingToken, code)
	assert.NoError(t, err)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Email: "", Name: "X", Password: "longenough"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.Register(ctx, RegisterInput{Email: "b@example.com", Name: "B", Password: "short"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestAuthService_ConfiguredTTLs(t *testing.T) {
	repo := newMemUserRepo()
	sender := &captureSender{}
	tokens, err := NewTokenService(testSigningSecret)
	require.NoError(t, err)

	// The configured lifetimes must flow through to the returned
	// expiries, not the built-in defaults.
	svc := NewAuthService(repo, auth.NewArgon2Hasher(), tokens, sender,
		WithOTPTTL(2*time.Minute),
		WithSessionTTL(time.Hour),
	)
	ctx := context.Background()

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "carol@example.com",
		Name:     "Carol",
		Phone:    "+6280000000001",
		Password: "S3cret!pass",
	})
	require.NoError(t, err)

	pending, err := svc.Login(ctx, "carol@example.com", "S3cret!pass")
	require.NoError(t, err)
	assert.Equal(t, 120, pending.ExpiresIn)

	session, err := svc.VerifyOTP(ctx, pending.PendingToken, sender.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, 3600, session.ExpiresIn)
}

func TestAuthService_ListUsers(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{
		Email:    "bob@example.com",
		Name:     "Bob",
		Phone:    "+6280000000002",
		Password: "S3cret!pass",
	})
	require.NoError(t, err)

	users, _, err := f.svc.ListUsers(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, users, 2)

	emails := []string{users[0].Email, users[1].Email}
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, emails)
}
