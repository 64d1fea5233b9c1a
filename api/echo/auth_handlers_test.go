package echo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gametopup/storefront/domain"
	"github.com/gametopup/storefront/internal/auth"
	"github.com/gametopup/storefront/middleware"
	"github.com/gametopup/storefront/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeUserRepo is a single-user in-memory repository for handler tests.
type fakeUserRepo struct {
	user *domain.User
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = "user-1"
	}
	cp := *u
	r.user = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, domain.ErrUserNotFound
	}
	cp := *r.user
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, domain.ErrUserNotFound
	}
	cp := *r.user
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByPhone(_ context.Context, phone string) (*domain.User, error) {
	if r.user == nil || r.user.Phone != phone {
		return nil, domain.ErrUserNotFound
	}
	cp := *r.user
	return &cp, nil
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, u *domain.User) error {
	cp := *u
	cp.OTPCodeHash = r.user.OTPCodeHash
	cp.OTPExpiresAt = r.user.OTPExpiresAt
	r.user = &cp
	return nil
}

func (r *fakeUserRepo) SetOTPChallenge(_ context.Context, _, codeHash string, expiresAt time.Time) error {
	r.user.OTPCodeHash = &codeHash
	r.user.OTPExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearOTPChallenge(_ context.Context, _ string) error {
	r.user.OTPCodeHash = nil
	r.user.OTPExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context, _ string, _ int) ([]*domain.User, string, error) {
	if r.user == nil {
		return nil, "", nil
	}
	return []*domain.User{r.user}, "", nil
}

type recordingSender struct{ lastMessage string }

func (s *recordingSender) Send(_ context.Context, _, message string) error {
	s.lastMessage = message
	return nil
}

func (s *recordingSender) code(t *testing.T) string {
	t.Helper()
	for i := 0; i+6 <= len(s.lastMessage); i++ {
		candidate := s.lastMessage[i : i+6]
		if strings.IndexFunc(candidate, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			return candidate
		}
	}
	t.Fatal("no code in delivered message")
	return ""
}

func newTestServer(t *testing.T) (*echo.Echo, *recordingSender) {
	t.Helper()

	repo := &fakeUserRepo{}
	sender := &recordingSender{}
	tokens, err := services.NewTokenService(testSecret)
	require.NoError(t, err)
	authSvc := services.NewAuthService(repo, auth.NewArgon2Hasher(), tokens, sender)

	_, err = authSvc.Register(context.Background(), services.RegisterInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Phone:    "+6281234567890",
		Password: "S3cret!pass",
	})
	require.NoError(t, err)

	api := NewAPI(authSvc, nil, nil, nil, middleware.NewCookieWriter(false), "cb-token")
	e := echo.New()
	api.RegisterRoutes(e)
	return e, sender
}

func postJSON(e *echo.Echo, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestLoginVerifyOTPFlow(t *testing.T) {
	e, sender := newTestServer(t)

	// Step 1: password check issues the pending cookie.
	rec := postJSON(e, "/api/auth/login", `{"identifier":"alice@example.com","password":"S3cret!pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	pending := cookieByName(rec, middleware.PendingCookieName)
	require.NotNil(t, pending)
	assert.True(t, pending.HttpOnly)
	assert.Equal(t, 300, pending.MaxAge)
	assert.NotContains(t, rec.Body.String(), sender.code(t), "plaintext code must not be in the response")

	// Step 2: the delivered code swaps pending for session.
	rec = postJSON(e, "/api/auth/verify-otp", `{"code":"`+sender.code(t)+`"}`, pending)
	require.Equal(t, http.StatusOK, rec.Code)

	session := cookieByName(rec, middleware.SessionCookieName)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, 604800, session.MaxAge)

	cleared := cookieByName(rec, middleware.PendingCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// The session cookie now authenticates /api/auth/me.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session.Value})
	meRec := httptest.NewRecorder()
	e.ServeHTTP(meRec, req)
	assert.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meRec.Body.String(), "alice@example.com")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e, _ := newTestServer(t)

	unknown := postJSON(e, "/api/auth/login", `{"identifier":"nobody@example.com","password":"whatever1"}`)
	wrongPw := postJSON(e, "/api/auth/login", `{"identifier":"alice@example.com","password":"wrongpass1"}`)

	// Identical status and body for both failure causes.
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String())
}

func TestVerifyOTPWithoutPendingCookie(t *testing.T) {
	e, _ := newTestServer(t)
	rec := postJSON(e, "/api/auth/verify-otp", `{"code":"123456"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyOTPRejectsMalformedCode(t *testing.T) {
	e, _ := newTestServer(t)
	for _, body := range []string{`{"code":"12345"}`, `{"code":"12345a"}`, `{"code":""}`} {
		rec := postJSON(e, "/api/auth/verify-otp", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	e, _ := newTestServer(t)
	rec := postJSON(e, "/api/auth/logout", ``)
	require.Equal(t, http.StatusNoContent, rec.Code)

	session := cookieByName(rec, middleware.SessionCookieName)
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
	assert.Negative(t, session.MaxAge)
}
