package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartextract/internal/domain/entity"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/repository"
	"smartextract/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokenService maps token strings to canned claims.
type stubTokenService struct {
	tokens map[string]*service.Claims
}

func (s *stubTokenService) Issue(uuid.UUID, []string, map[string]string, time.Duration) (string, error) {
	return "", nil
}

func (s *stubTokenService) Validate(token string) (*service.Claims, error) {
	claims, ok := s.tokens[token]
	if !ok {
		return nil, domainerrors.ErrInvalidToken.WrapMessage("unknown token")
	}

	return claims, nil
}

func (s *stubTokenService) AccessTokenTTL() time.Duration { return time.Hour }

// stubUserRepo resolves exactly one user.
type stubUserRepo struct {
	user *entity.User
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) List(context.Context, int, int) ([]*entity.User, error) { return nil, nil }

func (r *stubUserRepo) Create(context.Context, *entity.User) error { return nil }

func (r *stubUserRepo) Update(context.Context, *entity.User) error { return nil }

func claimsFor(userID uuid.UUID, scopes ...string) *service.Claims {
	return &service.Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ID:        "test-token-id",
		},
	}
}

func runAuth(m *AuthMiddleware, authorization string, after echo.HandlerFunc) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	if after == nil {
		after = func(c echo.Context) error { return nil }
	}

	return c, m.Authenticate(after)(c)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Username: "alice", IsActive: true}
	tokens := &stubTokenService{tokens: map[string]*service.Claims{
		"good": claimsFor(user.ID, entity.ScopeUser),
	}}
	m := NewAuthMiddleware(tokens, &stubUserRepo{user: user})

	c, err := runAuth(m, "Bearer good", nil)
	require.NoError(t, err)
	assert.Equal(t, user.ID, c.Get(ContextKeyUserID))
	assert.Equal(t, []string{entity.ScopeUser}, c.Get(ContextKeyScopes))

	userID, err := UserID(c)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	user := &entity.User{ID: uuid.New(), IsActive: true}
	tokens := &stubTokenService{tokens: map[string]*service.Claims{
		"good":     claimsFor(user.ID),
		"badsub":   {RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"}},
		"orphaned": claimsFor(uuid.New()),
	}}
	m := NewAuthMiddleware(tokens, &stubUserRepo{user: user})

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "missing header", authorization: ""},
		{name: "not bearer", authorization: "Basic Zm9vOmJhcg=="},
		{name: "unknown token", authorization: "Bearer nope"},
		{name: "malformed subject", authorization: "Bearer badsub"},
		{name: "deleted account", authorization: "Bearer orphaned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runAuth(m, tt.authorization, nil)
			require.ErrorIs(t, err, domainerrors.ErrInvalidToken)
		})
	}
}

func TestAuthMiddleware_InactiveAccount(t *testing.T) {
	user := &entity.User{ID: uuid.New(), IsActive: false}
	tokens := &stubTokenService{tokens: map[string]*service.Claims{
		"good": claimsFor(user.ID),
	}}
	m := NewAuthMiddleware(tokens, &stubUserRepo{user: user})

	_, err := runAuth(m, "Bearer good", nil)
	require.ErrorIs(t, err, domainerrors.ErrInactiveAccount)
}

func TestAuthMiddleware_RequireScope(t *testing.T) {
	user := &entity.User{ID: uuid.New(), IsActive: true, IsSuperuser: true}
	tokens := &stubTokenService{tokens: map[string]*service.Claims{
		"admin": claimsFor(user.ID, entity.ScopeUser, entity.ScopeAdmin),
		"plain": claimsFor(user.ID, entity.ScopeUser),
	}}
	m := NewAuthMiddleware(tokens, &stubUserRepo{user: user})

	adminOnly := m.RequireScope(entity.ScopeAdmin)(func(c echo.Context) error { return nil })

	_, err := runAuth(m, "Bearer admin", adminOnly)
	require.NoError(t, err)

	_, err = runAuth(m, "Bearer plain", adminOnly)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)
}
