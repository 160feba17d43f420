package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"smartextract/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapReplayStore is a minimal single-use set for middleware tests.
type mapReplayStore struct {
	mu   sync.Mutex
	used map[string]bool
	err  error
}

func newMapReplayStore() *mapReplayStore {
	return &mapReplayStore{used: make(map[string]bool)}
}

func (s *mapReplayStore) MarkUsed(_ context.Context, token string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return false, s.err
	}

	if s.used[token] {
		return false, nil
	}
	s.used[token] = true

	return true, nil
}

func newCSRFTestGuard(t *testing.T, cfgMut func(*config.Config)) *CSRFMiddleware {
	t.Helper()

	cfg := &config.Config{}
	cfg.Env.Env = "test"
	cfg.CSRF = &config.CSRFConfig{ProtectedPaths: []string{"/api/"}}
	if cfgMut != nil {
		cfgMut(cfg)
	}

	return NewCSRFMiddleware(cfg, newMapReplayStore(), slog.Default())
}

func doCSRF(guard *CSRFMiddleware, method, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := guard.Guard(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	return rec
}

func csrfCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	return nil
}

func TestCSRFMiddleware_SafeGetIssuesCookie(t *testing.T) {
	guard := newCSRFTestGuard(t, nil)

	rec := doCSRF(guard, http.MethodGet, "/api/v1/documents", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := csrfCookie(rec, defaultCSRFCookieName)
	require.NotNil(t, cookie)
	assert.Len(t, cookie.Value, 64, "256-bit token, hex encoded")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
}

func TestCSRFMiddleware_UnprotectedPathSkipsChecks(t *testing.T) {
	guard := newCSRFTestGuard(t, nil)

	rec := doCSRF(guard, http.MethodPost, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, csrfCookie(rec, defaultCSRFCookieName), "no cookie outside protected prefixes")
}

func TestCSRFMiddleware_MissingTokens(t *testing.T) {
	guard := newCSRFTestGuard(t, nil)

	rec := doCSRF(guard, http.MethodPost, "/api/v1/documents", nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"CSRF token missing"}`, rec.Body.String())

	// Header without cookie is still missing.
	rec = doCSRF(guard, http.MethodPost, "/api/v1/documents", func(req *http.Request) {
		req.Header.Set(defaultCSRFHeaderName, newCSRFToken())
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"CSRF token missing"}`, rec.Body.String())
}

func TestCSRFMiddleware_Mismatch(t *testing.T) {
	guard := newCSRFTestGuard(t, nil)

	rec := doCSRF(guard, http.MethodPost, "/api/v1/documents", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: defaultCSRFCookieName, Value: newCSRFToken()})
		req.Header.Set(defaultCSRFHeaderName, newCSRFToken())
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"CSRF token mismatch"}`, rec.Body.String())
}

func TestCSRFMiddleware_SingleUseAndRotation(t *testing.T) {
	guard := newCSRFTestGuard(t, nil)
	token := newCSRFToken()

	present := func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: defaultCSRFCookieName, Value: token})
		req.Header.Set(defaultCSRFHeaderName, token)
	}

	// First presentation of a matching pair succeeds and rotates the cookie.
	rec := doCSRF(guard, http.MethodPost, "/api/v1/documents", present)
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := csrfCookie(rec, defaultCSRFCookieName)
	require.NotNil(t, rotated)
	assert.NotEqual(t, token, rotated.Value)

	// The same value presented again is a replay.
	rec = doCSRF(guard, http.MethodPost, "/api/v1/documents", present)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"CSRF token already used"}`, rec.Body.String())
}

func TestCSRFMiddleware_StoreFailureFailsClosed(t *testing.T) {
	cfg := &config.Config{}
	cfg.Env.Env = "test"
	cfg.CSRF = &config.CSRFConfig{ProtectedPaths: []string{"/api/"}}

	store := newMapReplayStore()
	store.err = errors.New("connection refused")
	guard := NewCSRFMiddleware(cfg, store, slog.Default())

	token := newCSRFToken()
	rec := doCSRF(guard, http.MethodPost, "/api/v1/documents", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: defaultCSRFCookieName, Value: token})
		req.Header.Set(defaultCSRFHeaderName, token)
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"detail":"CSRF validation unavailable"}`, rec.Body.String())
}

func TestCSRFMiddleware_BypassRefusedInProduction(t *testing.T) {
	guard := newCSRFTestGuard(t, func(cfg *config.Config) {
		cfg.Env.Env = "production"
		cfg.CSRF.InsecureDisable = true
	})

	rec := doCSRF(guard, http.MethodPost, "/api/v1/documents", nil)
	require.Equal(t, http.StatusForbidden, rec.Code, "validation stays on despite the flag")
}

func TestCSRFMiddleware_BypassOutsideProduction(t *testing.T) {
	guard := newCSRFTestGuard(t, func(cfg *config.Config) {
		cfg.CSRF.InsecureDisable = true
	})

	rec := doCSRF(guard, http.MethodPost, "/api/v1/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, csrfCookie(rec, defaultCSRFCookieName), "cookies keep rotating in bypass mode")
}
