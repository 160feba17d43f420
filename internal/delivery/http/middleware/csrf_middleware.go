package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smartextract/config"
	domainerrors "smartextract/internal/domain/errors"
	"smartextract/internal/domain/service"

	"github.com/labstack/echo/v4"
)

const (
	defaultCSRFCookieName = "csrf_token"
	defaultCSRFHeaderName = "X-CSRF-Token"
	defaultCSRFCookieAge  = time.Hour
	defaultCSRFCleanup    = 5 * time.Minute

	productionEnv = "production"
)

// CSRFMiddleware implements the double-submit-cookie protocol: every response
// on a protected path carries a fresh random token cookie, and unsafe requests
// must echo the cookie value in a header. A presented token is single-use;
// reuse is rejected via the replay store.
type CSRFMiddleware struct {
	cookieName     string
	headerName     string
	cookieMaxAge   time.Duration
	sameSite       http.SameSite
	cookieSecure   bool
	protectedPaths []string
	bypass         bool

	replays service.ReplayStore
	logger  *slog.Logger
}

// NewCSRFMiddleware builds the CSRF guard from configuration. The validation
// bypass flag is refused in production.
func NewCSRFMiddleware(cfg *config.Config, replays service.ReplayStore, logger *slog.Logger) *CSRFMiddleware {
	m := &CSRFMiddleware{
		cookieName:     defaultCSRFCookieName,
		headerName:     defaultCSRFHeaderName,
		cookieMaxAge:   defaultCSRFCookieAge,
		sameSite:       http.SameSiteLaxMode,
		cookieSecure:   true,
		protectedPaths: []string{"/api/"},
		replays:        replays,
		logger:         logger,
	}

	csrfCfg := cfg.CSRF
	if csrfCfg == nil {
		return m
	}

	if csrfCfg.CookieName != "" {
		m.cookieName = csrfCfg.CookieName
	}
	if csrfCfg.HeaderName != "" {
		m.headerName = csrfCfg.HeaderName
	}
	if csrfCfg.CookieMaxAge > 0 {
		m.cookieMaxAge = csrfCfg.CookieMaxAge
	}
	if len(csrfCfg.ProtectedPaths) > 0 {
		m.protectedPaths = csrfCfg.ProtectedPaths
	}
	m.cookieSecure = csrfCfg.CookieSecure
	m.sameSite = parseSameSite(csrfCfg.SameSite)

	if csrfCfg.InsecureDisable {
		if strings.EqualFold(cfg.Env.Env, productionEnv) {
			logger.Error("csrf.insecureDisable is set but refused in production, validation stays on")
		} else {
			logger.Warn("CSRF VALIDATION IS DISABLED, never enable csrf.insecureDisable outside development")
			m.bypass = true
		}
	}

	return m
}

// Guard is the echo middleware entry point.
func (m *CSRFMiddleware) Guard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		if !m.protected(req.URL.Path) {
			return next(c)
		}

		if safeMethod(req.Method) {
			// Hand out a fresh token so the client can make its next
			// unsafe request.
			m.rotateCookie(c)

			return next(c)
		}

		if !m.bypass {
			if appErr := m.validate(c); appErr != nil {
				// The protocol's wire format, not the generic error envelope.
				return c.JSON(appErr.HTTPCode(), map[string]string{"detail": appErr.Message()})
			}
		}

		m.rotateCookie(c)

		return next(c)
	}
}

// validate enforces cookie+header presence, equality and single-use. The
// returned sentinel's message is the rejection detail for the 403 body.
func (m *CSRFMiddleware) validate(c echo.Context) domainerrors.AppError {
	cookie, err := c.Cookie(m.cookieName)
	header := c.Request().Header.Get(m.headerName)

	if err != nil || cookie.Value == "" || header == "" {
		return domainerrors.ErrCSRFMissing
	}

	if cookie.Value != header {
		return domainerrors.ErrCSRFMismatch
	}

	firstUse, err := m.replays.MarkUsed(c.Request().Context(), cookie.Value, m.cookieMaxAge)
	if err != nil {
		m.logger.Error("CSRF replay store failure, failing closed", slog.Any("error", err))

		return domainerrors.ErrCSRFUnavailable
	}
	if !firstUse {
		return domainerrors.ErrCSRFReplay
	}

	return nil
}

// rotateCookie attaches a freshly generated token cookie to the response.
func (m *CSRFMiddleware) rotateCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    newCSRFToken(),
		Path:     "/",
		MaxAge:   int(m.cookieMaxAge.Seconds()),
		Secure:   m.cookieSecure,
		HttpOnly: true,
		SameSite: m.sameSite,
	})
}

func (m *CSRFMiddleware) protected(path string) bool {
	for _, prefix := range m.protectedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// newCSRFToken returns 256 bits of hex-encoded randomness.
func newCSRFToken() string {
	buf := make([]byte, 32)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)

	return hex.EncodeToString(buf)
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
