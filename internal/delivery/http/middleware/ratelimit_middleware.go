package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smartextract/config"
	"smartextract/internal/domain/service"

	"github.com/labstack/echo/v4"
)

const (
	defaultRateLimit  = 100
	defaultRateWindow = time.Minute

	// unknownClient is the shared bucket for requests whose origin cannot be
	// determined. Failing open to a common bucket only degrades abuse
	// accounting, it never blocks legitimate traffic outright.
	unknownClient = "unknown-client"
)

// rateLimitBody is the wire shape of a 429 response.
type rateLimitBody struct {
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
	Limit             int    `json:"limit"`
	WindowSeconds     int    `json:"window_seconds"`
}

// RateLimitMiddleware applies a fixed-window request throttle per client.
// Windows reset rather than decay, so bursts across a window boundary can
// briefly exceed the limit. That is the accepted tradeoff of this scheme.
type RateLimitMiddleware struct {
	limit  int
	window time.Duration

	store  service.RateLimitStore
	logger *slog.Logger
}

// NewRateLimitMiddleware builds the throttle from configuration.
func NewRateLimitMiddleware(cfg *config.Config, store service.RateLimitStore, logger *slog.Logger) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		limit:  defaultRateLimit,
		window: defaultRateWindow,
		store:  store,
		logger: logger,
	}

	if cfg.RateLimit != nil {
		if cfg.RateLimit.Limit > 0 {
			m.limit = cfg.RateLimit.Limit
		}
		if cfg.RateLimit.Window > 0 {
			m.window = cfg.RateLimit.Window
		}
	}

	return m
}

// Throttle is the echo middleware entry point.
func (m *RateLimitMiddleware) Throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		clientID := ClientID(c)

		count, resetIn, err := m.store.Hit(c.Request().Context(), clientID, m.window)
		if err != nil {
			// A broken counter store must not take the API down.
			m.logger.Error("Rate limit store failure, letting request through", slog.Any("error", err))

			return next(c)
		}

		if count > m.limit {
			m.logger.Warn("Rate limit exceeded",
				slog.String("client", clientID),
				slog.Int("count", count),
				slog.Int("limit", m.limit),
			)

			return c.JSON(http.StatusTooManyRequests, rateLimitBody{
				Message:           "Rate limit exceeded, try again later",
				RetryAfterSeconds: int(resetIn.Seconds() + 0.5),
				Limit:             m.limit,
				WindowSeconds:     int(m.window.Seconds()),
			})
		}

		return next(c)
	}
}

// ClientID resolves the throttling key. Proxy headers win over the direct
// connection address: X-Real-IP first, then the first hop of X-Forwarded-For.
func ClientID(c echo.Context) string {
	if ip := strings.TrimSpace(c.Request().Header.Get(echo.HeaderXRealIP)); ip != "" {
		return ip
	}

	if forwarded := c.Request().Header.Get(echo.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := c.RealIP(); ip != "" {
		return ip
	}

	return unknownClient
}
