package http

import (
	"context"
	"log/slog"
	"net"
	"slices"
	"strconv"

	"smartextract/config"
	"smartextract/internal/delivery"
	deliverymw "smartextract/internal/delivery/http/middleware"
	"smartextract/internal/delivery/http/router"
	"smartextract/internal/delivery/http/validator"
	"smartextract/internal/domain/lifecycle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	slogecho "github.com/samber/slog-echo"
	"go.uber.org/fx"
)

type HTTPParams struct {
	fx.In
	fx.Lifecycle

	Config              *config.Config
	Logger              *slog.Logger
	RequestIDMiddleware *deliverymw.RequestIDMiddleware
	LoggerMiddleware    *deliverymw.LoggerMiddleware
	ErrorMiddleware     *deliverymw.ErrorMiddleware
	RateLimitMiddleware *deliverymw.RateLimitMiddleware
	CSRFMiddleware      *deliverymw.CSRFMiddleware
	RouterParams        router.RouterParams
}

type httpServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// NewServer wires the echo instance: recovery and request identity first,
// then the security middlewares in rate-limit -> CSRF order so throttled
// requests never consume CSRF state.
func NewServer(params HTTPParams) (delivery.Delivery, error) {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.Validator = validator.New()
	echoServer.HTTPErrorHandler = params.ErrorMiddleware.HandleHTTPError

	echoServer.Use(middleware.Recover())
	echoServer.Use(params.RequestIDMiddleware.Process)
	echoServer.Use(slogecho.New(params.Logger))
	echoServer.Use(params.LoggerMiddleware.Handle)
	echoServer.Use(deliverymw.SecurityHeaders)
	echoServer.Use(corsMiddleware(params.Config, params.Logger))

	if params.Config.HTTP.MaxRequestBodySize != "" {
		echoServer.Use(middleware.BodyLimit(params.Config.HTTP.MaxRequestBodySize))
	}

	echoServer.Use(params.RateLimitMiddleware.Throttle)
	echoServer.Use(params.CSRFMiddleware.Guard)

	router := router.NewRouter(params.RouterParams)
	router.RegisterRoutes(echoServer)

	delivery := &httpServer{
		cfg:    params.Config,
		logger: params.Logger,
		server: echoServer,
	}

	params.Append(fx.Hook{
		OnStop: delivery.stop,
	})

	return delivery, nil
}

// corsMiddleware allows only the configured origins. A wildcard list is
// refused unless the insecure flag is set, and then logged loudly.
func corsMiddleware(cfg *config.Config, logger *slog.Logger) echo.MiddlewareFunc {
	origins := cfg.HTTP.AllowOrigins

	if slices.Contains(origins, "*") {
		if cfg.HTTP.InsecureAllowAllOrigins {
			logger.Warn("CORS ALLOWS ALL ORIGINS, never enable http.insecureAllowAllOrigins outside development")
		} else {
			logger.Error("Wildcard CORS origin refused, set http.insecureAllowAllOrigins to opt in")
			origins = slices.DeleteFunc(slices.Clone(origins), func(o string) bool { return o == "*" })
		}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: true,
	})
}

func (s *httpServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("Starting HTTP server", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil {
		return errors.Wrap(err, "failed to serve http")
	}

	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
