package security

import (
	"context"
	"log/slog"
	"time"

	"smartextract/config"
	"smartextract/internal/domain/constants"
	"smartextract/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params holds dependencies for the security store provider.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewStores builds the replay and rate-limit stores for the configured
// backend. The default is the in-memory backend.
func NewStores(params Params) (service.ReplayStore, service.RateLimitStore, error) {
	cfg := params.Cfg

	backend := constants.SecurityStoreMemory
	if cfg.SecurityStore != nil && cfg.SecurityStore.Backend != "" {
		backend = cfg.SecurityStore.Backend
	}

	var cleanupInterval time.Duration
	if cfg.CSRF != nil {
		cleanupInterval = cfg.CSRF.CleanupInterval
	}
	var maxTracked int
	if cfg.RateLimit != nil {
		maxTracked = cfg.RateLimit.MaxTrackedClients
	}

	switch backend {
	case constants.SecurityStoreMemory:
		params.Logger.Info("Using in-memory security stores")

		return NewMemoryReplayStore(cleanupInterval), NewMemoryRateLimitStore(maxTracked), nil

	case constants.SecurityStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.SecurityStore.RedisAddr,
			Password: cfg.SecurityStore.RedisPassword,
			DB:       cfg.SecurityStore.RedisDB,
		})

		params.Lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return errors.Wrap(client.Ping(ctx).Err(), "failed to connect to redis")
			},
			OnStop: func(context.Context) error {
				return errors.WithStack(client.Close())
			},
		})

		params.Logger.Info("Using redis security stores",
			slog.String("addr", cfg.SecurityStore.RedisAddr),
		)

		return NewRedisReplayStore(client), NewRedisRateLimitStore(client), nil

	default:
		return nil, nil, errors.Errorf("unknown security store backend: %s", backend)
	}
}
