package security

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"smartextract/internal/domain/service"
)

const (
	replayKeyPrefix = "csrf:used:"
	rateKeyPrefix   = "ratelimit:"
)

// redisReplayStore records used CSRF tokens via SET NX with a TTL, giving
// replay protection that survives restarts and spans instances.
type redisReplayStore struct {
	client redis.UniversalClient
}

// NewRedisReplayStore is the constructor for the redis-backed replay store.
func NewRedisReplayStore(client redis.UniversalClient) service.ReplayStore {
	return &redisReplayStore{client: client}
}

// MarkUsed records the token atomically; a losing SET NX means replay.
func (s *redisReplayStore) MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	first, err := s.client.SetNX(ctx, replayKeyPrefix+token, 1, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to record csrf token")
	}

	return first, nil
}

// redisRateLimitStore counts hits with INCR and lets redis expire the key at
// the window boundary.
type redisRateLimitStore struct {
	client redis.UniversalClient
}

// NewRedisRateLimitStore is the constructor for the redis-backed rate-limit store.
func NewRedisRateLimitStore(client redis.UniversalClient) service.RateLimitStore {
	return &redisRateLimitStore{client: client}
}

// Hit increments the client's window counter, starting the window on the
// first hit.
func (s *redisRateLimitStore) Hit(ctx context.Context, clientID string, window time.Duration) (int, time.Duration, error) {
	key := rateKeyPrefix + clientID

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to count request")
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, errors.Wrap(err, "failed to start rate window")
		}

		return 1, window, nil
	}

	resetIn, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to read rate window ttl")
	}
	if resetIn < 0 {
		// Key lost its TTL (flushed or INCR raced an expiry); restart it.
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, errors.Wrap(err, "failed to restart rate window")
		}
		resetIn = window
	}

	return int(count), resetIn, nil
}
