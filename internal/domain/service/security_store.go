package service

import (
	"context"
	"time"
)

// ReplayStore records CSRF tokens that have been presented, so a second
// presentation of the same value can be rejected. Entries expire after ttl.
// Implementations must be safe for concurrent use; the in-memory version is a
// single-instance limitation and can be swapped for a shared store (redis) in
// multi-instance deployments.
type ReplayStore interface {
	// MarkUsed records the token. It returns true when this was the first
	// use, false when the token was already present (replay).
	MarkUsed(ctx context.Context, token string, ttl time.Duration) (bool, error)
}

// RateLimitStore keeps one fixed counting window per client identifier.
type RateLimitStore interface {
	// Hit registers a request for the client and returns the count inside the
	// current window and the time remaining until the window resets. The
	// first hit of an expired window restarts it with count 1.
	Hit(ctx context.Context, clientID string, window time.Duration) (count int, resetIn time.Duration, err error)
}
