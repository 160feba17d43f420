// Package security holds the replay and rate-limit stores backing the CSRF
// and throttling middleware. The memory backend is per-instance; the redis
// backend shares state across instances.
package security

import (
	"context"
	"sync"
	"time"

	"smartextract/internal/domain/service"
)

const defaultCleanupInterval = time.Hour

// memoryReplayStore keeps used tokens in a map with per-entry expiry. Expired
// entries are swept opportunistically, at most once per cleanup interval, so
// a hot path never pays for a full scan.
type memoryReplayStore struct {
	mu       sync.Mutex
	used     map[string]time.Time // token -> expiry
	interval time.Duration
	lastScan time.Time
	now      func() time.Time
}

// NewMemoryReplayStore is the constructor for the in-memory replay store.
func NewMemoryReplayStore(cleanupInterval time.Duration) service.ReplayStore {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	return &memoryReplayStore{
		used:     make(map[string]time.Time),
		interval: cleanupInterval,
		now:      time.Now,
	}
}

// MarkUsed records the token, returning false when it was already present.
func (s *memoryReplayStore) MarkUsed(_ context.Context, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if expiry, ok := s.used[token]; ok && now.Before(expiry) {
		return false, nil
	}

	s.used[token] = now.Add(ttl)

	return true, nil
}

// sweepLocked drops expired entries, throttled to once per interval.
func (s *memoryReplayStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastScan) < s.interval {
		return
	}
	s.lastScan = now

	for token, expiry := range s.used {
		if !now.Before(expiry) {
			delete(s.used, token)
		}
	}
}

type rateWindow struct {
	start time.Time
	count int
}

// memoryRateLimitStore keeps one fixed counting window per client. When the
// tracked-client map grows past maxTracked, windows idle for more than twice
// the window length are evicted.
type memoryRateLimitStore struct {
	mu         sync.Mutex
	windows    map[string]*rateWindow
	maxTracked int
	now        func() time.Time
}

// NewMemoryRateLimitStore is the constructor for the in-memory rate-limit store.
func NewMemoryRateLimitStore(maxTracked int) service.RateLimitStore {
	if maxTracked <= 0 {
		maxTracked = 1000
	}

	return &memoryRateLimitStore{
		windows:    make(map[string]*rateWindow),
		maxTracked: maxTracked,
		now:        time.Now,
	}
}

// Hit registers one request and reports the window state.
func (s *memoryRateLimitStore) Hit(_ context.Context, clientID string, window time.Duration) (int, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	w, ok := s.windows[clientID]
	if !ok || now.Sub(w.start) >= window {
		if !ok && len(s.windows) >= s.maxTracked {
			s.evictLocked(now, window)
		}
		s.windows[clientID] = &rateWindow{start: now, count: 1}

		return 1, window, nil
	}

	w.count++

	return w.count, w.start.Add(window).Sub(now), nil
}

// evictLocked removes clients whose window is stale beyond twice its length.
func (s *memoryRateLimitStore) evictLocked(now time.Time, window time.Duration) {
	cutoff := 2 * window
	for id, w := range s.windows {
		if now.Sub(w.start) > cutoff {
			delete(s.windows, id)
		}
	}
}
