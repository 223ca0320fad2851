// Package ratelimit implements fixed-window request counting keyed by client
// identity. Counts live in a pluggable Store so single-instance deployments
// can use the in-process map while multi-instance deployments share windows
// through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Config defines the fixed-window parameters for one limiter.
type Config struct {
	// Limit is the number of requests allowed per window.
	Limit int
	// Window is the fixed window length.
	Window time.Duration
}

// Decision is the outcome of one Allow call against the active window.
type Decision struct {
	// Allowed is false once the window's count exceeds the limit.
	Allowed bool
	// Remaining is how many further requests the window accepts.
	Remaining int
	// ResetAt is when the active window elapses.
	ResetAt time.Time
	// Limit echoes the configured per-window limit.
	Limit int
}

// Store holds per-key window state. Incr must be atomic per key: concurrent
// calls for the same key may not under-count.
type Store interface {
	// Incr increments the key's counter, starting a fresh window when none
	// is active or the previous one has elapsed. It returns the count after
	// increment and the active window's reset time.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)

	// Peek returns the key's current count and reset time without
	// incrementing. active is false when no window is in progress.
	Peek(ctx context.Context, key string) (count int64, resetAt time.Time, active bool, err error)
}

// Limiter applies a fixed-window Config against a Store.
type Limiter struct {
	store Store
	cfg   Config
}

func New(cfg Config, store Store) *Limiter {
	return &Limiter{store: store, cfg: cfg}
}

// Allow counts the request and reports whether it is within the window
// limit. The first Limit requests of a window pass; request Limit+1 and
// beyond are refused until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, resetAt, err := l.store.Incr(ctx, key, l.cfg.Window)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Allowed:   count <= int64(l.cfg.Limit),
		Remaining: remaining(l.cfg.Limit, count),
		ResetAt:   resetAt,
		Limit:     l.cfg.Limit,
	}, nil
}

// Remaining reports how many requests the key's active window still accepts,
// or the full limit when no window is active. It does not count a request.
func (l *Limiter) Remaining(ctx context.Context, key string) (int, error) {
	count, _, active, err := l.store.Peek(ctx, key)
	if err != nil {
		return 0, err
	}
	if !active {
		return l.cfg.Limit, nil
	}
	return remaining(l.cfg.Limit, count), nil
}

// ResetAt reports when the key's active window elapses. ok is false when no
// window is active.
func (l *Limiter) ResetAt(ctx context.Context, key string) (at time.Time, ok bool, err error) {
	_, resetAt, active, err := l.store.Peek(ctx, key)
	if err != nil {
		return time.Time{}, false, err
	}
	return resetAt, active, nil
}

// Config returns the limiter's window configuration.
func (l *Limiter) Config() Config { return l.cfg }

func remaining(limit int, count int64) int {
	r := int64(limit) - count
	if r < 0 {
		return 0
	}
	return int(r)
}
