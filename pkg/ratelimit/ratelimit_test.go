package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradelane/tradegate/pkg/ratelimit"
)

// fakeClock is a mutable time source so window rollover can be tested
// without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(limit int, window time.Duration) (*ratelimit.Limiter, *fakeClock) {
	clock := newFakeClock()
	store := ratelimit.NewMemoryStore().WithClock(clock.Now)
	return ratelimit.New(ratelimit.Config{Limit: limit, Window: window}, store), clock
}

func TestAllowWithinLimit(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(5, time.Minute)

	// Exactly the first `limit` calls pass; the (limit+1)-th and beyond fail.
	for i := 1; i <= 5; i++ {
		d, err := limiter.Allow(ctx, "203.0.113.1")
		require.NoError(t, err)
		require.True(t, d.Allowed, "call %d should pass", i)
		require.Equal(t, 5-i, d.Remaining)
	}

	for i := range 3 {
		d, err := limiter.Allow(ctx, "203.0.113.1")
		require.NoError(t, err)
		require.False(t, d.Allowed, "over-limit call %d should be refused", i+1)
		require.Equal(t, 0, d.Remaining)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(1, time.Minute)

	d, err := limiter.Allow(ctx, "alice")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "alice")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = limiter.Allow(ctx, "bob")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestWindowRollover(t *testing.T) {
	ctx := context.Background()
	limiter, clock := newTestLimiter(2, time.Minute)

	for range 3 {
		_, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
	}
	d, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	clock.Advance(time.Minute)

	d, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed, "a fresh window starts once the old one elapses")
	require.Equal(t, 1, d.Remaining)
}

func TestRemaining(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(5, time.Minute)

	t.Run("full limit with no active window", func(t *testing.T) {
		n, err := limiter.Remaining(ctx, "fresh")
		require.NoError(t, err)
		require.Equal(t, 5, n)
	})

	t.Run("decrements with use and floors at zero", func(t *testing.T) {
		for range 7 {
			_, err := limiter.Allow(ctx, "busy")
			require.NoError(t, err)
		}
		n, err := limiter.Remaining(ctx, "busy")
		require.NoError(t, err)
		require.Equal(t, 0, n)
	})

	t.Run("peek does not consume", func(t *testing.T) {
		_, err := limiter.Allow(ctx, "peeked")
		require.NoError(t, err)

		for range 3 {
			n, err := limiter.Remaining(ctx, "peeked")
			require.NoError(t, err)
			require.Equal(t, 4, n)
		}
	})
}

func TestResetAt(t *testing.T) {
	ctx := context.Background()
	limiter, clock := newTestLimiter(5, time.Minute)

	t.Run("inactive key has no reset time", func(t *testing.T) {
		_, ok, err := limiter.ResetAt(ctx, "nobody")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("active window resets at start plus window", func(t *testing.T) {
		start := clock.Now()
		_, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)

		at, ok, err := limiter.ResetAt(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, start.Add(time.Minute), at)
	})
}

func TestConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(50, time.Minute)

	// 100 concurrent requests against one key: exactly 50 may pass. The
	// increment-and-compare must be atomic per key or this under-counts.
	var wg sync.WaitGroup
	allowed := make([]bool, 100)
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := limiter.Allow(ctx, "contended")
			require.NoError(t, err)
			allowed[i] = d.Allowed
		}(i)
	}
	wg.Wait()

	passes := 0
	for _, ok := range allowed {
		if ok {
			passes++
		}
	}
	require.Equal(t, 50, passes)
}

func TestMemorySweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := ratelimit.NewMemoryStore().WithClock(clock.Now)
	limiter := ratelimit.New(ratelimit.Config{Limit: 5, Window: time.Minute}, store)

	for _, key := range []string{"a", "b", "c"} {
		_, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
	}

	require.Equal(t, 0, store.Sweep(), "active windows are kept")

	clock.Advance(2 * time.Minute)
	require.Equal(t, 3, store.Sweep(), "elapsed windows are dropped")
}
