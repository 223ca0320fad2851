package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/tradelane/tradegate/pkg/slogx"
	"golang.org/x/time/rate"
)

// ThrottleConfig defines the coarse per-IP token-bucket throttle applied in
// front of the whole mux. This is overload protection, not credential-abuse
// defense: the fixed-window limiter owns the auth endpoints.
type ThrottleConfig struct {
	// RequestsPerSecond is the sustained per-client rate.
	RequestsPerSecond float64
	// Burst allows for temporary bursts above the sustained rate.
	Burst int
}

// DefaultThrottle is generous enough that browsers never notice it.
var DefaultThrottle = ThrottleConfig{
	RequestsPerSecond: 50,
	Burst:             100,
}

// throttler manages token-bucket limiters for different client IPs.
type throttler struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

// getLimiter retrieves or creates a limiter for the given key.
func (t *throttler) getLimiter(key string) *rate.Limiter {
	// Fast path: limiter already exists
	if limiter, ok := t.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	// Slow path: create new limiter
	limiter := rate.NewLimiter(t.rate, t.burst)
	actual, _ := t.limiters.LoadOrStore(key, limiter)

	t.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup removes limiters that have not been used recently so
// ephemeral client IPs do not accumulate forever.
func (t *throttler) maybeCleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Only cleanup once every 5 minutes
	if time.Since(t.lastCleanup) < 5*time.Minute {
		return
	}

	t.lastCleanup = time.Now()

	// A limiter with a full bucket has been idle for at least a burst
	// worth of time.
	t.limiters.Range(func(key, value any) bool {
		limiter := value.(*rate.Limiter)
		if limiter.Tokens() >= float64(t.burst) {
			t.limiters.Delete(key)
		}
		return true
	})
}

// ThrottleMiddleware applies the token-bucket throttle keyed by client IP.
func ThrottleMiddleware(config ThrottleConfig) Middleware {
	t := &throttler{
		rate:        rate.Limit(config.RequestsPerSecond),
		burst:       config.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := IPKeyExtractor(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !t.getLimiter(key).Allow() {
				slogx.FromContext(r.Context()).Warn("throttle tripped", "endpoint", r.URL.Path)
				WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
