package middleware

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"jpegscaler/internal/requestip"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate each client is refilled at.
	RequestsPerMinute int
	// Burst is the bucket capacity; 0 means RequestsPerMinute.
	Burst           int
	CleanupInterval time.Duration
	// IdleTimeout drops buckets that have not been used for this long.
	IdleTimeout time.Duration
	// TrustedProxyCIDRs lists proxy ranges whose forwarded headers identify the client.
	TrustedProxyCIDRs []netip.Prefix

	now func() time.Time
}

// RateLimiter is a per-client token bucket. Tokens refill continuously at
// RequestsPerMinute/60 per second up to Burst.
type RateLimiter struct {
	mu             sync.Mutex
	perMinute      float64
	perSecond      float64
	burst          float64
	limit          int
	idleTimeout    time.Duration
	trustedProxies []netip.Prefix
	now            func() time.Time
	clients        map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until one token is available; 0 when allowed.
	RetryAfter time.Duration
}

// NewRateLimiter creates a new rate limiter and starts its cleanup loop.
// Call Close to stop the loop.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.Burst <= 0 {
		config.Burst = config.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 10 * time.Minute
	}
	if config.now == nil {
		config.now = time.Now
	}

	rl := &RateLimiter{
		perMinute:      float64(config.RequestsPerMinute),
		perSecond:      float64(config.RequestsPerMinute) / 60,
		burst:          float64(config.Burst),
		limit:          config.RequestsPerMinute,
		idleTimeout:    config.IdleTimeout,
		trustedProxies: config.TrustedProxyCIDRs,
		now:            config.now,
		clients:        make(map[string]*bucket),
		stop:           make(chan struct{}),
	}

	go rl.cleanupLoop(config.CleanupInterval)

	return rl
}

// Close stops the background cleanup loop.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Middleware returns an HTTP middleware function
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := requestip.ClientIP(r, rl.trustedProxies)
			d := rl.Allow(clientIP)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				log.Printf("Rate limit exceeded for IP: %s on %s", clientIP, r.URL.Path)
				retry := int(math.Ceil(d.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(1, retry)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Allow takes one token from key's bucket if one is available.
func (rl *RateLimiter) Allow(key string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[key]
	if !ok {
		b = &bucket{tokens: rl.burst, lastSeen: now}
		rl.clients[key] = b
	}

	if elapsed := now.Sub(b.lastSeen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(rl.burst, b.tokens+elapsed*rl.perSecond)
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true, Remaining: int(b.tokens)}
	}

	var retry time.Duration
	if rl.perMinute > 0 {
		retry = time.Duration((1 - b.tokens) * 60 / rl.perMinute * float64(time.Second))
	} else {
		retry = time.Minute
	}
	return Decision{Remaining: 0, RetryAfter: retry}
}

// cleanupLoop periodically removes stale client buckets to prevent memory leaks
func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup removes client buckets that haven't been used recently
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.clients {
		if now.Sub(b.lastSeen) > rl.idleTimeout {
			delete(rl.clients, key)
		}
	}
}
