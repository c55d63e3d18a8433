package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/forgo/handy/api/internal/model"
)

// RateLimiter is a per-caller token bucket. Tokens refill continuously
// at rate/window, up to rate+burst, so a quiet caller can absorb a
// spike without a hard window boundary.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int
	window   time.Duration
	capacity float64
	cleanup  time.Duration
	stopChan chan struct{}
}

type bucket struct {
	tokens  float64
	updated time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Requests per window (default 100)
	Window  time.Duration // Refill window (default 1 minute)
	Burst   int           // Extra headroom above Rate (default 20)
	Cleanup time.Duration // Idle bucket eviction interval (default 5 minutes)
}

// NewRateLimiter creates a rate limiter and starts its eviction loop
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate == 0 {
		cfg.Rate = 100
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		capacity: float64(cfg.Rate + cfg.Burst),
		cleanup:  cfg.Cleanup,
		stopChan: make(chan struct{}),
	}

	go rl.evictLoop()

	return rl
}

// Stop stops the eviction goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-2 * rl.window)
	for key, b := range rl.buckets {
		if b.updated.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// refillRate returns tokens gained per second
func (rl *RateLimiter) refillRate() float64 {
	return float64(rl.rate) / rl.window.Seconds()
}

// Allow spends one token for key if available. It reports whether the
// request may proceed, how many whole tokens remain, and when a denied
// caller should retry.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, resetTime time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity, updated: now}
		rl.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.updated).Seconds() * rl.refillRate()
		if b.tokens > rl.capacity {
			b.tokens = rl.capacity
		}
		b.updated = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), now.Add(rl.window)
	}

	// Time until one whole token accrues
	wait := time.Duration((1 - b.tokens) / rl.refillRate() * float64(time.Second))
	return false, 0, now.Add(wait)
}

// RateLimit enforces the limiter per authenticated user, falling back
// to the peer address for anonymous traffic
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetUserID(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			allowed, remaining, resetTime := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(resetTime).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
