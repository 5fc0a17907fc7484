// middleware/ratelimit.go
package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// Token bucket rate limiter implementation
type TokenBucket struct {
	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func NewTokenBucket(maxTokens, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: now,
	}
}

func (tb *TokenBucket) allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefillTime = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter keeps one bucket per client key. maxRequests tokens refill
// evenly over window.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.Mutex

	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		buckets:     make(map[string]*TokenBucket),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()
	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.maxRequests) / rl.window.Seconds()
		bucket = NewTokenBucket(float64(rl.maxRequests), refillRate, now)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()
	return bucket.allow(now)
}

// Cleanup drops buckets idle for longer than idle and returns how many.
func (rl *RateLimiter) Cleanup(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		if now.Sub(bucket.lastRefillTime) > idle {
			delete(rl.buckets, key)
			removed++
		}
		bucket.mu.Unlock()
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func StartCleanup(ctx context.Context, interval time.Duration, limiters ...*RateLimiter) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, rl := range limiters {
					if n := rl.Cleanup(3 * interval); n > 0 {
						log.WithField("removed", n).Debug("rate limiter buckets cleaned up")
					}
				}
			}
		}
	}()
}

// RateLimit rejects clients, keyed by IP, that exhaust their bucket.
// Health checks and websocket streams are never limited.
func RateLimit(rl *RateLimiter, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/health" || strings.HasPrefix(path, "/ws/") {
			return c.Next()
		}
		if !rl.Allow(c.IP()) {
			log.WithFields(log.Fields{"ip": c.IP(), "path": path}).Debug("rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   message,
			})
		}
		return c.Next()
	}
}
