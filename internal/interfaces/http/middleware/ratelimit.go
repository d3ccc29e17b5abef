package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/posledger/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window request counter keyed by caller.
// State is in-memory; a multi-instance deployment limits per instance.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	seen   map[string]*window
}

type window struct {
	used     int
	openedAt time.Time
}

// NewRateLimiter allows limit requests per key in each window. A
// background sweep drops keys idle for two windows.
func NewRateLimiter(limit int, win time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: win,
		seen:   make(map[string]*window),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-2 * rl.window)
		for key, w := range rl.seen {
			if w.openedAt.Before(cutoff) {
				delete(rl.seen, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes one request from key's window, reporting whether the
// request is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.seen[key]
	if w == nil || now.Sub(w.openedAt) >= rl.window {
		rl.seen[key] = &window{used: 1, openedAt: now}
		return true
	}
	if w.used < rl.limit {
		w.used++
		return true
	}
	return false
}

// Remaining reports how many requests key has left in its window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.seen[key]
	if w == nil || time.Since(w.openedAt) >= rl.window {
		return rl.limit
	}
	return rl.limit - w.used
}

// RateLimit rejects callers over their limit with 429. The key is the
// client IP, prefixed by X-Business-ID when present so tenants do not
// share a bucket.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if businessID := c.GetHeader("X-Business-ID"); businessID != "" {
			key = businessID + ":" + key
		}

		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later."))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
