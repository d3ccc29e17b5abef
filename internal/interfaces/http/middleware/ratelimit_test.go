package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_Remaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, rl.Remaining("10.0.0.1"))
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	assert.Equal(t, 3, rl.Remaining("10.0.0.1"))
}

func rateLimitedEngine(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RateLimit(limiter))
	engine.POST("/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestRateLimit_RejectsWith429(t *testing.T) {
	engine := rateLimitedEngine(NewRateLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_SetsRemainingHeaders(t *testing.T) {
	engine := rateLimitedEngine(NewRateLimiter(5, time.Minute))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_BusinessHeaderScopesBucket(t *testing.T) {
	engine := rateLimitedEngine(NewRateLimiter(1, time.Minute))

	first := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	first.Header.Set("X-Business-ID", "pharmacy-a")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, first)
	require.Equal(t, http.StatusOK, w.Code)

	// Same IP under a different tenant gets its own bucket
	second := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	second.Header.Set("X-Business-ID", "pharmacy-b")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, second)
	assert.Equal(t, http.StatusOK, w.Code)
}
