package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitedEngine(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(BodyLimit(maxBytes))
	engine.POST("/credit", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	return engine
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	engine := bodyLimitedEngine(64)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/credit", strings.NewReader(`{"amount":100}`))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodyLimit_RejectsDeclaredOversize(t *testing.T) {
	engine := bodyLimitedEngine(16)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/credit", strings.NewReader(strings.Repeat("x", 64)))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

func TestBodyLimit_CapsChunkedBody(t *testing.T) {
	engine := bodyLimitedEngine(16)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/credit", strings.NewReader(strings.Repeat("x", 64)))
	// No declared length forces the MaxBytesReader path
	req.ContentLength = -1
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
