package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}

func serve(t *testing.T, engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestRouter_MountsUnderVersionPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	credit := NewDomainGroup("credit", "/credit").
		GET("", okHandler).
		POST("/payment", okHandler)

	NewRouter(engine).Register(credit).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v1/credit").Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodPost, "/api/v1/credit/payment").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, engine, http.MethodGet, "/credit").Code)
}

func TestRouter_CustomAPIVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	system := NewDomainGroup("system", "/system").GET("/ping", okHandler)
	NewRouter(engine, WithAPIVersion("v2")).Register(system).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v2/system/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, engine, http.MethodGet, "/api/v1/system/ping").Code)
}

func TestRouter_RegistersMultipleDomains(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	credit := NewDomainGroup("credit", "/credit").
		GET("/:id", okHandler).
		PUT("/:id", okHandler).
		DELETE("/:id", okHandler)
	users := NewDomainGroup("users", "/users").POST("", okHandler)

	NewRouter(engine).Register(credit).Register(users).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v1/credit/42").Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodPut, "/api/v1/credit/42").Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodDelete, "/api/v1/credit/42").Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodPost, "/api/v1/users").Code)
}

func TestDomainGroup_MiddlewareRunsBeforeRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var order []string
	mw := func(c *gin.Context) {
		order = append(order, "middleware")
		c.Next()
	}
	handler := func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	}

	credit := NewDomainGroup("credit", "/credit").Use(mw).GET("/summary", handler)
	NewRouter(engine).Register(credit).Setup()

	resp := serve(t, engine, http.MethodGet, "/api/v1/credit/summary")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"middleware", "handler"}, order)
}

func TestDomainGroup_AbortingMiddlewareBlocksHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	reject := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}
	handlerRan := false

	credit := NewDomainGroup("credit", "/credit").
		Use(reject).
		POST("/payment", func(c *gin.Context) {
			handlerRan = true
			c.Status(http.StatusOK)
		})
	NewRouter(engine).Register(credit).Setup()

	resp := serve(t, engine, http.MethodPost, "/api/v1/credit/payment")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.False(t, handlerRan)
}

func TestDomainGroup_Name(t *testing.T) {
	assert.Equal(t, "credit", NewDomainGroup("credit", "/credit").Name())
}
