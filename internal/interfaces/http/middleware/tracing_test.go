package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordingTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func tracedEngine(status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), Tracing(), SpanEnrichment())
	engine.GET("/api/v1/credit/:id", func(c *gin.Context) {
		c.Status(status)
	})
	return engine
}

func TestTracing_RecordsSpanWithRequestID(t *testing.T) {
	recorder := recordingTracer(t)
	engine := tracedEngine(http.StatusOK)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credit/42", nil)
	req.Header.Set("X-Request-ID", "req-trace-1")
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	id, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace-1", id.AsString())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestTracing_BusinessIDHeaderMustBeUUID(t *testing.T) {
	recorder := recordingTracer(t)
	engine := tracedEngine(http.StatusOK)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credit/42", nil)
	req.Header.Set("X-Business-ID", "not-a-uuid'; DROP TABLE spans")
	engine.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	_, ok := spanAttr(spans[0], "business_id")
	assert.False(t, ok)
}

func TestTracing_ValidBusinessIDHeaderRecorded(t *testing.T) {
	recorder := recordingTracer(t)
	engine := tracedEngine(http.StatusOK)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/credit/42", nil)
	req.Header.Set("X-Business-ID", "a6a7b8c9-0d1e-2f3a-4b5c-6d7e8f9a0b1c")
	engine.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	id, ok := spanAttr(spans[0], "business_id")
	require.True(t, ok)
	assert.Equal(t, "a6a7b8c9-0d1e-2f3a-4b5c-6d7e8f9a0b1c", id.AsString())
}

func TestSpanEnrichment_FlagsErrorResponses(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusNotFound, "Not Found"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusConflict, "Client Error"},
		{http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			recorder := recordingTracer(t)
			engine := tracedEngine(tt.status)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/credit/42", nil))
			require.Equal(t, tt.status, w.Code)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)
			assert.Equal(t, tt.message, spans[0].Status().Description)
		})
	}
}
