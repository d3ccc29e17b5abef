package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/posledger/backend/internal/infrastructure/telemetry"
)

// Header-sourced attributes are bounded and validated before they
// reach the trace backend.
const maxRequestIDAttrLen = 128

var businessIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Tracing opens a server span per request. Mount SpanEnrichment after
// it to attach correlation attributes and error status; enrichment
// cannot live here because otelgin ends the span before this
// middleware regains control.
func Tracing() gin.HandlerFunc {
	return otelgin.Middleware(telemetry.TracerName)
}

// SpanEnrichment runs inside the request span, after the handler, and
// records the request ID, tenant, authenticated user, and an error
// status for 4xx and 5xx responses. The JWT middleware may mount
// later in the chain; its claims are still visible here because
// enrichment happens on the way out.
func SpanEnrichment() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if id := traceRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if businessID := traceBusinessID(c); businessID != "" {
			span.SetAttributes(attribute.String("business_id", businessID))
		}
		if userID := GetJWTUserID(c); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}

		markErrorStatus(span, c.Writer.Status())
	}
}

func traceRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := c.GetHeader("X-Request-ID")
	if len(id) > maxRequestIDAttrLen {
		id = id[:maxRequestIDAttrLen]
	}
	return id
}

// traceBusinessID prefers the authenticated claim; the header is a
// fallback for unauthenticated paths and must look like a UUID.
func traceBusinessID(c *gin.Context) string {
	if id := GetJWTBusinessID(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Business-ID"); businessIDPattern.MatchString(id) {
		return id
	}
	return ""
}

func markErrorStatus(span trace.Span, status int) {
	if status < http.StatusBadRequest {
		return
	}

	message := "Client Error"
	switch {
	case status >= http.StatusInternalServerError:
		message = "Internal Server Error"
	case status == http.StatusUnauthorized:
		message = "Unauthorized"
	case status == http.StatusForbidden:
		message = "Forbidden"
	case status == http.StatusNotFound:
		message = "Not Found"
	}
	span.SetStatus(codes.Error, message)
	span.SetAttributes(attribute.Int("http.status_code", status))
}
