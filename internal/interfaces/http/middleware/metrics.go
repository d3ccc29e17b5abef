// Package middleware provides the HTTP middleware stack for the
// credit ledger API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/posledger/backend/internal/infrastructure/telemetry"
)

var bodySizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}

type httpInstruments struct {
	requests     *telemetry.Counter
	duration     *telemetry.Histogram
	requestSize  *telemetry.Histogram
	responseSize *telemetry.Histogram
	inFlight     metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	requests, err := telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	requestSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size distribution in bytes",
		Unit:        "By",
		Boundaries:  bodySizeBuckets,
	})
	if err != nil {
		return nil, err
	}
	responseSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  bodySizeBuckets,
	})
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{
		requests:     requests,
		duration:     duration,
		requestSize:  requestSize,
		responseSize: responseSize,
		inFlight:     inFlight,
	}, nil
}

// HTTPMetricsWithMeter records per-request metrics against meter. The
// request counter is labeled with method, matched route, status and
// tenant; latency and size histograms carry only method and route to
// keep cardinality down. Disabled or broken instrument setup degrades
// to a pass-through.
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	ins, err := newHTTPInstruments(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		requestSize := c.Request.ContentLength

		ins.inFlight.Add(ctx, 1)
		c.Next()
		ins.inFlight.Add(ctx, -1)

		// Matched pattern, not the raw path, so /credit/:id stays one series
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}

		base := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}

		countAttrs := append(base, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))
		if businessID := GetJWTBusinessID(c); businessID != "" {
			countAttrs = append(countAttrs, telemetry.AttrBusinessID.String(businessID))
		}
		ins.requests.Inc(ctx, countAttrs...)

		ins.duration.RecordDuration(ctx, time.Since(start), base...)
		if requestSize > 0 {
			ins.requestSize.Record(ctx, float64(requestSize), base...)
		}
		if size := c.Writer.Size(); size > 0 {
			ins.responseSize.Record(ctx, float64(size), base...)
		}
	}
}
