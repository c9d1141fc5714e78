package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/looplj/adminhub/internal/log"
)

// WithMetrics records a request counter and a latency histogram on the
// global meter provider. Instrument creation failure disables recording,
// never the request.
func WithMetrics() gin.HandlerFunc {
	meter := otel.Meter("github.com/looplj/adminhub/internal/server")

	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of handled HTTP requests."),
	)
	if err != nil {
		log.Error(context.Background(), "failed to create request counter", log.Cause(err))
		return func(c *gin.Context) { c.Next() }
	}

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request latency."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		log.Error(context.Background(), "failed to create duration histogram", log.Cause(err))
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
		)

		ctx := c.Request.Context()
		requests.Add(ctx, 1, attrs)
		duration.Record(ctx, float64(time.Since(start))/float64(time.Millisecond), attrs)
	}
}
