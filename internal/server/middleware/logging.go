package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/looplj/adminhub/internal/tracing"
)

// WithLoggingTracing attaches the trace id, request id and operation name to
// the request context, so every log line written below the middleware carries
// them.
func WithLoggingTracing(config tracing.Config) gin.HandlerFunc {
	traceHeader := config.TraceHeaderName()
	requestHeader := config.RequestHeaderName()

	return func(c *gin.Context) {
		// An upstream proxy may already have assigned a trace id.
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = tracing.GenerateTraceID()
		}

		// Request ids are never taken from the caller, every request gets
		// its own and the response echoes it back.
		requestID := tracing.GenerateRequestID()
		c.Header(requestHeader, requestID)

		ctx := tracing.WithTraceID(c.Request.Context(), traceID)
		ctx = tracing.WithRequestID(ctx, requestID)
		ctx = tracing.WithOperationName(ctx, c.Request.Method+" "+c.FullPath())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
