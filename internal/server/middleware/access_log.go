package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/looplj/adminhub/internal/contexts"
	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/tracing"
)

// AccessLog logs failed requests after the handler chain finishes. Requests
// that end below status 400 with no recorded errors stay quiet.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		errMsgs := requestErrors(c)

		status := c.Writer.Status()
		if status < http.StatusBadRequest && len(errMsgs) == 0 {
			return
		}

		fields := []log.Field{
			log.Int("status", status),
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.Duration("latency", time.Since(start)),
			log.String("client_ip", c.ClientIP()),
		}

		if name, ok := tracing.GetOperationName(ctx); ok {
			fields = append(fields, log.String("operation", name))
		}

		if len(errMsgs) > 0 {
			fields = append(fields, log.Strings("errors", errMsgs))
		}

		log.Error(ctx, "[ACCESS]", fields...)
	}
}

// requestErrors merges the errors gin collected with the ones recorded on the
// request context.
func requestErrors(c *gin.Context) []string {
	var msgs []string
	for _, e := range c.Errors {
		msgs = append(msgs, e.Error())
	}

	for _, e := range contexts.GetErrors(c.Request.Context()) {
		msgs = append(msgs, e.Error())
	}

	return msgs
}
