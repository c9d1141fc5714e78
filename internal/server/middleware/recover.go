package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/objects"
)

// Recovery turns handler panics into 500 responses with the JSON error
// envelope instead of a dropped connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered",
					log.Any("panic", r),
					log.String("method", c.Request.Method),
					log.String("path", c.Request.URL.Path),
					log.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					objects.NewErrorResponse(http.StatusText(http.StatusInternalServerError), "Internal server error"))
			}
		}()

		c.Next()
	}
}
