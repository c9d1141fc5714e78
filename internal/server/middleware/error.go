package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/adminhub/internal/objects"
)

// AbortWithError stops the chain with a JSON error body. The error is also
// recorded on the gin context, so the access log picks it up.
func AbortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, objects.NewErrorResponse(http.StatusText(status), err.Error()))
}
