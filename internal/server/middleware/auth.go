package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/adminhub/internal/contexts"
	"github.com/looplj/adminhub/internal/server/biz"
	"github.com/looplj/adminhub/internal/session"
)

// WithSessionAuth resolves the acting session from the Authorization header.
// A request without the header runs as the anonymous session, the access
// rules downstream decide what anonymous may do. A present but invalid token
// aborts with 401.
func WithSessionAuth(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			ctx := contexts.WithSession(c.Request.Context(), session.Anonymous())
			c.Request = c.Request.WithContext(ctx)
			c.Next()

			return
		}

		token, err := ExtractBearerToken(header)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		sess, err := auth.AuthenticateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, biz.ErrInvalidJWT) {
				AbortWithError(c, http.StatusUnauthorized, errors.New("Invalid token"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("Failed to validate token"))
			}

			return
		}

		ctx := contexts.WithSession(c.Request.Context(), sess)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAdmin guards operator surfaces. It must run after WithSessionAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := contexts.SessionOrAnonymous(c.Request.Context())

		if sess.IsAnonymous() {
			AbortWithError(c, http.StatusUnauthorized, errors.New("Authentication required"))
			return
		}

		if !sess.Admin() {
			AbortWithError(c, http.StatusForbidden, errors.New("Admin access required"))
			return
		}

		c.Next()
	}
}

// WithSource marks every request of a group with its origin.
func WithSource(source contexts.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := contexts.WithSource(c.Request.Context(), source)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
