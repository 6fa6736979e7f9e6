package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/http/respond"
)

const adminSecretHeader = "X-Admin-Secret"

// RequireAdminSecret gates a route group behind a shared-secret header,
// the admin surface's only auth mechanism. A misconfigured (empty)
// secret rejects every request rather than silently accepting any.
func RequireAdminSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(adminSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.Abort()
			respond.FromError(c, apperr.New(apperr.KindUnauthorized, "missing or invalid admin secret"))
			return
		}
		c.Next()
	}
}
