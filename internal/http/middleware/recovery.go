package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/internal/http/respond"
)

// Recovery catches a panic anywhere downstream and turns it into a 500
// error envelope instead of crashing the server.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				slog.ErrorContext(ctx, "panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.Abort()
				respond.Error(c, http.StatusInternalServerError, "internal server error")
			}
		}()
		c.Next()
	}
}
