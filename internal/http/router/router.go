// Package router wires the gin route tree: the health check, the
// session surface, the admin surface (gated behind a shared secret)
// and the push-channel websocket endpoint.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/internal/http/handler"
	"github.com/basegraph/salesassist/internal/http/middleware"
	"github.com/basegraph/salesassist/internal/http/wsedge"
)

// Config carries everything route registration needs beyond the
// handlers themselves.
type Config struct {
	AdminSecret string
}

// SetupRoutes registers every route on router. sessions and admin are
// expected fully constructed; ws may be nil only in tests that don't
// exercise the push channel.
func SetupRoutes(router *gin.Engine, sessions *handler.SessionHandler, admin *handler.AdminHandler, ws *wsedge.Handler, cfg Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		SessionRouter(v1.Group("/sessions"), sessions)

		admGroup := v1.Group("/admin")
		admGroup.Use(middleware.RequireAdminSecret(cfg.AdminSecret))
		AdminRouter(admGroup, admin)

		if ws != nil {
			v1.GET("/ws/sessions/:session_id", ws.ServeWS)
		}
	}
}
