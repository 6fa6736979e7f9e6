package router

import (
	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/internal/http/handler"
)

// SessionRouter registers every `/sessions/...` route.
func SessionRouter(rg *gin.RouterGroup, h *handler.SessionHandler) {
	rg.POST("/new", h.New)
	rg.GET("/:id", h.Get)
	rg.POST("/send", h.Send)
	rg.POST("/refine", h.Refine)
	rg.POST("/retry_slowpath", h.RetrySlowPath)
	rg.POST("/end", h.End)
	rg.POST("/feedback", h.Feedback)
}
