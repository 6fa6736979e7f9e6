package router

import (
	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/internal/http/handler"
)

// AdminRouter registers every `/admin/...` route. The caller is
// responsible for attaching the shared-secret middleware to rg before
// calling this.
func AdminRouter(rg *gin.RouterGroup, h *handler.AdminHandler) {
	rg.GET("/nuggets", h.ListNuggets)
	rg.POST("/nuggets", h.UpsertNugget)
	rg.GET("/sessions/:session_id/feedback", h.FeedbackForSession)
	rg.GET("/sessions/:session_id/analytics", h.AnalyticsForSession)
}
