package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/common"
	"github.com/basegraph/salesassist/common/id"
	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/embed"
	"github.com/basegraph/salesassist/internal/http/dto"
	"github.com/basegraph/salesassist/internal/http/respond"
	"github.com/basegraph/salesassist/internal/store"
	"github.com/basegraph/salesassist/internal/vectorstore"
)

// AdminHandler implements the `/api/v1/admin/...` surface: knowledge
// nugget CRUD, feedback grouping and basic per-session analytics. It
// deliberately exposes no hard delete for nuggets — the store layer has
// no delete (only the vector index does), and indexing a
// vector-only delete without a matching store delete would desync the
// two, which is worse than not offering delete at all.
type AdminHandler struct {
	nuggets  store.NuggetStore
	embedder embed.Embedder
	vectors  vectorstore.VectorStore
	feedback store.FeedbackStore
	analyses store.AnalysisStore
}

func NewAdminHandler(nuggets store.NuggetStore, embedder embed.Embedder, vectors vectorstore.VectorStore, feedback store.FeedbackStore, analyses store.AnalysisStore) *AdminHandler {
	return &AdminHandler{nuggets: nuggets, embedder: embedder, vectors: vectors, feedback: feedback, analyses: analyses}
}

// ListNuggets returns every knowledge nugget, or only those matching a
// language filter when `?language=` is given.
func (h *AdminHandler) ListNuggets(c *gin.Context) {
	lang := c.Query("language")

	var (
		nuggets []domain.KnowledgeNugget
		err     error
	)
	if lang != "" {
		nuggets, err = h.nuggets.ListByLanguage(c.Request.Context(), domain.Language(lang))
	} else {
		nuggets, err = h.nuggets.ListAll(c.Request.Context())
	}
	if err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "listing knowledge nuggets", err))
		return
	}
	respond.OK(c, dto.ToNuggetListResponse(nuggets))
}

// UpsertNugget creates a nugget (empty id) or replaces an existing one's
// canonical text, re-embedding and re-indexing it either way.
func (h *AdminHandler) UpsertNugget(c *gin.Context) {
	var req dto.UpsertNuggetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	nuggetID := req.ID
	if nuggetID == "" {
		slug, err := common.Slugify(req.Title, "nugget")
		if err != nil {
			slug = "nugget"
		}
		nuggetID = fmt.Sprintf("%s-%d", slug, id.New())
	}

	ctx := c.Request.Context()
	vec, err := h.embedder.Embed(ctx, req.Title+"\n\n"+req.Body)
	if err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "embedding knowledge nugget", err))
		return
	}

	nugget := domain.KnowledgeNugget{
		ID:        nuggetID,
		Title:     req.Title,
		Body:      req.Body,
		Keywords:  req.Keywords,
		Language:  domain.Language(req.Language),
		Type:      req.Type,
		Tags:      req.Tags,
		Embedding: vec,
	}

	saved, err := h.nuggets.Upsert(ctx, nugget)
	if err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "persisting knowledge nugget", err))
		return
	}

	if err := h.vectors.Upsert(ctx, *saved); err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "indexing knowledge nugget", err))
		return
	}

	respond.OK(c, dto.ToNuggetResponse(*saved))
}

// FeedbackForSession groups every feedback entry critiquing suggestions
// in one session, for admin review.
func (h *AdminHandler) FeedbackForSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	entries, err := h.feedback.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "listing feedback", err))
		return
	}
	respond.OK(c, dto.ToFeedbackGroupResponse(sessionID, entries))
}

// AnalyticsForSession rolls up a session's feedback polarity counts and
// Slow Path attempt history into one summary.
func (h *AdminHandler) AnalyticsForSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	ctx := c.Request.Context()

	entries, err := h.feedback.ListBySession(ctx, sessionID)
	if err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "listing feedback", err))
		return
	}

	runs, err := h.analyses.ListBySession(ctx, sessionID)
	if err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "listing analyses", err))
		return
	}

	summary := dto.AnalyticsResponse{SessionID: sessionID, AnalysisRuns: len(runs)}
	for _, e := range entries {
		if e.Polarity == domain.FeedbackUp {
			summary.ThumbsUp++
		} else {
			summary.ThumbsDown++
		}
	}
	if len(runs) > 0 {
		summary.LatestStatus = string(runs[len(runs)-1].Status)
	}

	respond.OK(c, summary)
}
