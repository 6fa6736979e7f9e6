// Package handler implements the HTTP surface's request handlers:
// binding, edge validation, translating to/from the orchestrator and
// store layers, and writing the uniform response envelope.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/basegraph/salesassist/common/id"
	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/http/dto"
	"github.com/basegraph/salesassist/internal/http/respond"
	"github.com/basegraph/salesassist/internal/orchestrator"
	"github.com/basegraph/salesassist/internal/sessionmgr"
	"github.com/basegraph/salesassist/internal/store"
)

// fullHistoryLimit mirrors the orchestrator's own untruncated-fetch
// limit: smartTruncate only collapses history once the turn count
// exceeds it, so a limit this large means "return everything."
const fullHistoryLimit = 1 << 30

// SessionHandler implements every `/api/v1/sessions/...` route.
type SessionHandler struct {
	orch     *orchestrator.Orchestrator
	sessions sessionmgr.Manager
	analyses store.AnalysisStore
	feedback store.FeedbackStore
}

func NewSessionHandler(orch *orchestrator.Orchestrator, sessions sessionmgr.Manager, analyses store.AnalysisStore, feedback store.FeedbackStore) *SessionHandler {
	return &SessionHandler{orch: orch, sessions: sessions, analyses: analyses, feedback: feedback}
}

// New mints a fresh committed session.
func (h *SessionHandler) New(c *gin.Context) {
	var req dto.NewSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	lang := domain.Language(req.Language)
	if lang == "" {
		lang = domain.LanguageEN
	}

	sess, err := h.sessions.Create(c.Request.Context(), lang)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.Created(c, dto.ToNewSessionResponse(sess))
}

// Get fetches a session's full log and latest analysis.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionmgr.IsProvisional(sessionID) {
		respond.FromError(c, apperr.New(apperr.KindInvalidSessionID, "provisional session ids are never persisted"))
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	history, err := h.sessions.History(c.Request.Context(), sessionID, fullHistoryLimit)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	latest, err := h.analyses.GetLatest(c.Request.Context(), sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(c.Request.Context(), "failed to fetch latest analysis, returning log without it", "error", err)
		latest = nil
	}

	respond.OK(c, dto.ToSessionDetailResponse(sess, history.Entries, latest))
}

// Send runs the Fast Path for one seller turn.
func (h *SessionHandler) Send(c *gin.Context) {
	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	stage, ok := domain.StageFromAlias(req.JourneyStage)
	if !ok {
		respond.Fail(c, http.StatusBadRequest, "unrecognized journey_stage")
		return
	}

	resp, err := h.orch.Send(c.Request.Context(), orchestrator.SendRequest{
		SessionID:    req.SessionID,
		UserInput:    req.UserInput,
		JourneyStage: stage,
		Language:     domain.Language(req.Language),
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, dto.ToSendResponse(resp))
}

// Refine runs a corrective turn against a prior Fast Path suggestion.
func (h *SessionHandler) Refine(c *gin.Context) {
	var req dto.RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.orch.Refine(c.Request.Context(), orchestrator.RefineRequest{
		SessionID:        req.SessionID,
		CritiquedEntryID: req.CritiquedEntryID,
		OriginalNote:     req.OriginalNote,
		BadSuggestion:    req.BadSuggestion,
		Criticism:        req.Criticism,
		Language:         domain.Language(req.Language),
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, dto.ToRefineResponse(resp))
}

// RetrySlowPath re-admits a committed session into the Slow Path.
func (h *SessionHandler) RetrySlowPath(c *gin.Context) {
	var req dto.RetrySlowPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orch.RetrySlowPath(c.Request.Context(), req.SessionID); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"retried": true})
}

// End terminates a session with a final outcome. Idempotent:
// ending an already-ended session a second time is still a success.
func (h *SessionHandler) End(c *gin.Context) {
	var req dto.EndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	outcome := domain.TerminalOutcome(req.Outcome)
	if err := h.sessions.End(c.Request.Context(), req.SessionID, outcome); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"ended": true})
}

// Feedback records a standalone up/down reaction to a prior suggestion.
func (h *SessionHandler) Feedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	entry := domain.FeedbackEntry{
		ID:               id.New(),
		SessionID:        req.SessionID,
		CritiquedEntryID: req.CritiquedEntryID,
		Polarity:         domain.FeedbackPolarity(req.Polarity),
		SellerComment:    req.Comment,
		Language:         domain.Language(req.Language),
		Timestamp:        time.Now(),
	}
	created, err := h.feedback.Create(c.Request.Context(), entry)
	if err != nil {
		respond.FromError(c, apperr.Wrap(apperr.KindDependencyUnavailable, "persisting feedback", err))
		return
	}
	respond.Created(c, dto.ToFeedbackResponse(created))
}
