package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/basegraph/salesassist/common/id"
	"github.com/basegraph/salesassist/common/logger"
	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/channel"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/enrich"
	"github.com/basegraph/salesassist/internal/llmgw"
)

// untruncatedHistoryLimit is passed to sessionmgr.Manager.History to get
// the Slow Path's required full transcript: smartTruncate only collapses
// history once the full-turn count exceeds the given limit, so a limit
// this large is, in practice, "don't truncate."
const untruncatedHistoryLimit = 1 << 30

const (
	slowPathMaxTokens      = 4096
	channelProbeInterval   = 200 * time.Millisecond
)

// RunSlowPath produces and delivers one deep analysis for sessionID. It
// satisfies worker.SlowPathProcessor and never returns a non-nil error:
// every failure mode named in spec is absorbed into a persisted Error
// analysis entry and/or a pushed slow_path_error message, so a single
// task's failure never propagates to the consumer loop.
func (o *Orchestrator) RunSlowPath(ctx context.Context, sessionID string) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID, Component: "salesassist.orchestrator.slowpath"})
	ctx, cancel := context.WithTimeout(ctx, o.cfg.SlowPathDeadline)
	defer cancel()

	select {
	case <-time.After(o.cfg.SlowPathStartupDelay):
	case <-ctx.Done():
	}

	o.awaitChannel(ctx, sessionID)

	sess, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		slog.WarnContext(ctx, "slow path proceeding without a session row", "error", err)
		sess = &domain.Session{ID: sessionID, JourneyStage: domain.StageDiscovery, PreferredLanguage: domain.LanguageEN}
	}

	history, err := o.sessions.History(ctx, sessionID, untruncatedHistoryLimit)
	if err != nil {
		o.recordFailure(ctx, sessionID, apperr.KindDependencyUnavailable, "fetching conversation history: "+err.Error(), "", "", false)
		return nil
	}

	latestNote := latestSellerNote(history)
	groundedContext := o.retrieve.Retrieve(ctx, latestNote, sess.PreferredLanguage)

	strategicContext := o.enricher.Compose(enrich.Input{
		Session:        *sess,
		LatestNote:     latestNote,
		History:        history,
		Now:            time.Now(),
		RegionalPrices: o.cfg.RegionalPrices,
		Subsidies:      o.cfg.Subsidies,
	})

	prompt := buildSlowPathPrompt(history, sess.JourneyStage, sess.PreferredLanguage, groundedContext, strategicContext)
	result, analyzeErr := o.gateway.Analyze(ctx, llmgw.CompletionRequest{
		System:    slowPathSystemPrompt,
		Prompt:    prompt,
		MaxTokens: slowPathMaxTokens,
	})
	if analyzeErr != nil {
		kind, ok := apperr.KindOf(analyzeErr)
		if !ok {
			kind = apperr.KindInternal
		}
		o.recordFailure(ctx, sessionID, kind, "calling the analyze surface: "+analyzeErr.Error(), o.gateway.DeepModel(), o.gateway.FastModel(), false)
		return nil
	}

	doc, parseErr := parseOpusMagnum(result.Document)
	if parseErr == nil {
		parseErr = validateDocument(o.schema, result.Document)
	}
	if parseErr != nil {
		o.recordFailure(ctx, sessionID, apperr.KindParseFailed, "parsing the opus magnum document: "+parseErr.Error(), result.ModelUsed, "", result.FallbackUsed)
		return nil
	}

	entry := domain.DeepAnalysisEntry{
		ID:        id.New(),
		SessionID: sessionID,
		Timestamp: time.Now(),
		Status:    domain.AnalysisSuccess,
		Document:  doc,
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{AnalysisID: logger.Ptr(entry.ID)})
	if _, err := o.analyses.Create(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to persist successful analysis, still attempting push", "error", err)
	}

	if domain.IsValidStage(doc.RecommendedStage) && doc.RecommendedStage != sess.JourneyStage {
		if err := o.sessions.UpdateStage(ctx, sessionID, doc.RecommendedStage); err != nil {
			slog.WarnContext(ctx, "failed to update journey stage from recommendation", "error", err)
		}
	}

	fallbackModel := ""
	if result.FallbackUsed {
		fallbackModel = o.gateway.FastModel()
	}
	payload := buildCompletePayload(doc, result.ModelUsed, o.gateway.DeepModel(), result.FallbackUsed, fallbackModel, result.FallbackReason)
	if res := o.channels.Send(ctx, sessionID, pushMessage{Type: pushTypeSlowPathComplete, Data: payload}); res == channel.SendFailed {
		slog.WarnContext(ctx, "push of slow path completion failed")
	}

	return nil
}

// recordFailure persists an Error analysis entry and attempts to push a
// slow_path_error notification. Neither failing is fatal to the task.
func (o *Orchestrator) recordFailure(ctx context.Context, sessionID string, kind apperr.Kind, message, primaryModel, fallbackModel string, fallbackUsed bool) {
	slog.ErrorContext(ctx, "slow path failed", "kind", kind, "error", logger.Truncate(message, 500))

	entry := domain.DeepAnalysisEntry{
		ID:        id.New(),
		SessionID: sessionID,
		Timestamp: time.Now(),
		Status:    domain.AnalysisFailed,
		ErrorInfo: &domain.AnalysisError{
			Kind:          string(kind),
			Message:       message,
			FallbackUsed:  fallbackUsed,
			PrimaryModel:  primaryModel,
			FallbackModel: fallbackModel,
		},
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{AnalysisID: logger.Ptr(entry.ID)})
	if _, err := o.analyses.Create(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to persist slow path error entry", "error", err)
	}

	if res := o.channels.Send(ctx, sessionID, pushMessage{Type: pushTypeSlowPathError, Message: message}); res == channel.SendFailed {
		slog.WarnContext(ctx, "push of slow path error failed")
	}
}

// awaitChannel probes the Channel Registry for up to cfg.SlowPathChannelWait
// for a live channel to appear, returning as soon as one does. If none
// appears the task still proceeds; only push delivery will be skipped.
func (o *Orchestrator) awaitChannel(ctx context.Context, sessionID string) {
	if o.channels.Has(sessionID) {
		return
	}

	deadline := time.NewTimer(o.cfg.SlowPathChannelWait)
	defer deadline.Stop()
	ticker := time.NewTicker(channelProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			slog.InfoContext(ctx, "no push channel appeared before the wait window elapsed, proceeding without one")
			return
		case <-ticker.C:
			if o.channels.Has(sessionID) {
				return
			}
		}
	}
}

func latestSellerNote(history domain.History) string {
	for i := len(history.Entries) - 1; i >= 0; i-- {
		if history.Entries[i].Role == domain.RoleSeller {
			return history.Entries[i].Content
		}
	}
	return ""
}
