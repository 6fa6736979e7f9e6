package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/basegraph/salesassist/common/logger"
	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/llmgw"
	"github.com/basegraph/salesassist/internal/queue"
)

// SendRequest is one seller turn submitted to the Fast Path.
type SendRequest struct {
	SessionID    string
	UserInput    string
	JourneyStage domain.JourneyStage
	Language     domain.Language
}

// SendResponse is the Fast Path's reply. SoftFailure is set when the
// model call degraded into a canned message rather than a real reply;
// Reply is always populated either way.
type SendResponse struct {
	SessionID         string
	JourneyStage      domain.JourneyStage
	Reply             domain.FastReply
	SoftFailure       bool
	SoftFailureReason domain.SoftFailureReason
}

const fastPathMaxTokens = 1024

// Send runs the Fast Path to completion: commit the session, log the
// seller's note, assemble history, retrieve grounded context, call the
// Fast Model under a hard overall deadline, persist the reply and admit
// a Slow Path task. It never blocks on the Slow Path and never returns
// a dependency error to the caller — those degrade into a soft-failure
// SendResponse instead.
func (o *Orchestrator) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	if !domain.IsValidStage(req.JourneyStage) {
		return nil, apperr.New(apperr.KindValidationFailed, fmt.Sprintf("unrecognized journey stage %q", req.JourneyStage))
	}
	if !domain.IsValidLanguage(req.Language) {
		return nil, apperr.New(apperr.KindValidationFailed, fmt.Sprintf("unrecognized language %q", req.Language))
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.FastPathDeadline)
	defer cancel()

	now := time.Now()

	sess, err := o.sessions.EnsureCommitted(ctx, req.SessionID, now, req.Language)
	if err != nil {
		softReason, _ := classifySoftFailure(err)
		slog.WarnContext(ctx, "session commit failed, returning soft failure", "error", err, "reason", softReason)
		return &SendResponse{
			SessionID:         req.SessionID,
			JourneyStage:      req.JourneyStage,
			Reply:             softFailureReply(softReason, req.Language),
			SoftFailure:       true,
			SoftFailureReason: softReason,
		}, nil
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sess.ID, Component: "salesassist.orchestrator.fastpath"})

	o.sessions.Append(ctx, sess.ID, domain.RoleSeller, req.UserInput, req.Language)

	history, err := o.sessions.History(ctx, sess.ID, o.cfg.HistoryLimit)
	if err != nil {
		slog.WarnContext(ctx, "history fetch failed, falling back to the current note only", "error", err)
		history = domain.History{Entries: []domain.ConversationLogEntry{{
			SessionID: sess.ID,
			Timestamp: now,
			Role:      domain.RoleSeller,
			Content:   req.UserInput,
			Language:  req.Language,
		}}}
	}

	groundedContext := o.retrieve.Retrieve(ctx, req.UserInput, req.Language)

	prompt := buildFastPathPrompt(history, req.UserInput, req.JourneyStage, req.Language, groundedContext)
	raw, fastErr := o.gateway.Fast(ctx, llmgw.CompletionRequest{
		System:    fastPathSystemPrompt,
		Prompt:    prompt,
		MaxTokens: fastPathMaxTokens,
	})

	var reply domain.FastReply
	softFailure := false
	var softReason domain.SoftFailureReason
	spawnSlowPath := true

	switch {
	case fastErr != nil:
		softFailure = true
		softReason, spawnSlowPath = classifySoftFailure(fastErr)
		reply = softFailureReply(softReason, req.Language)
		slog.WarnContext(ctx, "fast model call failed, returning soft failure", "error", fastErr, "reason", softReason)
	default:
		parsed, parseErr := parseFastReply(raw)
		if parseErr != nil {
			softFailure = true
			softReason = domain.SoftFailureDeadline // parse failure is treated as a deadline miss
			reply = softFailureReply(softReason, req.Language)
			slog.WarnContext(ctx, "fast reply failed to parse, treating as deadline miss",
				"error", parseErr, "raw", logger.Truncate(string(raw), 500))
		} else {
			reply = parsed
		}
	}

	if !softFailure {
		o.sessions.Append(ctx, sess.ID, domain.RoleFastReply, reply.SuggestedResponse, req.Language)
		o.sessions.Append(ctx, sess.ID, domain.RoleFastMeta, encodeFastMeta(reply), req.Language)
	}

	if spawnSlowPath {
		o.admitSlowPath(ctx, sess.ID)
	}

	return &SendResponse{
		SessionID:         sess.ID,
		JourneyStage:      sess.JourneyStage,
		Reply:             reply,
		SoftFailure:       softFailure,
		SoftFailureReason: softReason,
	}, nil
}

// classifySoftFailure maps a Fast Model failure to the user-visible
// reason and whether the Slow Path should still be admitted. Auth
// failures are the one class that withholds the Slow Path; a rate limit
// gets its own reason, and every other dependency failure (like a parse
// failure, handled separately by the caller) is treated as a deadline miss.
func classifySoftFailure(err error) (domain.SoftFailureReason, bool) {
	kind, _ := apperr.KindOf(err)
	switch kind {
	case apperr.KindDependencyAuth:
		return domain.SoftFailureAuth, false
	case apperr.KindDependencyRateLimited:
		return domain.SoftFailureRateLimited, true
	default:
		return domain.SoftFailureDeadline, true
	}
}

// admitSlowPath enqueues the Slow Path admission message on its own
// short-lived, independent context — the Fast Path must not await it,
// and a near-exhausted Fast Path deadline must not abort the enqueue.
func (o *Orchestrator) admitSlowPath(ctx context.Context, sessionID string) {
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := o.producer.Enqueue(enqueueCtx, queue.SlowPathRequest{SessionID: sessionID}); err != nil {
		slog.ErrorContext(ctx, "failed to admit slow path request", "error", err, "session_id", sessionID)
	}
}

// fastMetaContent is the structured encoding of a fast_meta log entry:
// every FastReply field except the suggested response itself, which is
// logged separately under RoleFastReply.
type fastMetaContent struct {
	OptionalFollowup *string  `json:"optional_followup,omitempty"`
	SellerQuestions  []string `json:"seller_questions,omitempty"`
	ClientStyle      string   `json:"client_style"`
	ConfidenceScore  float64  `json:"confidence_score"`
	ConfidenceReason string   `json:"confidence_reason"`
}

func encodeFastMeta(reply domain.FastReply) string {
	content := fastMetaContent{
		OptionalFollowup: reply.OptionalFollowup,
		SellerQuestions:  reply.SellerQuestions,
		ClientStyle:      string(reply.ClientStyle),
		ConfidenceScore:  reply.ConfidenceScore,
		ConfidenceReason: reply.ConfidenceReason,
	}
	data, err := json.Marshal(content)
	if err != nil {
		return reply.ConfidenceReason
	}
	return string(data)
}
