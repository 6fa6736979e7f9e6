package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/basegraph/salesassist/common/id"
	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/llmgw"
)

// RefineRequest is a seller's critique of a prior Fast Path suggestion.
type RefineRequest struct {
	SessionID        string
	CritiquedEntryID int64
	OriginalNote     string
	BadSuggestion    string
	Criticism        string
	Language         domain.Language
}

// RefineResponse carries the corrected suggestion. Failure modes mirror
// the Fast Path's, minus the Slow Path trigger.
type RefineResponse struct {
	RefinedSuggestion string
	SoftFailure       bool
	SoftFailureReason domain.SoftFailureReason
}

// Refine calls the Fast Model with a corrective prompt and persists a
// down-polarity feedback entry regardless of whether the model call
// succeeded. Persistence failure is logged and tolerated; the refinement
// is still returned to the seller.
func (o *Orchestrator) Refine(ctx context.Context, req RefineRequest) (*RefineResponse, error) {
	if !domain.IsValidLanguage(req.Language) {
		return nil, apperr.New(apperr.KindValidationFailed, fmt.Sprintf("unrecognized language %q", req.Language))
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.FastPathDeadline)
	defer cancel()

	prompt := buildRefinementPrompt(req.OriginalNote, req.BadSuggestion, req.Criticism, req.Language)
	raw, fastErr := o.gateway.Fast(ctx, llmgw.CompletionRequest{
		System:    refinementSystemPrompt,
		Prompt:    prompt,
		MaxTokens: fastPathMaxTokens,
	})

	var refined string
	softFailure := false
	var softReason domain.SoftFailureReason

	switch {
	case fastErr != nil:
		softFailure = true
		softReason, _ = classifySoftFailure(fastErr)
		refined = cannedSoftFailure(softReason, req.Language)
		slog.WarnContext(ctx, "refinement model call failed, returning soft failure", "error", fastErr, "reason", softReason)
	default:
		parsed, parseErr := parseRefinement(raw)
		if parseErr != nil {
			softFailure = true
			softReason = domain.SoftFailureDeadline
			refined = cannedSoftFailure(softReason, req.Language)
			slog.WarnContext(ctx, "refinement response failed to parse, treating as deadline miss", "error", parseErr)
		} else {
			refined = parsed
		}
	}

	entry := domain.FeedbackEntry{
		ID:                  id.New(),
		SessionID:           req.SessionID,
		CritiquedEntryID:    req.CritiquedEntryID,
		Polarity:            domain.FeedbackDown,
		SellerNote:          req.OriginalNote,
		CritiquedSuggestion: req.BadSuggestion,
		SellerComment:       req.Criticism,
		Language:            req.Language,
		RefinedSuggestion:   &refined,
		Timestamp:           time.Now(),
	}
	if _, err := o.feedback.Create(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to persist refinement feedback entry, still returning refinement", "error", err)
	}

	return &RefineResponse{
		RefinedSuggestion: refined,
		SoftFailure:       softFailure,
		SoftFailureReason: softReason,
	}, nil
}
