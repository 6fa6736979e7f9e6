package dto

import "github.com/basegraph/salesassist/internal/domain"

// UpsertNuggetRequest creates or replaces a knowledge nugget. An empty ID
// mints a fresh one in the handler; a non-empty ID replaces the existing
// nugget's canonical text (its embedding is then regenerated).
type UpsertNuggetRequest struct {
	ID       string            `json:"id"`
	Title    string            `json:"title" binding:"required"`
	Body     string            `json:"body" binding:"required"`
	Keywords []string          `json:"keywords"`
	Language string            `json:"language" binding:"required,oneof=en pl"`
	Type     string            `json:"type"`
	Tags     map[string]string `json:"tags"`
}

type NuggetResponse struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Keywords []string          `json:"keywords,omitempty"`
	Language string            `json:"language"`
	Type     string            `json:"type,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

func ToNuggetResponse(n domain.KnowledgeNugget) NuggetResponse {
	return NuggetResponse{
		ID:       n.ID,
		Title:    n.Title,
		Body:     n.Body,
		Keywords: n.Keywords,
		Language: string(n.Language),
		Type:     n.Type,
		Tags:     n.Tags,
	}
}

func ToNuggetListResponse(nuggets []domain.KnowledgeNugget) []NuggetResponse {
	out := make([]NuggetResponse, 0, len(nuggets))
	for _, n := range nuggets {
		out = append(out, ToNuggetResponse(n))
	}
	return out
}

// FeedbackGroupResponse groups a session's feedback entries for the
// admin review surface: every feedback entry of a single session, together.
type FeedbackGroupResponse struct {
	SessionID string                   `json:"session_id"`
	Entries   []FeedbackEntryResponse `json:"entries"`
}

type FeedbackEntryResponse struct {
	ID                  int64   `json:"id"`
	CritiquedEntryID    int64   `json:"critiqued_entry_id"`
	Polarity            string  `json:"polarity"`
	SellerComment       string  `json:"seller_comment,omitempty"`
	CritiquedSuggestion string  `json:"critiqued_suggestion,omitempty"`
	RefinedSuggestion   *string `json:"refined_suggestion,omitempty"`
}

func ToFeedbackEntryResponse(e domain.FeedbackEntry) FeedbackEntryResponse {
	return FeedbackEntryResponse{
		ID:                  e.ID,
		CritiquedEntryID:    e.CritiquedEntryID,
		Polarity:            string(e.Polarity),
		SellerComment:       e.SellerComment,
		CritiquedSuggestion: e.CritiquedSuggestion,
		RefinedSuggestion:   e.RefinedSuggestion,
	}
}

func ToFeedbackGroupResponse(sessionID string, entries []domain.FeedbackEntry) FeedbackGroupResponse {
	out := make([]FeedbackEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToFeedbackEntryResponse(e))
	}
	return FeedbackGroupResponse{SessionID: sessionID, Entries: out}
}

// AnalyticsResponse is a coarse rollup over a session's feedback: how
// many suggestions landed versus needed correction.
type AnalyticsResponse struct {
	SessionID    string `json:"session_id"`
	ThumbsUp     int    `json:"thumbs_up"`
	ThumbsDown   int    `json:"thumbs_down"`
	AnalysisRuns int    `json:"analysis_runs"`
	LatestStatus string `json:"latest_status,omitempty"`
}
