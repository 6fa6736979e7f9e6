// Package dto defines the request/response wire shapes of the HTTP
// surface and the mapper functions from domain/orchestrator types to
// them. No dto type is ever passed into the orchestrator directly —
// handlers translate in both directions at the edge.
package dto

import (
	"time"

	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/orchestrator"
)

// NewSessionRequest optionally pins a preferred language; an empty value
// defaults to English in the handler.
type NewSessionRequest struct {
	Language string `json:"language" binding:"omitempty,oneof=en pl"`
}

type NewSessionResponse struct {
	SessionID string `json:"session_id"`
}

func ToNewSessionResponse(sess *domain.Session) NewSessionResponse {
	return NewSessionResponse{SessionID: sess.ID}
}

// SendRequest is the Fast Path turn submission.
type SendRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	UserInput    string `json:"user_input" binding:"required,max=5000"`
	JourneyStage string `json:"journey_stage" binding:"required"`
	Language     string `json:"language" binding:"required,oneof=en pl"`
}

// SendResponse carries the same seller-questions array under both
// suggested_questions and seller_questions, matching the literal
// response shape: domain.FastReply has only one such field to source
// either key from.
type SendResponse struct {
	SessionID          string   `json:"session_id"`
	JourneyStage        string   `json:"journey_stage"`
	SuggestedResponse   string   `json:"suggested_response"`
	SuggestedQuestions  []string `json:"suggested_questions"`
	OptionalFollowup    *string  `json:"optional_followup"`
	SellerQuestions     []string `json:"seller_questions"`
	ClientStyle         string   `json:"client_style"`
	ConfidenceScore     float64  `json:"confidence_score"`
	ConfidenceReason    string   `json:"confidence_reason"`
	SoftFailure         bool     `json:"soft_failure,omitempty"`
	SoftFailureReason   string   `json:"soft_failure_reason,omitempty"`
}

func ToSendResponse(resp *orchestrator.SendResponse) SendResponse {
	questions := resp.Reply.SellerQuestions
	return SendResponse{
		SessionID:          resp.SessionID,
		JourneyStage:       string(resp.JourneyStage),
		SuggestedResponse:  resp.Reply.SuggestedResponse,
		SuggestedQuestions: questions,
		OptionalFollowup:   resp.Reply.OptionalFollowup,
		SellerQuestions:    questions,
		ClientStyle:        string(resp.Reply.ClientStyle),
		ConfidenceScore:    resp.Reply.ConfidenceScore,
		ConfidenceReason:   resp.Reply.ConfidenceReason,
		SoftFailure:        resp.SoftFailure,
		SoftFailureReason:  string(resp.SoftFailureReason),
	}
}

// RefineRequest is a seller's critique of a prior suggestion.
type RefineRequest struct {
	SessionID        string `json:"session_id" binding:"required"`
	CritiquedEntryID int64  `json:"critiqued_entry_id" binding:"required"`
	OriginalNote     string `json:"original_note" binding:"required"`
	BadSuggestion    string `json:"bad_suggestion" binding:"required"`
	Criticism        string `json:"criticism" binding:"required"`
	Language         string `json:"language" binding:"required,oneof=en pl"`
}

type RefineResponse struct {
	RefinedSuggestion string `json:"refined_suggestion"`
	SoftFailure       bool   `json:"soft_failure,omitempty"`
	SoftFailureReason string `json:"soft_failure_reason,omitempty"`
}

func ToRefineResponse(resp *orchestrator.RefineResponse) RefineResponse {
	return RefineResponse{
		RefinedSuggestion: resp.RefinedSuggestion,
		SoftFailure:       resp.SoftFailure,
		SoftFailureReason: string(resp.SoftFailureReason),
	}
}

// RetrySlowPathRequest re-admits a committed session into the Slow Path.
type RetrySlowPathRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// EndRequest terminates a session with a final outcome.
type EndRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Outcome   string `json:"outcome" binding:"required,oneof=Won Lost"`
}

// FeedbackRequest records a seller's up/down reaction to a prior
// suggestion, independent of the refinement flow.
type FeedbackRequest struct {
	SessionID        string `json:"session_id" binding:"required"`
	CritiquedEntryID int64  `json:"critiqued_entry_id" binding:"required"`
	Polarity         string `json:"polarity" binding:"required,oneof=up down"`
	Comment          string `json:"comment"`
	Language         string `json:"language" binding:"required,oneof=en pl"`
}

type FeedbackResponse struct {
	ID int64 `json:"id"`
}

func ToFeedbackResponse(entry *domain.FeedbackEntry) FeedbackResponse {
	return FeedbackResponse{ID: entry.ID}
}

// ConversationLogEntryResponse is one line of a session's transcript.
type ConversationLogEntryResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
}

// AnalysisResponse is the latest Slow Path attempt for a session, if any.
type AnalysisResponse struct {
	Timestamp time.Time                 `json:"timestamp"`
	Status    string                    `json:"status"`
	Document  *domain.OpusMagnumDocument `json:"document,omitempty"`
	Error     *AnalysisErrorResponse    `json:"error,omitempty"`
}

type AnalysisErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionDetailResponse is the GET /sessions/{id} response: the full log
// plus the latest analysis, if the Slow Path has produced one yet.
type SessionDetailResponse struct {
	SessionID     string                         `json:"session_id"`
	JourneyStage  string                         `json:"journey_stage"`
	Ended         bool                           `json:"ended"`
	Log           []ConversationLogEntryResponse `json:"log"`
	LatestAnalysis *AnalysisResponse             `json:"latest_analysis,omitempty"`
}

func ToConversationLogEntryResponse(entry domain.ConversationLogEntry) ConversationLogEntryResponse {
	return ConversationLogEntryResponse{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		Role:      string(entry.Role),
		Content:   entry.Content,
	}
}

func ToAnalysisResponse(entry *domain.DeepAnalysisEntry) *AnalysisResponse {
	if entry == nil {
		return nil
	}
	resp := &AnalysisResponse{
		Timestamp: entry.Timestamp,
		Status:    string(entry.Status),
		Document:  entry.Document,
	}
	if entry.ErrorInfo != nil {
		resp.Error = &AnalysisErrorResponse{Kind: entry.ErrorInfo.Kind, Message: entry.ErrorInfo.Message}
	}
	return resp
}

func ToSessionDetailResponse(sess *domain.Session, log []domain.ConversationLogEntry, latest *domain.DeepAnalysisEntry) SessionDetailResponse {
	entries := make([]ConversationLogEntryResponse, 0, len(log))
	for _, e := range log {
		entries = append(entries, ToConversationLogEntryResponse(e))
	}
	return SessionDetailResponse{
		SessionID:      sess.ID,
		JourneyStage:   string(sess.JourneyStage),
		Ended:          sess.IsEnded(),
		Log:            entries,
		LatestAnalysis: ToAnalysisResponse(latest),
	}
}
