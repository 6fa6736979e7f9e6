package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/basegraph/salesassist/internal/domain"
)

// fastReplyWire is the Fast Model's expected output shape. domain.FastReply
// carries no json tags of its own (it's an internal type, not a wire
// format), so the parse boundary lives here rather than on the domain type.
type fastReplyWire struct {
	SuggestedResponse string   `json:"suggested_response"`
	OptionalFollowup  *string  `json:"optional_followup"`
	SellerQuestions   []string `json:"seller_questions"`
	ClientStyle       string   `json:"client_style"`
	ConfidenceScore   float64  `json:"confidence_score"`
	ConfidenceReason  string   `json:"confidence_reason"`
}

func parseFastReply(raw json.RawMessage) (domain.FastReply, error) {
	var w fastReplyWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.FastReply{}, fmt.Errorf("unmarshaling fast reply: %w", err)
	}
	if strings.TrimSpace(w.SuggestedResponse) == "" {
		return domain.FastReply{}, fmt.Errorf("fast reply missing suggested_response")
	}

	return domain.FastReply{
		SuggestedResponse: w.SuggestedResponse,
		OptionalFollowup:  w.OptionalFollowup,
		SellerQuestions:   w.SellerQuestions,
		ClientStyle:       normalizeClientStyle(w.ClientStyle),
		ConfidenceScore:   clamp01(w.ConfidenceScore),
		ConfidenceReason:  w.ConfidenceReason,
	}, nil
}

func normalizeClientStyle(s string) domain.ClientStyle {
	switch domain.ClientStyle(strings.ToLower(strings.TrimSpace(s))) {
	case domain.ClientStyleAnalytical:
		return domain.ClientStyleAnalytical
	case domain.ClientStyleDriver:
		return domain.ClientStyleDriver
	case domain.ClientStyleExpressive:
		return domain.ClientStyleExpressive
	case domain.ClientStyleAmiable:
		return domain.ClientStyleAmiable
	default:
		return domain.ClientStyleUnknown
	}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// refinementWire is the Fast Model's expected output for a refinement turn.
type refinementWire struct {
	RefinedSuggestion string `json:"refined_suggestion"`
}

func parseRefinement(raw json.RawMessage) (string, error) {
	var w refinementWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return "", fmt.Errorf("unmarshaling refinement: %w", err)
	}
	if strings.TrimSpace(w.RefinedSuggestion) == "" {
		return "", fmt.Errorf("refinement missing refined_suggestion")
	}
	return w.RefinedSuggestion, nil
}

// opusMagnumKnownKeys are the top-level fields domain.OpusMagnumDocument
// decodes itself; anything else the model returns is preserved in Raw
// instead of silently dropped.
var opusMagnumKnownKeys = map[string]bool{
	"overall_confidence":    true,
	"recommended_stage":     true,
	"client_summary":        true,
	"tactical_indicators":   true,
	"psychometric_profile":  true,
	"motivation_analysis":   true,
	"predictive_paths":      true,
	"strategic_playbook":    true,
	"decision_maker_vectors": true,
}

func parseOpusMagnum(raw json.RawMessage) (*domain.OpusMagnumDocument, error) {
	var doc domain.OpusMagnumDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling opus magnum document: %w", err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("unmarshaling opus magnum document top level: %w", err)
	}
	extras := make(map[string]any, len(all))
	for key, value := range all {
		if opusMagnumKnownKeys[key] {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			continue
		}
		extras[key] = decoded
	}
	if len(extras) > 0 {
		doc.Raw = extras
	}

	if stage, ok := domain.StageFromAlias(string(doc.RecommendedStage)); ok {
		doc.RecommendedStage = stage
	} else if !domain.IsValidStage(doc.RecommendedStage) {
		return nil, fmt.Errorf("opus magnum document recommended_stage %q not recognized", doc.RecommendedStage)
	}

	return &doc, nil
}

const fastPathSystemPrompt = `You are an in-the-moment coaching assistant for a salesperson mid-conversation with a prospective client. You never talk to the client directly; you coach the seller.

Given the seller's latest note, recent conversation history and any grounded context, respond with a single JSON object and nothing else:
{
  "suggested_response": "<a concrete reply the seller can say or send to the client>",
  "optional_followup": "<a strategic follow-up question, or null>",
  "seller_questions": ["<meta question about the client's body language or tone the seller should notice>", "..."],
  "client_style": "<one of analytical, driver, expressive, amiable, unknown>",
  "confidence_score": <float in [0, 1]>,
  "confidence_reason": "<one short sentence>"
}
Respond in the requested language. Do not wrap the JSON in markdown fences.`

func buildFastPathPrompt(history domain.History, latestNote string, stage domain.JourneyStage, lang domain.Language, groundedContext string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Journey stage: %s\n", stage))
	sb.WriteString(fmt.Sprintf("Response language: %s\n\n", lang))

	if history.Truncated {
		sb.WriteString("Earlier conversation summary: ")
		sb.WriteString(history.EarlierSummary)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Recent conversation:\n")
	for _, entry := range history.Entries {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", entry.Role, entry.Content))
	}
	sb.WriteString("\n")

	sb.WriteString("Grounded context:\n")
	sb.WriteString(groundedContext)
	sb.WriteString("\n\n")

	sb.WriteString("Latest seller note:\n")
	sb.WriteString(latestNote)

	return sb.String()
}

const slowPathSystemPrompt = `You are a sales strategist producing a deep psychological and strategic profile of a prospective client from the full conversation transcript. Respond with a single JSON object matching the Opus Magnum document schema and nothing else. Every module is required; every confidence field is a float in [0, 100] except the per-path probabilities, which are in [0, 1]. "recommended_stage" must be one of Discovery, Analysis, Decision. Do not wrap the JSON in markdown fences.`

func buildSlowPathPrompt(history domain.History, stage domain.JourneyStage, lang domain.Language, groundedContext, strategicContext string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Current journey stage: %s\n", stage))
	sb.WriteString(fmt.Sprintf("Client language: %s\n\n", lang))

	sb.WriteString("Full conversation transcript:\n")
	for _, entry := range history.Entries {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", entry.Role, entry.Content))
	}
	sb.WriteString("\n")

	sb.WriteString("Grounded knowledge context:\n")
	sb.WriteString(groundedContext)
	sb.WriteString("\n\n")

	if strategicContext != "" {
		sb.WriteString("Strategic context:\n")
		sb.WriteString(strategicContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Produce the Opus Magnum document now.")
	return sb.String()
}

const refinementSystemPrompt = `You are coaching a salesperson who disliked your previous suggestion. Given the original seller note, the suggestion they rejected and their criticism, respond with a single JSON object and nothing else:
{
  "refined_suggestion": "<a corrected reply addressing the seller's criticism>"
}
Respond in the requested language. Do not wrap the JSON in markdown fences.`

func buildRefinementPrompt(originalNote, badSuggestion, criticism string, lang domain.Language) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Response language: %s\n\n", lang))
	sb.WriteString("Original seller note:\n")
	sb.WriteString(originalNote)
	sb.WriteString("\n\nRejected suggestion:\n")
	sb.WriteString(badSuggestion)
	sb.WriteString("\n\nSeller's criticism:\n")
	sb.WriteString(criticism)

	return sb.String()
}

// cannedSoftFailure returns the user-visible soft-failure string for
// reason, always in the session's declared language.
func cannedSoftFailure(reason domain.SoftFailureReason, lang domain.Language) string {
	messages := map[domain.SoftFailureReason]map[domain.Language]string{
		domain.SoftFailureDeadline: {
			domain.LanguageEN: "I couldn't get a coached reply in time — please try sending your note again.",
			domain.LanguagePL: "Nie udało się wygenerować sugestii na czas — spróbuj wysłać notatkę ponownie.",
		},
		domain.SoftFailureRateLimited: {
			domain.LanguageEN: "The assistant is temporarily overloaded — please try again in a moment.",
			domain.LanguagePL: "Asystent jest chwilowo przeciążony — spróbuj ponownie za chwilę.",
		},
		domain.SoftFailureAuth: {
			domain.LanguageEN: "The assistant is misconfigured and cannot respond right now. Please notify your administrator.",
			domain.LanguagePL: "Asystent jest źle skonfigurowany i nie może teraz odpowiedzieć. Powiadom administratora.",
		},
	}

	if byLang, ok := messages[reason]; ok {
		if msg, ok := byLang[lang]; ok {
			return msg
		}
		return byLang[domain.LanguageEN]
	}
	return messages[domain.SoftFailureDeadline][domain.LanguageEN]
}

func softFailureReply(reason domain.SoftFailureReason, lang domain.Language) domain.FastReply {
	return domain.FastReply{
		SuggestedResponse: cannedSoftFailure(reason, lang),
		ClientStyle:       domain.ClientStyleUnknown,
		ConfidenceScore:   0,
		ConfidenceReason:  string(reason),
	}
}
