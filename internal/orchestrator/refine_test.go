package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/channel"
	"github.com/basegraph/salesassist/internal/domain"
)

func TestRefineReturnsRefinedSuggestion(t *testing.T) {
	wire := refinementWire{RefinedSuggestion: "Lead with the five-year total cost of ownership instead."}
	raw, err := json.Marshal(wire)
	if err != nil {
		t.Fatal(err)
	}
	gw := &fakeGateway{fastResult: raw}
	feedback := &fakeFeedback{}

	o, err := New(&fakeSessions{}, &fakeRetriever{}, gw, &fakeComposer{}, &fakeAnalyses{}, feedback, channel.NewRegistry(), &fakeProducer{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	resp, err := o.Refine(context.Background(), RefineRequest{
		SessionID:        "S-ABC-123",
		CritiquedEntryID: 42,
		OriginalNote:     "client flinched at the sticker price",
		BadSuggestion:    "just emphasize how premium it feels",
		Criticism:        "too vague, didn't address price at all",
		Language:         domain.LanguageEN,
	})
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if resp.SoftFailure {
		t.Fatalf("Refine() SoftFailure = true, want false")
	}
	if resp.RefinedSuggestion != wire.RefinedSuggestion {
		t.Errorf("RefinedSuggestion = %q, want %q", resp.RefinedSuggestion, wire.RefinedSuggestion)
	}
	if len(feedback.created) != 1 {
		t.Fatalf("expected one feedback entry, got %d", len(feedback.created))
	}
	entry := feedback.created[0]
	if entry.Polarity != domain.FeedbackDown {
		t.Errorf("Polarity = %v, want FeedbackDown", entry.Polarity)
	}
	if entry.RefinedSuggestion == nil || *entry.RefinedSuggestion != wire.RefinedSuggestion {
		t.Errorf("feedback entry RefinedSuggestion mismatch: %+v", entry.RefinedSuggestion)
	}
}

func TestRefineTreatsParseFailureAsDeadlineMiss(t *testing.T) {
	gw := &fakeGateway{fastResult: json.RawMessage(`{"refined_suggestion": ""}`)}
	o, err := New(&fakeSessions{}, &fakeRetriever{}, gw, &fakeComposer{}, &fakeAnalyses{}, &fakeFeedback{}, channel.NewRegistry(), &fakeProducer{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	resp, err := o.Refine(context.Background(), RefineRequest{Language: domain.LanguagePL})
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if !resp.SoftFailure || resp.SoftFailureReason != domain.SoftFailureDeadline {
		t.Fatalf("expected a deadline-miss soft failure, got %+v", resp)
	}
}

func TestRefineToleratesFeedbackPersistenceFailure(t *testing.T) {
	wire := refinementWire{RefinedSuggestion: "Ask what budget range they already cleared internally."}
	raw, err := json.Marshal(wire)
	if err != nil {
		t.Fatal(err)
	}
	gw := &fakeGateway{fastResult: raw}
	feedback := &fakeFeedback{createErr: errors.New("db unavailable")}

	o, err := New(&fakeSessions{}, &fakeRetriever{}, gw, &fakeComposer{}, &fakeAnalyses{}, feedback, channel.NewRegistry(), &fakeProducer{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	resp, err := o.Refine(context.Background(), RefineRequest{Language: domain.LanguageEN})
	if err != nil {
		t.Fatalf("Refine() error = %v, want nil despite persistence failure", err)
	}
	if resp.RefinedSuggestion != wire.RefinedSuggestion {
		t.Errorf("expected the refinement still returned despite persistence failure, got %q", resp.RefinedSuggestion)
	}
}

func TestRefineRejectsUnknownLanguage(t *testing.T) {
	o, err := New(&fakeSessions{}, &fakeRetriever{}, &fakeGateway{}, &fakeComposer{}, &fakeAnalyses{}, &fakeFeedback{}, channel.NewRegistry(), &fakeProducer{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	_, err = o.Refine(context.Background(), RefineRequest{Language: "xx"})
	if !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("Refine() error = %v, want ValidationFailed", err)
	}
}
