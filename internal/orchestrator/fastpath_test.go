package orchestrator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/channel"
	"github.com/basegraph/salesassist/internal/domain"
)

func newTestOrchestrator(t *testing.T, sessions *fakeSessions, gw *fakeGateway, producer *fakeProducer) *Orchestrator {
	t.Helper()
	o, err := New(sessions, &fakeRetriever{result: "grounded context"}, gw, &fakeComposer{}, &fakeAnalyses{}, &fakeFeedback{}, channel.NewRegistry(), producer, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestSendHappyPath(t *testing.T) {
	sess := &domain.Session{ID: "S-ABC-123", JourneyStage: domain.StageDiscovery, PreferredLanguage: domain.LanguageEN}
	sessions := &fakeSessions{
		sess:    sess,
		history: domain.History{Entries: []domain.ConversationLogEntry{{Role: domain.RoleSeller, Content: "hi"}}},
	}
	reply := fastReplyWire{
		SuggestedResponse: "Tell them about the extended range.",
		ClientStyle:       "analytical",
		ConfidenceScore:   0.8,
		ConfidenceReason:  "clear, specific ask",
	}
	raw, err := json.Marshal(reply)
	if err != nil {
		t.Fatal(err)
	}
	gw := &fakeGateway{fastResult: raw}
	producer := &fakeProducer{}

	o := newTestOrchestrator(t, sessions, gw, producer)

	resp, err := o.Send(context.Background(), SendRequest{
		SessionID:    "TEMP-xyz",
		UserInput:    "Client is asking about range on the highway",
		JourneyStage: domain.StageDiscovery,
		Language:     domain.LanguageEN,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.SoftFailure {
		t.Fatalf("Send() SoftFailure = true, want false (reason %v)", resp.SoftFailureReason)
	}
	if resp.SessionID != "S-ABC-123" {
		t.Errorf("SessionID = %q, want S-ABC-123", resp.SessionID)
	}
	if resp.Reply.SuggestedResponse != reply.SuggestedResponse {
		t.Errorf("SuggestedResponse = %q, want %q", resp.Reply.SuggestedResponse, reply.SuggestedResponse)
	}
	if resp.Reply.ClientStyle != domain.ClientStyleAnalytical {
		t.Errorf("ClientStyle = %q, want analytical", resp.Reply.ClientStyle)
	}
	if len(producer.enqueued) != 1 {
		t.Errorf("expected one slow path admission, got %d", len(producer.enqueued))
	}
	if len(sessions.appended) != 3 {
		t.Errorf("expected seller note + fast reply + fast meta appended, got %d entries", len(sessions.appended))
	}
}

func TestSendAuthFailureWithholdsSlowPath(t *testing.T) {
	sess := &domain.Session{ID: "S-ABC-123", JourneyStage: domain.StageDiscovery, PreferredLanguage: domain.LanguageEN}
	sessions := &fakeSessions{sess: sess}
	gw := &fakeGateway{fastErr: apperr.New(apperr.KindDependencyAuth, "invalid api key")}
	producer := &fakeProducer{}

	o := newTestOrchestrator(t, sessions, gw, producer)

	resp, err := o.Send(context.Background(), SendRequest{
		SessionID:    "S-ABC-123",
		UserInput:    "hello",
		JourneyStage: domain.StageDiscovery,
		Language:     domain.LanguageEN,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !resp.SoftFailure || resp.SoftFailureReason != domain.SoftFailureAuth {
		t.Fatalf("expected an auth soft failure, got %+v", resp)
	}
	if len(producer.enqueued) != 0 {
		t.Errorf("expected slow path withheld on auth failure, got %d admissions", len(producer.enqueued))
	}
}

func TestSendRateLimitStillAdmitsSlowPath(t *testing.T) {
	sess := &domain.Session{ID: "S-ABC-123", JourneyStage: domain.StageDiscovery, PreferredLanguage: domain.LanguageEN}
	sessions := &fakeSessions{sess: sess}
	gw := &fakeGateway{fastErr: apperr.New(apperr.KindDependencyRateLimited, "too many requests")}
	producer := &fakeProducer{}

	o := newTestOrchestrator(t, sessions, gw, producer)

	resp, err := o.Send(context.Background(), SendRequest{
		SessionID:    "S-ABC-123",
		UserInput:    "hello",
		JourneyStage: domain.StageDiscovery,
		Language:     domain.LanguageEN,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.SoftFailureReason != domain.SoftFailureRateLimited {
		t.Errorf("SoftFailureReason = %v, want rate limited", resp.SoftFailureReason)
	}
	if len(producer.enqueued) != 1 {
		t.Errorf("expected slow path still admitted on rate limit, got %d", len(producer.enqueued))
	}
}

func TestSendMalformedReplyTreatedAsDeadlineMiss(t *testing.T) {
	sess := &domain.Session{ID: "S-ABC-123", JourneyStage: domain.StageDiscovery, PreferredLanguage: domain.LanguageEN}
	sessions := &fakeSessions{sess: sess}
	gw := &fakeGateway{fastResult: json.RawMessage(`{"suggested_response": ""}`)}
	producer := &fakeProducer{}

	o := newTestOrchestrator(t, sessions, gw, producer)

	resp, err := o.Send(context.Background(), SendRequest{
		SessionID:    "S-ABC-123",
		UserInput:    "hello",
		JourneyStage: domain.StageDiscovery,
		Language:     domain.LanguagePL,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !resp.SoftFailure || resp.SoftFailureReason != domain.SoftFailureDeadline {
		t.Fatalf("expected a deadline-miss soft failure for an empty reply, got %+v", resp)
	}
	if len(producer.enqueued) != 1 {
		t.Errorf("expected slow path still admitted on parse failure, got %d", len(producer.enqueued))
	}
}

func TestSendRejectsUnknownJourneyStage(t *testing.T) {
	o := newTestOrchestrator(t, &fakeSessions{sess: &domain.Session{}}, &fakeGateway{}, &fakeProducer{})

	_, err := o.Send(context.Background(), SendRequest{
		SessionID:    "S-ABC-123",
		UserInput:    "hello",
		JourneyStage: "Bogus",
		Language:     domain.LanguageEN,
	})
	if !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("Send() error = %v, want ValidationFailed", err)
	}
}
