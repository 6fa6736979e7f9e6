package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/enrich"
	"github.com/basegraph/salesassist/internal/llmgw"
	"github.com/basegraph/salesassist/internal/queue"
	"github.com/basegraph/salesassist/internal/store"
)

type fakeSessions struct {
	sess       *domain.Session
	history    domain.History
	historyErr error
	appended   []domain.ConversationLogEntry
	stage      domain.JourneyStage
}

func (f *fakeSessions) Create(ctx context.Context, lang domain.Language) (*domain.Session, error) {
	return f.sess, nil
}

func (f *fakeSessions) EnsureCommitted(ctx context.Context, sessionID string, seedTimestamp time.Time, lang domain.Language) (*domain.Session, error) {
	return f.sess, nil
}

func (f *fakeSessions) Append(ctx context.Context, sessionID string, role domain.ConversationRole, content string, lang domain.Language) {
	f.appended = append(f.appended, domain.ConversationLogEntry{SessionID: sessionID, Role: role, Content: content, Language: lang})
}

func (f *fakeSessions) History(ctx context.Context, sessionID string, limit int) (domain.History, error) {
	if f.historyErr != nil {
		return domain.History{}, f.historyErr
	}
	return f.history, nil
}

func (f *fakeSessions) UpdateStage(ctx context.Context, sessionID string, stage domain.JourneyStage) error {
	f.stage = stage
	return nil
}

func (f *fakeSessions) End(ctx context.Context, sessionID string, outcome domain.TerminalOutcome) error {
	return nil
}

func (f *fakeSessions) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	if f.sess == nil {
		return nil, apperr.New(apperr.KindSessionNotFound, "not found")
	}
	return f.sess, nil
}

type fakeRetriever struct{ result string }

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, lang domain.Language) string {
	return f.result
}

type fakeGateway struct {
	fastResult json.RawMessage
	fastErr    error

	analyzeResult *llmgw.AnalyzeResult
	analyzeErr    error
}

func (f *fakeGateway) Fast(ctx context.Context, req llmgw.CompletionRequest) (json.RawMessage, error) {
	return f.fastResult, f.fastErr
}

func (f *fakeGateway) Analyze(ctx context.Context, req llmgw.CompletionRequest) (*llmgw.AnalyzeResult, error) {
	return f.analyzeResult, f.analyzeErr
}

func (f *fakeGateway) FastModel() string { return "fast-test-model" }
func (f *fakeGateway) DeepModel() string { return "deep-test-model" }

type fakeComposer struct{ block string }

func (f *fakeComposer) Compose(in enrich.Input) string { return f.block }

type fakeAnalyses struct {
	created   []domain.DeepAnalysisEntry
	createErr error
}

func (f *fakeAnalyses) Create(ctx context.Context, entry domain.DeepAnalysisEntry) (*domain.DeepAnalysisEntry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, entry)
	return &entry, nil
}

func (f *fakeAnalyses) GetLatest(ctx context.Context, sessionID string) (*domain.DeepAnalysisEntry, error) {
	return nil, store.ErrNotFound
}

func (f *fakeAnalyses) ListBySession(ctx context.Context, sessionID string) ([]domain.DeepAnalysisEntry, error) {
	return f.created, nil
}

type fakeFeedback struct {
	created   []domain.FeedbackEntry
	createErr error
}

func (f *fakeFeedback) Create(ctx context.Context, entry domain.FeedbackEntry) (*domain.FeedbackEntry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, entry)
	return &entry, nil
}

func (f *fakeFeedback) ListBySession(ctx context.Context, sessionID string) ([]domain.FeedbackEntry, error) {
	return f.created, nil
}

type fakeProducer struct {
	enqueued []queue.SlowPathRequest
	err      error
}

func (f *fakeProducer) Enqueue(ctx context.Context, msg queue.SlowPathRequest) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, msg)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

// captureChannel records the single most recent push message sent to it.
type captureChannel struct {
	out chan pushMessage
}

func (c *captureChannel) Send(ctx context.Context, message any) error {
	msg, ok := message.(pushMessage)
	if !ok {
		return fmt.Errorf("unexpected push message type %T", message)
	}
	c.out <- msg
	return nil
}
