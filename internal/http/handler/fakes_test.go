package handler_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/enrich"
	"github.com/basegraph/salesassist/internal/llmgw"
	"github.com/basegraph/salesassist/internal/queue"
	"github.com/basegraph/salesassist/internal/store"
)

// fakeSessions implements sessionmgr.Manager.
type fakeSessions struct {
	createFn func(ctx context.Context, lang domain.Language) (*domain.Session, error)
	getFn    func(ctx context.Context, sessionID string) (*domain.Session, error)
	endFn    func(ctx context.Context, sessionID string, outcome domain.TerminalOutcome) error
	history  domain.History
}

func (f *fakeSessions) Create(ctx context.Context, lang domain.Language) (*domain.Session, error) {
	return f.createFn(ctx, lang)
}

func (f *fakeSessions) EnsureCommitted(ctx context.Context, sessionID string, seedTimestamp time.Time, lang domain.Language) (*domain.Session, error) {
	return &domain.Session{ID: "S-TEST-001", CreatedAt: seedTimestamp, JourneyStage: domain.StageDiscovery, PreferredLanguage: lang}, nil
}

func (f *fakeSessions) Append(ctx context.Context, sessionID string, role domain.ConversationRole, content string, lang domain.Language) {
}

func (f *fakeSessions) History(ctx context.Context, sessionID string, limit int) (domain.History, error) {
	return f.history, nil
}

func (f *fakeSessions) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return f.getFn(ctx, sessionID)
}

func (f *fakeSessions) UpdateStage(ctx context.Context, sessionID string, stage domain.JourneyStage) error {
	return nil
}

func (f *fakeSessions) End(ctx context.Context, sessionID string, outcome domain.TerminalOutcome) error {
	return f.endFn(ctx, sessionID, outcome)
}

// fakeAnalyses implements store.AnalysisStore.
type fakeAnalyses struct {
	getLatestFn   func(ctx context.Context, sessionID string) (*domain.DeepAnalysisEntry, error)
	listBySession []domain.DeepAnalysisEntry
}

func (f *fakeAnalyses) Create(ctx context.Context, entry domain.DeepAnalysisEntry) (*domain.DeepAnalysisEntry, error) {
	return &entry, nil
}

func (f *fakeAnalyses) GetLatest(ctx context.Context, sessionID string) (*domain.DeepAnalysisEntry, error) {
	if f.getLatestFn != nil {
		return f.getLatestFn(ctx, sessionID)
	}
	return nil, store.ErrNotFound
}

func (f *fakeAnalyses) ListBySession(ctx context.Context, sessionID string) ([]domain.DeepAnalysisEntry, error) {
	return f.listBySession, nil
}

// fakeFeedback implements store.FeedbackStore.
type fakeFeedback struct {
	createFn      func(ctx context.Context, entry domain.FeedbackEntry) (*domain.FeedbackEntry, error)
	listBySession []domain.FeedbackEntry
}

func (f *fakeFeedback) Create(ctx context.Context, entry domain.FeedbackEntry) (*domain.FeedbackEntry, error) {
	return f.createFn(ctx, entry)
}

func (f *fakeFeedback) ListBySession(ctx context.Context, sessionID string) ([]domain.FeedbackEntry, error) {
	return f.listBySession, nil
}

// fakeNuggets implements store.NuggetStore.
type fakeNuggets struct {
	upsertFn func(ctx context.Context, n domain.KnowledgeNugget) (*domain.KnowledgeNugget, error)
	listAll  []domain.KnowledgeNugget
}

func (f *fakeNuggets) Upsert(ctx context.Context, n domain.KnowledgeNugget) (*domain.KnowledgeNugget, error) {
	return f.upsertFn(ctx, n)
}

func (f *fakeNuggets) ListByLanguage(ctx context.Context, lang domain.Language) ([]domain.KnowledgeNugget, error) {
	var out []domain.KnowledgeNugget
	for _, n := range f.listAll {
		if n.Language == lang {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNuggets) ListAll(ctx context.Context) ([]domain.KnowledgeNugget, error) {
	return f.listAll, nil
}

// fakeEmbedder implements embed.Embedder.
type fakeEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedFn != nil {
		return f.embedFn(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

// fakeVectorStore implements vectorstore.VectorStore.
type fakeVectorStore struct {
	upsertFn func(ctx context.Context, n domain.KnowledgeNugget) error
}

func (f *fakeVectorStore) EnsureCollection(ctx context.Context) error { return nil }

func (f *fakeVectorStore) Upsert(ctx context.Context, n domain.KnowledgeNugget) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, n)
	}
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, query []float32, lang domain.Language, topK int) ([]domain.ScoredNugget, error) {
	return nil, nil
}

func (f *fakeVectorStore) Delete(ctx context.Context, id string) error { return nil }

// fakeRetriever implements retriever.Retriever.
type fakeRetriever struct {
	context string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, lang domain.Language) string {
	return f.context
}

// fakeGateway structurally satisfies the orchestrator's unexported
// gatewayClient interface (Fast/Analyze/FastModel/DeepModel) — Go
// allows passing a value of any type that implements an unexported
// interface's method set into an exported constructor parameter of
// that type.
type fakeGateway struct {
	fastFn func(ctx context.Context, req llmgw.CompletionRequest) (json.RawMessage, error)
}

func (f *fakeGateway) Fast(ctx context.Context, req llmgw.CompletionRequest) (json.RawMessage, error) {
	return f.fastFn(ctx, req)
}

func (f *fakeGateway) Analyze(ctx context.Context, req llmgw.CompletionRequest) (*llmgw.AnalyzeResult, error) {
	return nil, nil
}

func (f *fakeGateway) FastModel() string { return "fake-fast" }
func (f *fakeGateway) DeepModel() string { return "fake-deep" }

// fakeComposer structurally satisfies the orchestrator's unexported
// composer interface.
type fakeComposer struct{}

func (fakeComposer) Compose(_ enrich.Input) string { return "" }

// fakeProducer implements queue.Producer.
type fakeProducer struct {
	enqueueFn func(ctx context.Context, msg queue.SlowPathRequest) error
}

func (f *fakeProducer) Enqueue(ctx context.Context, msg queue.SlowPathRequest) error {
	if f.enqueueFn != nil {
		return f.enqueueFn(ctx, msg)
	}
	return nil
}

func (f *fakeProducer) Close() error { return nil }
