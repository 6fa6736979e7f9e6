package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/vectorstore"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeStore struct {
	results []domain.ScoredNugget
	err     error
}

func (f fakeStore) EnsureCollection(ctx context.Context) error { return nil }
func (f fakeStore) Upsert(ctx context.Context, n domain.KnowledgeNugget) error { return nil }
func (f fakeStore) Delete(ctx context.Context, id string) error { return nil }
func (f fakeStore) Search(ctx context.Context, query []float32, lang domain.Language, topK int) ([]domain.ScoredNugget, error) {
	return f.results, f.err
}

var _ vectorstore.VectorStore = fakeStore{}

func TestRetrieveEmptyQueryReturnsSentinel(t *testing.T) {
	r := New(fakeEmbedder{}, fakeStore{}, DefaultConfig())
	if got := r.Retrieve(context.Background(), "   ", domain.LanguageEN); got != Sentinel {
		t.Errorf("Retrieve() = %q, want sentinel", got)
	}
}

func TestRetrieveEmbedFailureReturnsSentinel(t *testing.T) {
	r := New(fakeEmbedder{err: errors.New("boom")}, fakeStore{}, DefaultConfig())
	if got := r.Retrieve(context.Background(), "note", domain.LanguageEN); got != Sentinel {
		t.Errorf("Retrieve() = %q, want sentinel", got)
	}
}

func TestRetrieveSearchFailureReturnsSentinel(t *testing.T) {
	r := New(fakeEmbedder{vec: []float32{0.1}}, fakeStore{err: errors.New("boom")}, DefaultConfig())
	if got := r.Retrieve(context.Background(), "note", domain.LanguageEN); got != Sentinel {
		t.Errorf("Retrieve() = %q, want sentinel", got)
	}
}

func TestRetrieveBelowThresholdReturnsSentinel(t *testing.T) {
	store := fakeStore{results: []domain.ScoredNugget{
		{Nugget: domain.KnowledgeNugget{Body: "low relevance"}, Score: 0.1},
	}}
	r := New(fakeEmbedder{vec: []float32{0.1}}, store, DefaultConfig())
	if got := r.Retrieve(context.Background(), "note", domain.LanguageEN); got != Sentinel {
		t.Errorf("Retrieve() = %q, want sentinel", got)
	}
}

func TestRetrieveConcatenatesAboveThreshold(t *testing.T) {
	store := fakeStore{results: []domain.ScoredNugget{
		{Nugget: domain.KnowledgeNugget{Body: "alpha"}, Score: 0.9},
		{Nugget: domain.KnowledgeNugget{Body: "beta"}, Score: 0.6},
		{Nugget: domain.KnowledgeNugget{Body: "gamma"}, Score: 0.2},
	}}
	r := New(fakeEmbedder{vec: []float32{0.1}}, store, DefaultConfig())
	got := r.Retrieve(context.Background(), "note", domain.LanguageEN)

	if !strings.Contains(got, "alpha") || !strings.Contains(got, "beta") {
		t.Errorf("Retrieve() = %q, want alpha and beta present", got)
	}
	if strings.Contains(got, "gamma") {
		t.Errorf("Retrieve() = %q, gamma should be filtered by threshold", got)
	}
}

func TestRetrieveTruncatesToByteCap(t *testing.T) {
	store := fakeStore{results: []domain.ScoredNugget{
		{Nugget: domain.KnowledgeNugget{Body: strings.Repeat("x", 100)}, Score: 0.9},
	}}
	cfg := DefaultConfig()
	cfg.ContextCapBytes = 10
	r := New(fakeEmbedder{vec: []float32{0.1}}, store, cfg)
	got := r.Retrieve(context.Background(), "note", domain.LanguageEN)
	if len(got) > 10 {
		t.Errorf("Retrieve() returned %d bytes, want <= 10", len(got))
	}
}
