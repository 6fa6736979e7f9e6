// Package retriever implements the Retrieval Layer: embed a seller note,
// search the Vector Store, thresh, rank and concatenate the result into
// a single context string. It never surfaces an error to its caller —
// every failure degrades to the sentinel string.
package retriever

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/embed"
	"github.com/basegraph/salesassist/internal/vectorstore"
)

// Sentinel is returned whenever no grounded context survives retrieval,
// whether because nothing cleared the similarity threshold or because a
// dependency failed outright.
const Sentinel = "No grounded context available — proceed on general principles."

const nuggetDelimiter = "\n---\n"

// Config tunes the similarity threshold, top-K and context byte cap.
type Config struct {
	SimilarityThreshold float64
	TopK                int
	ContextCapBytes     int
}

func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.50,
		TopK:                3,
		ContextCapBytes:     2000,
	}
}

// Retriever is the pure (query, language) -> context string contract.
type Retriever interface {
	Retrieve(ctx context.Context, query string, lang domain.Language) string
}

type retriever struct {
	embedder Embedder
	store    vectorstore.VectorStore
	cfg      Config
}

// Embedder narrows embed.Embedder to the one call the Retrieval Layer needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var _ Embedder = (embed.Embedder)(nil)

func New(embedder Embedder, store vectorstore.VectorStore, cfg Config) Retriever {
	return &retriever{embedder: embedder, store: store, cfg: cfg}
}

func (r *retriever) Retrieve(ctx context.Context, query string, lang domain.Language) string {
	if strings.TrimSpace(query) == "" {
		return Sentinel
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		slog.WarnContext(ctx, "retrieval embedding failed, degrading to sentinel", "error", err)
		return Sentinel
	}

	topK := r.cfg.TopK
	if topK <= 0 {
		topK = 3
	}

	results, err := r.store.Search(ctx, vec, lang, topK)
	if err != nil {
		slog.WarnContext(ctx, "retrieval search failed, degrading to sentinel", "error", err)
		return Sentinel
	}

	kept := make([]string, 0, len(results))
	for _, res := range results {
		if res.Score < r.cfg.SimilarityThreshold {
			continue
		}
		kept = append(kept, res.Nugget.Body)
	}

	if len(kept) == 0 {
		return Sentinel
	}

	joined := strings.Join(kept, nuggetDelimiter)
	return truncateBytes(joined, r.cfg.ContextCapBytes)
}

func truncateBytes(s string, capBytes int) string {
	if capBytes <= 0 || len(s) <= capBytes {
		return s
	}

	truncated := s[:capBytes]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}
