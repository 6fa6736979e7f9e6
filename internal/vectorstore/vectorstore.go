// Package vectorstore is the nearest-neighbor search backend for
// knowledge nuggets. Postgres (internal/store) remains the system of
// record for nugget metadata; this package only ever answers "which
// nuggets are closest to this vector".
package vectorstore

import (
	"context"

	"github.com/basegraph/salesassist/internal/domain"
)

// VectorStore indexes knowledge nuggets by embedding and answers
// k-nearest-neighbor queries filtered by language.
type VectorStore interface {
	// EnsureCollection creates the backing collection if it doesn't
	// already exist. Safe to call on every startup.
	EnsureCollection(ctx context.Context) error

	// Upsert indexes or re-indexes a nugget's vector and searchable
	// fields. Called whenever a nugget is created or its embedding
	// changes.
	Upsert(ctx context.Context, nugget domain.KnowledgeNugget) error

	// Search returns the topK nuggets nearest to query, restricted to
	// lang, each paired with its similarity score.
	Search(ctx context.Context, query []float32, lang domain.Language, topK int) ([]domain.ScoredNugget, error)

	// Delete removes a nugget from the index.
	Delete(ctx context.Context, id string) error
}
