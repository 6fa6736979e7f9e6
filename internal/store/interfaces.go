package store

import (
	"context"
	"errors"
	"time"

	"github.com/basegraph/salesassist/internal/domain"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// SessionStore defines the contract for session lifecycle persistence.
type SessionStore interface {
	Create(ctx context.Context, id string, createdAt time.Time, stage domain.JourneyStage, lang domain.Language) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	UpdateJourneyStage(ctx context.Context, id string, stage domain.JourneyStage) error
	End(ctx context.Context, id string, outcome domain.TerminalOutcome, endedAt time.Time) error
}

// ConversationLogStore defines the contract for the append-only turn log.
type ConversationLogStore interface {
	Append(ctx context.Context, id int64, sessionID string, at time.Time, role domain.ConversationRole, content string, lang domain.Language) (*domain.ConversationLogEntry, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.ConversationLogEntry, error)
}

// AnalysisStore defines the contract for Slow Path output persistence.
type AnalysisStore interface {
	Create(ctx context.Context, entry domain.DeepAnalysisEntry) (*domain.DeepAnalysisEntry, error)
	GetLatest(ctx context.Context, sessionID string) (*domain.DeepAnalysisEntry, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.DeepAnalysisEntry, error)
}

// FeedbackStore defines the contract for seller critique persistence.
type FeedbackStore interface {
	Create(ctx context.Context, entry domain.FeedbackEntry) (*domain.FeedbackEntry, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.FeedbackEntry, error)
}

// NuggetStore defines the contract for the retrieval corpus's system-of-record.
// The Vector Store holds the embeddings; this store holds the canonical text.
// Nothing re-indexes the Vector Store from this store at startup; the admin
// upsert writes to both.
type NuggetStore interface {
	Upsert(ctx context.Context, nugget domain.KnowledgeNugget) (*domain.KnowledgeNugget, error)
	ListByLanguage(ctx context.Context, lang domain.Language) ([]domain.KnowledgeNugget, error)
	ListAll(ctx context.Context) ([]domain.KnowledgeNugget, error)
}
