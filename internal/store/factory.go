package store

import (
	"github.com/basegraph/salesassist/core/db/sqlc"
)

// Stores provides access to all store implementations. It can be
// instantiated with either a connection pool or a transaction's queries,
// so callers composing multi-entity writes can share one db.WithTx block.
type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Sessions() SessionStore {
	return newSessionStore(s.queries)
}

func (s *Stores) ConversationLog() ConversationLogStore {
	return newConversationLogStore(s.queries)
}

func (s *Stores) Analyses() AnalysisStore {
	return newAnalysisStore(s.queries)
}

func (s *Stores) Feedback() FeedbackStore {
	return newFeedbackStore(s.queries)
}

func (s *Stores) Nuggets() NuggetStore {
	return newNuggetStore(s.queries)
}
