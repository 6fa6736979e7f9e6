package store

import (
	"context"
	"time"

	"github.com/basegraph/salesassist/core/db/sqlc"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type conversationLogStore struct {
	queries *sqlc.Queries
}

func newConversationLogStore(queries *sqlc.Queries) ConversationLogStore {
	return &conversationLogStore{queries: queries}
}

func (s *conversationLogStore) Append(ctx context.Context, id int64, sessionID string, at time.Time, role domain.ConversationRole, content string, lang domain.Language) (*domain.ConversationLogEntry, error) {
	row, err := s.queries.CreateConversationLogEntry(ctx, sqlc.CreateConversationLogEntryParams{
		ID:        id,
		SessionID: sessionID,
		Timestamp: pgtype.Timestamptz{Time: at, Valid: true},
		Role:      string(role),
		Content:   content,
		Language:  string(lang),
	})
	if err != nil {
		return nil, err
	}
	return toConversationLogModel(row), nil
}

func (s *conversationLogStore) ListBySession(ctx context.Context, sessionID string) ([]domain.ConversationLogEntry, error) {
	rows, err := s.queries.ListConversationLogEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.ConversationLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *toConversationLogModel(row))
	}
	return entries, nil
}

func toConversationLogModel(row sqlc.ConversationLogEntry) *domain.ConversationLogEntry {
	return &domain.ConversationLogEntry{
		ID:        row.ID,
		SessionID: row.SessionID,
		Timestamp: row.Timestamp.Time,
		Role:      domain.ConversationRole(row.Role),
		Content:   row.Content,
		Language:  domain.Language(row.Language),
	}
}
