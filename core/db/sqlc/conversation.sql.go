package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createConversationLogEntry = `
INSERT INTO conversation_log_entries (id, session_id, timestamp, role, content, language)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, session_id, timestamp, role, content, language
`

type CreateConversationLogEntryParams struct {
	ID        int64
	SessionID string
	Timestamp pgtype.Timestamptz
	Role      string
	Content   string
	Language  string
}

func (q *Queries) CreateConversationLogEntry(ctx context.Context, arg CreateConversationLogEntryParams) (ConversationLogEntry, error) {
	row := q.db.QueryRow(ctx, createConversationLogEntry, arg.ID, arg.SessionID, arg.Timestamp, arg.Role, arg.Content, arg.Language)
	var e ConversationLogEntry
	err := row.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.Role, &e.Content, &e.Language)
	return e, err
}

const listConversationLogEntries = `
SELECT id, session_id, timestamp, role, content, language
FROM conversation_log_entries
WHERE session_id = $1
ORDER BY timestamp ASC, id ASC
`

func (q *Queries) ListConversationLogEntries(ctx context.Context, sessionID string) ([]ConversationLogEntry, error) {
	rows, err := q.db.Query(ctx, listConversationLogEntries, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ConversationLogEntry
	for rows.Next() {
		var e ConversationLogEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.Role, &e.Content, &e.Language); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
