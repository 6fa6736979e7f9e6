package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createDeepAnalysisEntry = `
INSERT INTO deep_analysis_entries
	(id, session_id, timestamp, status, document, error_kind, error_message, fallback_used, primary_model, fallback_model)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, session_id, timestamp, status, document, error_kind, error_message, fallback_used, primary_model, fallback_model
`

type CreateDeepAnalysisEntryParams struct {
	ID            int64
	SessionID     string
	Timestamp     pgtype.Timestamptz
	Status        string
	Document      []byte
	ErrorKind     pgtype.Text
	ErrorMessage  pgtype.Text
	FallbackUsed  bool
	PrimaryModel  pgtype.Text
	FallbackModel pgtype.Text
}

func (q *Queries) CreateDeepAnalysisEntry(ctx context.Context, arg CreateDeepAnalysisEntryParams) (DeepAnalysisEntry, error) {
	row := q.db.QueryRow(ctx, createDeepAnalysisEntry,
		arg.ID, arg.SessionID, arg.Timestamp, arg.Status, arg.Document,
		arg.ErrorKind, arg.ErrorMessage, arg.FallbackUsed, arg.PrimaryModel, arg.FallbackModel)
	var e DeepAnalysisEntry
	err := row.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.Status, &e.Document,
		&e.ErrorKind, &e.ErrorMessage, &e.FallbackUsed, &e.PrimaryModel, &e.FallbackModel)
	return e, err
}

const getLatestDeepAnalysisEntry = `
SELECT id, session_id, timestamp, status, document, error_kind, error_message, fallback_used, primary_model, fallback_model
FROM deep_analysis_entries
WHERE session_id = $1
ORDER BY timestamp DESC, id DESC
LIMIT 1
`

func (q *Queries) GetLatestDeepAnalysisEntry(ctx context.Context, sessionID string) (DeepAnalysisEntry, error) {
	row := q.db.QueryRow(ctx, getLatestDeepAnalysisEntry, sessionID)
	var e DeepAnalysisEntry
	err := row.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.Status, &e.Document,
		&e.ErrorKind, &e.ErrorMessage, &e.FallbackUsed, &e.PrimaryModel, &e.FallbackModel)
	return e, err
}

const listDeepAnalysisEntries = `
SELECT id, session_id, timestamp, status, document, error_kind, error_message, fallback_used, primary_model, fallback_model
FROM deep_analysis_entries
WHERE session_id = $1
ORDER BY timestamp ASC, id ASC
`

func (q *Queries) ListDeepAnalysisEntries(ctx context.Context, sessionID string) ([]DeepAnalysisEntry, error) {
	rows, err := q.db.Query(ctx, listDeepAnalysisEntries, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DeepAnalysisEntry
	for rows.Next() {
		var e DeepAnalysisEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Timestamp, &e.Status, &e.Document,
			&e.ErrorKind, &e.ErrorMessage, &e.FallbackUsed, &e.PrimaryModel, &e.FallbackModel); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
