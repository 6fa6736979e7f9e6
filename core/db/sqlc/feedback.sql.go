package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createFeedbackEntry = `
INSERT INTO feedback_entries
	(id, session_id, critiqued_entry_id, polarity, seller_note, critiqued_suggestion, seller_comment, language, refined_suggestion, timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, session_id, critiqued_entry_id, polarity, seller_note, critiqued_suggestion, seller_comment, language, refined_suggestion, timestamp
`

type CreateFeedbackEntryParams struct {
	ID                  int64
	SessionID           string
	CritiquedEntryID    int64
	Polarity            string
	SellerNote          string
	CritiquedSuggestion string
	SellerComment       string
	Language            string
	RefinedSuggestion   pgtype.Text
	Timestamp           pgtype.Timestamptz
}

func (q *Queries) CreateFeedbackEntry(ctx context.Context, arg CreateFeedbackEntryParams) (FeedbackEntry, error) {
	row := q.db.QueryRow(ctx, createFeedbackEntry,
		arg.ID, arg.SessionID, arg.CritiquedEntryID, arg.Polarity, arg.SellerNote,
		arg.CritiquedSuggestion, arg.SellerComment, arg.Language, arg.RefinedSuggestion, arg.Timestamp)
	var f FeedbackEntry
	err := row.Scan(&f.ID, &f.SessionID, &f.CritiquedEntryID, &f.Polarity, &f.SellerNote,
		&f.CritiquedSuggestion, &f.SellerComment, &f.Language, &f.RefinedSuggestion, &f.Timestamp)
	return f, err
}

const listFeedbackEntries = `
SELECT id, session_id, critiqued_entry_id, polarity, seller_note, critiqued_suggestion, seller_comment, language, refined_suggestion, timestamp
FROM feedback_entries
WHERE session_id = $1
ORDER BY timestamp ASC, id ASC
`

func (q *Queries) ListFeedbackEntries(ctx context.Context, sessionID string) ([]FeedbackEntry, error) {
	rows, err := q.db.Query(ctx, listFeedbackEntries, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []FeedbackEntry
	for rows.Next() {
		var f FeedbackEntry
		if err := rows.Scan(&f.ID, &f.SessionID, &f.CritiquedEntryID, &f.Polarity, &f.SellerNote,
			&f.CritiquedSuggestion, &f.SellerComment, &f.Language, &f.RefinedSuggestion, &f.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}
