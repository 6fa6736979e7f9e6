package store

import (
	"context"

	"github.com/basegraph/salesassist/core/db/sqlc"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type feedbackStore struct {
	queries *sqlc.Queries
}

func newFeedbackStore(queries *sqlc.Queries) FeedbackStore {
	return &feedbackStore{queries: queries}
}

func (s *feedbackStore) Create(ctx context.Context, entry domain.FeedbackEntry) (*domain.FeedbackEntry, error) {
	refined := pgtype.Text{}
	if entry.RefinedSuggestion != nil {
		refined = pgtype.Text{String: *entry.RefinedSuggestion, Valid: true}
	}

	row, err := s.queries.CreateFeedbackEntry(ctx, sqlc.CreateFeedbackEntryParams{
		ID:                  entry.ID,
		SessionID:           entry.SessionID,
		CritiquedEntryID:    entry.CritiquedEntryID,
		Polarity:            string(entry.Polarity),
		SellerNote:          entry.SellerNote,
		CritiquedSuggestion: entry.CritiquedSuggestion,
		SellerComment:       entry.SellerComment,
		Language:            string(entry.Language),
		RefinedSuggestion:   refined,
		Timestamp:           pgtype.Timestamptz{Time: entry.Timestamp, Valid: true},
	})
	if err != nil {
		return nil, err
	}
	return toFeedbackModel(row), nil
}

func (s *feedbackStore) ListBySession(ctx context.Context, sessionID string) ([]domain.FeedbackEntry, error) {
	rows, err := s.queries.ListFeedbackEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.FeedbackEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *toFeedbackModel(row))
	}
	return entries, nil
}

func toFeedbackModel(row sqlc.FeedbackEntry) *domain.FeedbackEntry {
	entry := &domain.FeedbackEntry{
		ID:                  row.ID,
		SessionID:           row.SessionID,
		CritiquedEntryID:    row.CritiquedEntryID,
		Polarity:            domain.FeedbackPolarity(row.Polarity),
		SellerNote:          row.SellerNote,
		CritiquedSuggestion: row.CritiquedSuggestion,
		SellerComment:       row.SellerComment,
		Language:            domain.Language(row.Language),
		Timestamp:           row.Timestamp.Time,
	}
	if row.RefinedSuggestion.Valid {
		entry.RefinedSuggestion = &row.RefinedSuggestion.String
	}
	return entry
}
