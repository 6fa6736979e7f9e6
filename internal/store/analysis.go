package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/basegraph/salesassist/core/db/sqlc"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type analysisStore struct {
	queries *sqlc.Queries
}

func newAnalysisStore(queries *sqlc.Queries) AnalysisStore {
	return &analysisStore{queries: queries}
}

func (s *analysisStore) Create(ctx context.Context, entry domain.DeepAnalysisEntry) (*domain.DeepAnalysisEntry, error) {
	params := sqlc.CreateDeepAnalysisEntryParams{
		ID:        entry.ID,
		SessionID: entry.SessionID,
		Timestamp: pgtype.Timestamptz{Time: entry.Timestamp, Valid: true},
		Status:    string(entry.Status),
	}

	if entry.Document != nil {
		doc, err := json.Marshal(entry.Document)
		if err != nil {
			return nil, fmt.Errorf("marshalling opus magnum document: %w", err)
		}
		params.Document = doc
	}

	if entry.ErrorInfo != nil {
		params.ErrorKind = pgtype.Text{String: entry.ErrorInfo.Kind, Valid: true}
		params.ErrorMessage = pgtype.Text{String: entry.ErrorInfo.Message, Valid: true}
		params.FallbackUsed = entry.ErrorInfo.FallbackUsed
		params.PrimaryModel = pgtype.Text{String: entry.ErrorInfo.PrimaryModel, Valid: entry.ErrorInfo.PrimaryModel != ""}
		params.FallbackModel = pgtype.Text{String: entry.ErrorInfo.FallbackModel, Valid: entry.ErrorInfo.FallbackModel != ""}
	}

	row, err := s.queries.CreateDeepAnalysisEntry(ctx, params)
	if err != nil {
		return nil, err
	}
	return toAnalysisModel(row)
}

func (s *analysisStore) GetLatest(ctx context.Context, sessionID string) (*domain.DeepAnalysisEntry, error) {
	row, err := s.queries.GetLatestDeepAnalysisEntry(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toAnalysisModel(row)
}

func (s *analysisStore) ListBySession(ctx context.Context, sessionID string) ([]domain.DeepAnalysisEntry, error) {
	rows, err := s.queries.ListDeepAnalysisEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.DeepAnalysisEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := toAnalysisModel(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func toAnalysisModel(row sqlc.DeepAnalysisEntry) (*domain.DeepAnalysisEntry, error) {
	entry := &domain.DeepAnalysisEntry{
		ID:        row.ID,
		SessionID: row.SessionID,
		Timestamp: row.Timestamp.Time,
		Status:    domain.AnalysisStatus(row.Status),
	}

	if len(row.Document) > 0 {
		var doc domain.OpusMagnumDocument
		if err := json.Unmarshal(row.Document, &doc); err != nil {
			return nil, fmt.Errorf("unmarshalling opus magnum document: %w", err)
		}
		entry.Document = &doc
	}

	if row.ErrorKind.Valid {
		entry.ErrorInfo = &domain.AnalysisError{
			Kind:          row.ErrorKind.String,
			Message:       row.ErrorMessage.String,
			FallbackUsed:  row.FallbackUsed,
			PrimaryModel:  row.PrimaryModel.String,
			FallbackModel: row.FallbackModel.String,
		}
	}

	return entry, nil
}
