package store

import (
	"context"
	"errors"
	"time"

	"github.com/basegraph/salesassist/core/db/sqlc"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type sessionStore struct {
	queries *sqlc.Queries
}

func newSessionStore(queries *sqlc.Queries) SessionStore {
	return &sessionStore{queries: queries}
}

func (s *sessionStore) Create(ctx context.Context, id string, createdAt time.Time, stage domain.JourneyStage, lang domain.Language) (*domain.Session, error) {
	row, err := s.queries.CreateSession(ctx, sqlc.CreateSessionParams{
		ID:                id,
		CreatedAt:         pgtype.Timestamptz{Time: createdAt, Valid: true},
		JourneyStage:      string(stage),
		PreferredLanguage: string(lang),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// ON CONFLICT DO NOTHING with no RETURNING row means the id
			// already existed; treat the pre-existing row as the result.
			return s.GetByID(ctx, id)
		}
		return nil, err
	}
	return toSessionModel(row), nil
}

func (s *sessionStore) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row, err := s.queries.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toSessionModel(row), nil
}

func (s *sessionStore) UpdateJourneyStage(ctx context.Context, id string, stage domain.JourneyStage) error {
	return s.queries.UpdateJourneyStage(ctx, id, string(stage))
}

func (s *sessionStore) End(ctx context.Context, id string, outcome domain.TerminalOutcome, endedAt time.Time) error {
	return s.queries.EndSession(ctx, sqlc.EndSessionParams{
		ID:              id,
		EndedAt:         pgtype.Timestamptz{Time: endedAt, Valid: true},
		TerminalOutcome: pgtype.Text{String: string(outcome), Valid: true},
	})
}

func toSessionModel(row sqlc.Session) *domain.Session {
	sess := &domain.Session{
		ID:                row.ID,
		CreatedAt:         row.CreatedAt.Time,
		JourneyStage:      domain.JourneyStage(row.JourneyStage),
		PreferredLanguage: domain.Language(row.PreferredLanguage),
	}
	if row.EndedAt.Valid {
		t := row.EndedAt.Time
		sess.EndedAt = &t
	}
	if row.TerminalOutcome.Valid {
		outcome := domain.TerminalOutcome(row.TerminalOutcome.String)
		sess.TerminalOutcome = &outcome
	}
	return sess
}
