package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createSession = `
INSERT INTO sessions (id, created_at, journey_stage, preferred_language)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING
RETURNING id, created_at, ended_at, terminal_outcome, journey_stage, preferred_language
`

type CreateSessionParams struct {
	ID                string
	CreatedAt         pgtype.Timestamptz
	JourneyStage      string
	PreferredLanguage string
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	row := q.db.QueryRow(ctx, createSession, arg.ID, arg.CreatedAt, arg.JourneyStage, arg.PreferredLanguage)
	var s Session
	err := row.Scan(&s.ID, &s.CreatedAt, &s.EndedAt, &s.TerminalOutcome, &s.JourneyStage, &s.PreferredLanguage)
	return s, err
}

const getSession = `
SELECT id, created_at, ended_at, terminal_outcome, journey_stage, preferred_language
FROM sessions WHERE id = $1
`

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	row := q.db.QueryRow(ctx, getSession, id)
	var s Session
	err := row.Scan(&s.ID, &s.CreatedAt, &s.EndedAt, &s.TerminalOutcome, &s.JourneyStage, &s.PreferredLanguage)
	return s, err
}

const updateJourneyStage = `
UPDATE sessions SET journey_stage = $2 WHERE id = $1
`

func (q *Queries) UpdateJourneyStage(ctx context.Context, id, stage string) error {
	_, err := q.db.Exec(ctx, updateJourneyStage, id, stage)
	return err
}

const endSession = `
UPDATE sessions SET ended_at = $2, terminal_outcome = $3
WHERE id = $1 AND ended_at IS NULL
`

type EndSessionParams struct {
	ID              string
	EndedAt         pgtype.Timestamptz
	TerminalOutcome pgtype.Text
}

func (q *Queries) EndSession(ctx context.Context, arg EndSessionParams) error {
	_, err := q.db.Exec(ctx, endSession, arg.ID, arg.EndedAt, arg.TerminalOutcome)
	return err
}
