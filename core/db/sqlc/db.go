// Package sqlc contains hand-authored query code in the shape sqlc would
// generate: a DBTX interface satisfied by both a pool and a transaction,
// a Queries struct holding one method per statement, and a typed row/params
// struct per query. Keeping the same shape lets internal/store stay
// transaction-agnostic via db.WithTx.
package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so Queries can run against
// either a bare connection pool or an active transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}
