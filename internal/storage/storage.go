// Package storage is the Postgres persistence layer. Every list query
// accepts a visibility predicate so isolation rules are applied in SQL,
// not in handler code after the fact.
package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/libs/db"
)

// errNoRows lets UPDATE paths report a missing row the same way
// QueryRow does.
var errNoRows = pgx.ErrNoRows

// querier is the slice of the pool the store actually uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool querier
}

func New(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// wrap translates driver errors into the app taxonomy.
func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, what+" not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Wrap(apperr.KindConflict, what+" already exists", err)
	}
	return err
}
