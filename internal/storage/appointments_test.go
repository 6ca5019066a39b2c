package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// fakeQuerier routes QueryRow through a per-test function so the
// conditional completion paths can be exercised without a database.
type fakeQuerier struct {
	queryRow func(sql string) pgx.Row
}

func (f *fakeQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	return f.queryRow(sql)
}

func TestCompleteIfOpenWins(t *testing.T) {
	s := &Store{pool: &fakeQuerier{
		queryRow: func(string) pgx.Row {
			return rowFunc(func(dest ...any) error {
				*(dest[0].(*string)) = "a1"
				*(dest[6].(*model.AppointmentStatus)) = model.AppointmentAttended
				return nil
			})
		},
	}}

	a, err := s.CompleteIfOpen(context.Background(), "a1", nil)
	if err != nil {
		t.Fatalf("CompleteIfOpen: %v", err)
	}
	if a.ID != "a1" || a.Status != model.AppointmentAttended {
		t.Fatalf("unexpected appointment: %+v", a)
	}
}

func TestCompleteIfOpenAlreadyClosed(t *testing.T) {
	// the conditional update matches no row, the follow-up lookup finds
	// one: a second completion must surface as a conflict, never as a
	// fresh win that would record another payment
	s := &Store{pool: &fakeQuerier{
		queryRow: func(sql string) pgx.Row {
			if strings.Contains(sql, "UPDATE") {
				return rowFunc(func(...any) error { return pgx.ErrNoRows })
			}
			return rowFunc(func(dest ...any) error {
				*(dest[0].(*string)) = "a1"
				*(dest[6].(*model.AppointmentStatus)) = model.AppointmentAttended
				return nil
			})
		},
	}}

	if _, err := s.CompleteIfOpen(context.Background(), "a1", nil); !apperr.IsConflict(err) {
		t.Fatalf("expected conflict for an already closed appointment, got %v", err)
	}
}

func TestCompleteIfOpenMissing(t *testing.T) {
	s := &Store{pool: &fakeQuerier{
		queryRow: func(string) pgx.Row {
			return rowFunc(func(...any) error { return pgx.ErrNoRows })
		},
	}}

	if _, err := s.CompleteIfOpen(context.Background(), "nope", nil); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
