package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/parisxmas/oxiforms/internal/db"
)

// Store groups the repositories over one database handle or transaction.
type Store struct {
	db *db.DB
	q  querier

	Users     *UserRepo
	Forms     *FormRepo
	Responses *ResponseRepo
	Prompts   *PromptRepo
}

func NewStore(d *db.DB) *Store {
	return newStore(d, d.DB)
}

func newStore(d *db.DB, q querier) *Store {
	base := repo{q: q, dialect: d.Dialect}
	return &Store{
		db:        d,
		q:         q,
		Users:     &UserRepo{repo: base},
		Forms:     &FormRepo{repo: base},
		Responses: &ResponseRepo{repo: base},
		Prompts:   &PromptRepo{repo: base},
	}
}

// WithTx runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newStore(s.db, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks database reachability.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type repo struct {
	q       querier
	dialect db.Dialect
}

func (r repo) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := r.q.ExecContext(ctx, r.dialect.Rebind(query), args...)
	return res, translateError(err)
}

func (r repo) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.Rebind(query), args...)
	return rows, translateError(err)
}

func (r repo) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.q.QueryRowContext(ctx, r.dialect.Rebind(query), args...)
}
