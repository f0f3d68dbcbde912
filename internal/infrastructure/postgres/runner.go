package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Runner implements the unit of work with a pgx transaction carried in the
// context. A Transact call inside an open unit joins it; repositories
// route their statements through the transaction automatically.
type Runner struct {
	db *DB
}

func NewRunner(db *DB) *Runner { return &Runner{db: db} }

func (r *Runner) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}
