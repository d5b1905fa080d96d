package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "pgx_tx"

// TxFromContext retrieves the transaction carried by ctx, or nil when the
// call is not running inside InTx.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// Runner executes a function inside a single atomic unit. Repositories pick
// the transaction up from the context, so every repository call made within
// fn shares one transaction.
type Runner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PoolRunner is the pgx-backed Runner used in production.
type PoolRunner struct {
	pool *pgxpool.Pool
}

func NewPoolRunner(pool *pgxpool.Pool) *PoolRunner {
	return &PoolRunner{pool: pool}
}

// InTx begins a transaction, stores it in the context, runs fn, and commits.
// Any error from fn rolls the transaction back and is returned unchanged so
// sentinel errors survive the transaction boundary.
func (r *PoolRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		// Already inside a transaction: join it.
		return fn(ctx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
