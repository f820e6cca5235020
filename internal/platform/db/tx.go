package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// TxKey carries the active transaction through the request context.
// Repositories prefer it over the pool so a mutation and its audit entry
// commit or roll back together.
const TxKey contextKey = "db_tx"

// WithTx runs fn inside a transaction placed on the context. Any error from
// fn rolls the whole unit back; a nil return commits it.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, TxKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// TxFromContext returns the context-scoped transaction, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(TxKey).(pgx.Tx)
	return tx
}

// Runner abstracts transaction initiation so services stay testable with
// in-memory repositories.
type Runner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PoolRunner runs units of work in real Postgres transactions.
type PoolRunner struct {
	Pool *pgxpool.Pool
}

func (r PoolRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, r.Pool, fn)
}

// PassthroughRunner runs the unit of work without a transaction. Used by
// tests whose mock repositories have no transactional behavior.
type PassthroughRunner struct{}

func (PassthroughRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
