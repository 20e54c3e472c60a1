package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxFunc is executed inside a transaction.
type TxFunc func(pgx.Tx) error

// WithTransaction wraps fn in a transaction. Rolls back on error or panic,
// commits otherwise.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(tx)
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ErrWriteConflict signals that a versioned row changed between the snapshot
// read and the conditional write. Retryable.
var ErrWriteConflict = errors.New("write conflict")

// DefaultOptimisticAttempts bounds transparent conflict retries.
const DefaultOptimisticAttempts = 3

// WithOptimisticRetry re-runs fn while it fails with ErrWriteConflict, up to
// attempts times. fn must be a pure read-validate-write closure: every attempt
// re-reads its snapshot, so re-execution is safe. Any other error stops the
// loop immediately.
func WithOptimisticRetry(ctx context.Context, attempts int, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = DefaultOptimisticAttempts
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if !errors.Is(err, ErrWriteConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("optimistic transaction gave up after %d attempts: %w", attempts, err)
}
