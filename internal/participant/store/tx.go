package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	txcontext "aakar/pkg/platform/tx"
)

// serializationFailure is the PostgreSQL SQLSTATE for serializable conflicts.
const serializationFailure = "40001"

// maxTxAttempts bounds retries of serialization failures. Webhook redelivery
// covers anything that still fails after this.
const maxTxAttempts = 3

// PostgresTx runs functions inside serializable transactions. Serializable
// isolation is what makes the duplicate-order check and the capacity check
// atomic against concurrent webhook deliveries for the same phone number;
// conflicting transactions fail with 40001 and are retried.
type PostgresTx struct {
	db *sql.DB
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

// RunInTx executes fn inside a serializable transaction, retrying
// serialization failures. The key parameter exists for the in-memory
// implementation's lock sharding and is unused here.
func (t *PostgresTx) RunInTx(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = t.runOnce(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (t *PostgresTx) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == serializationFailure
}
