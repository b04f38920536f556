package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
// The function handles rollbacks in case of panic and logs appropriate information.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			txErr := tx.Rollback()
			if txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	err = fn(ctx, tx)
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	err = tx.Commit()
	if err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("transaction committed successfully")
	return nil
}

// Stores groups the stores an atomic unit of work may touch.
type Stores struct {
	Cards       CardStore
	Topics      TopicStore
	CardStates  CardStateStore
	Reviews     ReviewStore
	TopicStates TopicStateStore
}

// WithTx binds every store to tx.
func (s Stores) WithTx(tx *sql.Tx) Stores {
	return Stores{
		Cards:       s.Cards.WithTx(tx),
		Topics:      s.Topics.WithTx(tx),
		CardStates:  s.CardStates.WithTx(tx),
		Reviews:     s.Reviews.WithTx(tx),
		TopicStates: s.TopicStates.WithTx(tx),
	}
}

// TransactFn receives stores scoped to the running unit of work.
type TransactFn func(ctx context.Context, stores Stores) error

// Transactor runs a function atomically against a consistent set of stores.
type Transactor interface {
	Transact(ctx context.Context, fn TransactFn) error
}

// SQLTransactor implements Transactor on top of RunInTransaction.
type SQLTransactor struct {
	db     *sql.DB
	stores Stores
}

var _ Transactor = (*SQLTransactor)(nil)

// NewSQLTransactor returns a Transactor whose units of work are SQL transactions on db.
func NewSQLTransactor(db *sql.DB, stores Stores) *SQLTransactor {
	if db == nil {
		panic("db cannot be nil")
	}
	return &SQLTransactor{db: db, stores: stores}
}

// Transact implements Transactor.
func (t *SQLTransactor) Transact(ctx context.Context, fn TransactFn) error {
	return RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, t.stores.WithTx(tx))
	})
}
