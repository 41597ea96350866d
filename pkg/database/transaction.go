package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type TxContextKey string

const txKey = TxContextKey("tx-context-key")

type Tx interface {
	IsOpen() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Querier is the subset of sqlx shared by the pool and a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// QuerierFrom returns the open transaction carried by ctx, or db when there is none.
func QuerierFrom(ctx context.Context, db DB) Querier {
	if tx, ok := ctx.Value(txKey).(*Transaction); ok && tx != nil && tx.IsOpen() {
		return tx.Tx
	}
	return db
}

// Transaction wraps sqlx.Tx. Only the caller that began the transaction commits or rolls
// it back; nested callers that joined it through the context get no-op Commit and Rollback.
type Transaction struct {
	*sqlx.Tx
	logger   ectologger.Logger
	isClosed *bool
	owner    bool
}

func NewTx(tx *sqlx.Tx, logger ectologger.Logger) *Transaction {
	closed := false
	return &Transaction{
		Tx:       tx,
		logger:   logger,
		isClosed: &closed,
		owner:    true,
	}
}

// GetTx joins the transaction carried by ctx or begins a new one and stores it in the
// returned context.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if ctxTx, ok := ctx.Value(txKey).(*Transaction); ok && ctxTx != nil && ctxTx.IsOpen() {
		return ctx, ctxTx.joined(), nil
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Errorf("error while beginning transaction")
		return ctx, nil, fmt.Errorf("error while beginning transaction")
	}

	newTx := NewTx(tx, logger)
	ctx = context.WithValue(ctx, txKey, newTx)
	return ctx, newTx, nil
}

func (t *Transaction) joined() *Transaction {
	return &Transaction{
		Tx:       t.Tx,
		logger:   t.logger,
		isClosed: t.isClosed,
		owner:    false,
	}
}

func (t *Transaction) IsOpen() bool {
	return !*t.isClosed
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if *t.isClosed || !t.owner {
		return nil
	}

	if err := t.Tx.Rollback(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while rolling back transaction")
		return fmt.Errorf("error while rolling back transaction")
	}

	*t.isClosed = true
	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if *t.isClosed || !t.owner {
		return nil
	}

	if err := t.Tx.Commit(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while committing transaction")
		return fmt.Errorf("error while committing transaction")
	}

	*t.isClosed = true
	return nil
}
