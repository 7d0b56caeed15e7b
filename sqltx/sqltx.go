// Package sqltx adapts database/sql to the chain transaction capability.
// Pipelines use the Querier interface as their handle type so step bodies
// run identically against a *sql.DB and the *sql.Tx the adapter opens.
package sqltx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dcshock/dbchain/chain"
)

// Querier is the query surface shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Adapter implements chain.Adapter[Querier] over database/sql transactions.
type Adapter struct {
	// TxOptions is passed to BeginTx; nil means driver defaults.
	TxOptions *sql.TxOptions
}

// Transaction begins a transaction on the handle (which must be a *sql.DB),
// runs fn against the *sql.Tx, commits iff fn returns nil, and rolls back
// otherwise.
func (a Adapter) Transaction(ctx context.Context, handle Querier, fn func(ctx context.Context, tx Querier) error) error {
	db, ok := handle.(*sql.DB)
	if !ok {
		return fmt.Errorf("sqltx: handle must be *sql.DB to begin a transaction, got %T", handle)
	}
	tx, err := db.BeginTx(ctx, a.TxOptions)
	if err != nil {
		return fmt.Errorf("sqltx: begin: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

var _ chain.Adapter[Querier] = Adapter{}
