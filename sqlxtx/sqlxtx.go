// Package sqlxtx adapts jmoiron/sqlx to the chain transaction capability.
// Pipelines use sqlx.ExtContext as their handle type so step bodies run
// identically against a *sqlx.DB and the *sqlx.Tx the adapter opens.
package sqlxtx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dcshock/dbchain/chain"
	"github.com/jmoiron/sqlx"
)

// Adapter implements chain.Adapter[sqlx.ExtContext] over sqlx transactions.
type Adapter struct {
	// TxOptions is passed to BeginTxx; nil means driver defaults.
	TxOptions *sql.TxOptions
}

// Transaction begins a transaction on the handle (which must be a
// *sqlx.DB), runs fn against the *sqlx.Tx, commits iff fn returns nil, and
// rolls back otherwise.
func (a Adapter) Transaction(ctx context.Context, handle sqlx.ExtContext, fn func(ctx context.Context, tx sqlx.ExtContext) error) error {
	db, ok := handle.(*sqlx.DB)
	if !ok {
		return fmt.Errorf("sqlxtx: handle must be *sqlx.DB to begin a transaction, got %T", handle)
	}
	tx, err := db.BeginTxx(ctx, a.TxOptions)
	if err != nil {
		return fmt.Errorf("sqlxtx: begin: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

var _ chain.Adapter[sqlx.ExtContext] = Adapter{}
