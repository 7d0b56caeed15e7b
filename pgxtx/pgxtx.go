// Package pgxtx adapts jackc/pgx/v5 to the chain transaction capability.
// Pipelines use the DBTX interface as their handle type so step bodies run
// identically against a *pgx.Conn, a *pgxpool.Pool, or the pgx.Tx the
// adapter opens (pgx transactions nest via savepoints).
package pgxtx

import (
	"context"
	"fmt"

	"github.com/dcshock/dbchain/chain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by pgx connections, pools, and
// transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Adapter implements chain.Adapter[DBTX] over pgx transactions.
type Adapter struct{}

// Transaction begins a transaction on the handle (which must support
// Begin: conns, pools, and transactions all do), runs fn against the
// pgx.Tx, commits iff fn returns nil, and rolls back otherwise.
func (Adapter) Transaction(ctx context.Context, handle DBTX, fn func(ctx context.Context, tx DBTX) error) error {
	b, ok := handle.(beginner)
	if !ok {
		return fmt.Errorf("pgxtx: handle %T cannot begin a transaction", handle)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgxtx: begin: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

var _ chain.Adapter[DBTX] = Adapter{}
