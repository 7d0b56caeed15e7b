// Package gormtx adapts gorm.io/gorm to the chain transaction capability.
// GORM already hands transactions out as *gorm.DB, so the handle type is
// the same in and out of a transaction.
package gormtx

import (
	"context"

	"github.com/dcshock/dbchain/chain"
	"gorm.io/gorm"
)

// Adapter implements chain.Adapter[*gorm.DB] by delegating to GORM's own
// Transaction helper (commit on nil, rollback on error or panic).
type Adapter struct{}

// Transaction runs fn against a transactional *gorm.DB scoped to ctx.
func (Adapter) Transaction(ctx context.Context, handle *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	return handle.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

var _ chain.Adapter[*gorm.DB] = Adapter{}
