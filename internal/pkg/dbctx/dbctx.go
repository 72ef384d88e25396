package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos fall back to their own handle when Tx is nil.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// From is a convenience constructor for the common no-transaction case.
func From(ctx context.Context) Context {
	return Context{Ctx: ctx}
}
