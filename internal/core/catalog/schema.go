package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Initialize creates the catalog schema, search indexes and seed rows in one
// transaction. Idempotent; safe to run on every startup.
func (r *Repository) Initialize(ctx context.Context) error {
	return r.session.WithTx(ctx, func(tx pgx.Tx) error {
		return r.builder.Catalog().EnsureSchema(ctx, tx)
	})
}

// Reset drops every catalog table in one transaction. Destructive; intended
// for development and the administrative command only.
func (r *Repository) Reset(ctx context.Context) error {
	return r.session.WithTx(ctx, func(tx pgx.Tx) error {
		return r.builder.Catalog().ResetSchema(ctx, tx)
	})
}
