// Copyright (c) 2026 Urban Atelier. All rights reserved.

package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
)

// Session owns the database connection and the transaction boundary for one
// logical catalog session.
//
// # Lifecycle
//
// Constructed once at startup around a pool, closed at shutdown. Repository
// operations run either directly on the pool (reads) or inside [Session.WithTx]
// (writes), which gives each mutating operation exactly one atomic
// transaction.
type Session struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSession wraps an established pool.
func NewSession(pool *pgxpool.Pool, logger *slog.Logger) *Session {
	return &Session{pool: pool, logger: logger}
}

// Pool exposes the underlying pool for read-only statements that do not need
// a transaction of their own.
func (s *Session) Pool() *pgxpool.Pool { return s.pool }

// WithTx runs fn inside a transaction: begin, fn, commit — with rollback on
// any error from fn.
//
// Failure semantics follow the engine taxonomy: begin/commit/rollback
// failures surface as TRANSACTION_ERROR, while fn's own error is returned
// as-is (with a failed rollback attached as context). After a
// TRANSACTION_ERROR the session state is suspect and callers should treat
// further operations as best-effort until reconnection.
func (s *Session) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Transaction("begin", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
			return apperr.Transaction("rollback", errors.Join(err, rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Transaction("commit", err)
	}
	return nil
}

// Close releases the underlying pool. The session is unusable afterwards.
func (s *Session) Close() {
	s.pool.Close()
}
