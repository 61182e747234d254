// Copyright (c) 2026 Urban Atelier. All rights reserved.

// Package dberr bridges low-level pgx errors into the application taxonomy.
//
// Stores call [Wrap] on every execution error and [Fetch] on every scan or
// row-iteration error, so the rest of the engine only ever sees [apperr]
// values.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
)

// Wrap classifies a statement-execution error.
//
// Mapping:
//   - pgx.ErrNoRows            -> NOT_FOUND
//   - unique violation (23505) -> CONFLICT
//   - foreign key (23503)      -> CONFLICT (endpoint of the association is gone)
//   - anything else            -> QUERY_ERROR
//
// An error that is already an [*apperr.AppError] passes through unchanged so
// double-wrapping cannot bury the original code.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}
	if ae := apperr.As(err); ae != nil {
		return ae
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(action)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict("duplicate record: "+action, err)
		case pgerrcode.ForeignKeyViolation:
			return apperr.Conflict("referenced record does not exist: "+action, err)
		}
	}

	return apperr.Query(action, err)
}

// Fetch classifies a result-reading error (scan, Values, rows.Err).
func Fetch(err error, action string) error {
	if err == nil {
		return nil
	}
	if ae := apperr.As(err); ae != nil {
		return ae
	}
	return apperr.Fetch(action, err)
}
