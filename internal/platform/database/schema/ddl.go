// Copyright (c) 2026 Urban Atelier. All rights reserved.

package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/urbanatelier/catalog/internal/platform/dberr"
)

// Execer is the minimal statement surface the DDL generator needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates the catalog's tables, derived search columns, indexes,
// and seed rows. Every statement uses create-if-absent semantics, and seeds
// insert with ON CONFLICT DO NOTHING, so the call is idempotent and safe to
// run on every startup.
func (c *Catalog) EnsureSchema(ctx context.Context, q Execer) error {
	if _, err := q.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS pg_trgm;"); err != nil {
		return dberr.Wrap(err, "create extension pg_trgm")
	}

	for _, t := range c.tables {
		if _, err := q.Exec(ctx, t.CreateSQL()); err != nil {
			return dberr.Wrap(err, "create table "+t.Name)
		}
		for _, stmt := range t.SearchIndexSQL() {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return dberr.Wrap(err, "create search index for "+t.Name)
			}
		}
	}

	for _, seed := range Seeds {
		if err := c.applySeed(ctx, q, seed); err != nil {
			return err
		}
	}

	return nil
}

// ResetSchema drops every catalog table in reverse dependency order with
// CASCADE. Missing tables are not an error.
func (c *Catalog) ResetSchema(ctx context.Context, q Execer) error {
	for i := len(c.tables) - 1; i >= 0; i-- {
		t := c.tables[i]
		if _, err := q.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", t.Name)); err != nil {
			return dberr.Wrap(err, "drop table "+t.Name)
		}
	}
	return nil
}

// CreateSQL renders the CREATE TABLE IF NOT EXISTS statement for the table.
func (t *Table) CreateSQL() string {
	fkByColumn := make(map[string]ForeignKey, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		fkByColumn[fk.Column] = fk
	}

	parts := make([]string, 0, len(t.Columns)+len(t.Unique)+1)
	for _, col := range t.Columns {
		def := col.Name + " " + col.Type
		if col.NotNull {
			def += " NOT NULL"
		}
		if col.Default != "" {
			def += " DEFAULT " + col.Default
		}
		if fk, ok := fkByColumn[col.Name]; ok {
			def += fmt.Sprintf(" REFERENCES %s(%s) ON DELETE CASCADE ON UPDATE CASCADE",
				fk.RefTable, fk.RefColumn)
		}
		parts = append(parts, def)
	}

	for _, group := range t.Unique {
		parts = append(parts, "UNIQUE("+strings.Join(group, ", ")+")")
	}
	if len(t.PrimaryKey) > 0 {
		parts = append(parts, "PRIMARY KEY("+strings.Join(t.PrimaryKey, ", ")+")")
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s(%s);", t.Name, strings.Join(parts, ", "))
}

// SearchIndexSQL renders the statements that attach the derived tsvector
// column and its generalized inverted index, plus a backfill for rows that
// predate the column. All are no-ops when already applied.
func (t *Table) SearchIndexSQL() []string {
	if !t.Searchable() {
		return nil
	}
	return []string{
		fmt.Sprintf("ALTER TABLE IF EXISTS %s ADD COLUMN IF NOT EXISTS %s tsvector;",
			t.Name, SearchIndexColumn),
		fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL;",
			t.Name, SearchIndexColumn, t.SearchVectorExpr(), SearchIndexColumn),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_search_idx ON %s USING GIN(%s);",
			t.Name, t.Name, SearchIndexColumn),
	}
}

// applySeed inserts reference rows idempotently. Values are bound as
// parameters; only identifiers from the (trusted) seed declaration are
// templated into the statement.
func (c *Catalog) applySeed(ctx context.Context, q Execer, seed Seed) error {
	t, err := c.Table(seed.Table)
	if err != nil {
		return err
	}

	for _, row := range seed.Rows {
		columns := make([]string, 0, len(row))
		for name := range row {
			if !t.HasColumn(name) {
				return fmt.Errorf("seed for %s references unknown column %q", t.Name, name)
			}
			columns = append(columns, name)
		}
		sort.Strings(columns)

		placeholders := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, name := range columns {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = row[name]
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING;",
			t.Name,
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "),
			strings.Join(seed.Conflict, ", "),
		)
		if _, err := q.Exec(ctx, stmt, args...); err != nil {
			return dberr.Wrap(err, "seed "+t.Name)
		}
	}
	return nil
}
