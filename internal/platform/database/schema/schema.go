// Copyright (c) 2026 Urban Atelier. All rights reserved.

/*
Package schema is the single source of truth for the catalog's relational
shape.

Every table is declared once as typed metadata — columns, semantic types,
nullability, uniqueness, primary keys, cascading foreign keys, and the
weighted text columns that feed the derived full-text index. The query
builder validates every identifier against this catalog before a statement
touches the connection, and the DDL generator derives EnsureSchema /
ResetSchema from the same declarations, so the two can never drift apart.

The derived tsvector column ([SearchIndexColumn]) is an implementation
detail: it is writable only by the search indexer and is never part of a
table's public column list.
*/
package schema

import (
	"fmt"
	"strings"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
)

// SearchIndexColumn is the name of the derived tsvector column added to
// every searchable table.
const SearchIndexColumn = "search_index"

// Column declares one table column.
type Column struct {
	Name    string
	Type    string // SQL type, e.g. "VARCHAR(10)", "SERIAL", "JSONB"
	NotNull bool
	Default string // raw SQL default expression, empty for none
}

// ForeignKey declares a reference to another table. All catalog references
// cascade on delete and update: association rows are meaningless without
// both endpoints.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// SearchColumn names a text column feeding the derived full-text index and
// the ts_rank weight label ('A' highest .. 'D' lowest) it carries.
type SearchColumn struct {
	Name   string
	Weight byte
}

// Table is the full declaration of one catalog table.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	Unique      [][]string
	ForeignKeys []ForeignKey
	Search      []SearchColumn
}

// ColumnNames returns the declared column names in declaration order. The
// derived search column is deliberately absent.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a declared column of the table.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Searchable reports whether the table carries a derived full-text index.
func (t *Table) Searchable() bool { return len(t.Search) > 0 }

// AllowedColumn reports whether name may appear in a query against this
/// table: any declared column, plus the derived search column when the table
// is searchable.
func (t *Table) AllowedColumn(name string) bool {
	if name == SearchIndexColumn {
		return t.Searchable()
	}
	return t.HasColumn(name)
}

// SearchVectorExpr builds the SQL expression that recomputes the derived
// index for a row: the weighted concatenation of the declared text columns,
// nulls treated as empty strings.
//
// It is shared by the DDL backfill and the search indexer so index-time and
// query-time tokenization can never disagree.
func (t *Table) SearchVectorExpr() string {
	if !t.Searchable() {
		return ""
	}
	parts := make([]string, len(t.Search))
	for i, sc := range t.Search {
		parts[i] = fmt.Sprintf(
			"setweight(to_tsvector('english', coalesce(%s::text, '')), '%c')",
			sc.Name, sc.Weight,
		)
	}
	return strings.Join(parts, " || ")
}

// Catalog is the registry of all declared tables, ordered so that referenced
// tables precede their dependents.
type Catalog struct {
	tables []*Table
	index  map[string]*Table
}

// NewCatalog builds a registry over the given tables. Declaration order must
// satisfy foreign-key dependencies (used by EnsureSchema and, reversed, by
// ResetSchema).
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{tables: tables, index: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		c.index[t.Name] = t
	}
	return c
}

// Table resolves a table by name, failing with a SCHEMA_VALIDATION error for
// anything undeclared — before the request can reach the connection.
func (c *Catalog) Table(name string) (*Table, error) {
	t, ok := c.index[name]
	if !ok {
		return nil, apperr.SchemaValidation("unknown table %q", name)
	}
	return t, nil
}

// Tables returns the registry in dependency order.
func (c *Catalog) Tables() []*Table { return c.tables }
