// Copyright (c) 2026 Urban Atelier. All rights reserved.

/*
Package sqlbuild is the generic, schema-driven statement builder.

It turns structured requests into single parameterized statements over any
table the schema catalog declares: SELECT with the full clause set (columns,
distinct, where, group, having, order, limit, offset), single-row INSERT with
generated-key return, SET-list UPDATE, and DELETE.

Two invariants hold for every statement:

  - Values from caller input are always bound as $n parameters, never
    formatted into the SQL text.
  - Identifiers are validated against the schema catalog before execution;
    an unknown table or column fails with SCHEMA_VALIDATION without touching
    the connection.

Result rows map positionally back into named fields: the same ordered column
list that built the SELECT clause keys the returned [Row] values.

The builder executes statements but never manages transactions — pass a
pgx.Tx for transactional work or the pool for plain reads.
*/
package sqlbuild

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/dberr"
)

// Row is one result or input row: field name → value.
type Row map[string]any

// Querier is the statement surface shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Statement is a built, parameterized statement plus the ordered field names
// used to map result tuples back into a [Row].
type Statement struct {
	SQL    string
	Args   []any
	Fields []string
}

// Expr is a trusted computed SELECT expression (e.g. a rank). The SQL text
// comes from inside the engine, never from caller input; each "$?" marker is
// replaced with the next bound argument.
type Expr struct {
	Alias string
	SQL   string
	Args  []any
}

// Order is one ORDER BY term. Column may name a table column or the alias of
// a requested [Expr].
type Order struct {
	Column string
	Desc   bool
}

// SelectRequest describes a structured read.
type SelectRequest struct {
	// Columns to project; empty means every declared column of the table.
	Columns []string
	// Exprs are computed columns appended after Columns.
	Exprs    []Expr
	Distinct bool
	Where    Predicate
	GroupBy  []string
	Having   Predicate
	Order    []Order
	// Limit and Offset are ignored when zero.
	Limit  int
	Offset int
}

// Builder builds and executes statements validated against a schema catalog.
type Builder struct {
	catalog *schema.Catalog
}

// New constructs a builder over the given catalog.
func New(catalog *schema.Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// Catalog exposes the schema registry the builder validates against.
func (b *Builder) Catalog() *schema.Catalog { return b.catalog }

// # SELECT

// BuildSelect renders a SELECT without executing it.
func (b *Builder) BuildSelect(table string, req SelectRequest) (Statement, error) {
	t, err := b.catalog.Table(table)
	if err != nil {
		return Statement{}, err
	}

	fields := req.Columns
	if len(fields) == 0 {
		fields = t.ColumnNames()
	} else {
		for _, c := range fields {
			if err := checkColumn(t, c); err != nil {
				return Statement{}, err
			}
		}
	}

	bind := &binder{}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if req.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(fields, ", "))

	aliases := make(map[string]bool, len(req.Exprs))
	resultFields := append([]string(nil), fields...)
	for _, expr := range req.Exprs {
		rendered, err := renderExpr(expr, bind)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(", ")
		sb.WriteString(rendered)
		sb.WriteString(" AS ")
		sb.WriteString(expr.Alias)
		aliases[expr.Alias] = true
		resultFields = append(resultFields, expr.Alias)
	}

	sb.WriteString(" FROM ")
	sb.WriteString(t.Name)

	if req.Where != nil {
		clause, err := req.Where.render(t, bind)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(clause)
	}

	if len(req.GroupBy) > 0 {
		for _, c := range req.GroupBy {
			if err := checkColumn(t, c); err != nil {
				return Statement{}, err
			}
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(req.GroupBy, ", "))
	}

	if req.Having != nil {
		clause, err := req.Having.render(t, bind)
		if err != nil {
			return Statement{}, err
		}
		sb.WriteString(" HAVING ")
		sb.WriteString(clause)
	}

	if len(req.Order) > 0 {
		terms := make([]string, len(req.Order))
		for i, o := range req.Order {
			if !aliases[o.Column] {
				if err := checkColumn(t, o.Column); err != nil {
					return Statement{}, err
				}
			}
			terms[i] = o.Column
			if o.Desc {
				terms[i] += " DESC"
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	if req.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(bind.bind(req.Limit))
	}
	if req.Offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(bind.bind(req.Offset))
	}

	return Statement{SQL: sb.String(), Args: bind.args, Fields: resultFields}, nil
}

// Select builds and executes a read, mapping each result tuple into a [Row]
// keyed by the same ordered field list that built the column clause.
func (b *Builder) Select(ctx context.Context, q Querier, table string, req SelectRequest) ([]Row, error) {
	st, err := b.BuildSelect(table, req)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "select "+table)
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, dberr.Fetch(err, "select "+table)
		}
		row := make(Row, len(st.Fields))
		for i, field := range st.Fields {
			row[field] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Fetch(err, "select "+table)
	}
	return out, nil
}

// # INSERT / UPDATE / DELETE

// BuildInsert renders a single-row INSERT. Columns are sorted for
// deterministic statements; returning names the generated columns to fetch.
func (b *Builder) BuildInsert(table string, row Row, returning ...string) (Statement, error) {
	t, err := b.catalog.Table(table)
	if err != nil {
		return Statement{}, err
	}
	columns, err := writeColumns(t, row)
	if err != nil {
		return Statement{}, err
	}

	bind := &binder{}
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = bind.bind(row[c])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if len(returning) > 0 {
		for _, c := range returning {
			if err := checkColumn(t, c); err != nil {
				return Statement{}, err
			}
		}
		sql += " RETURNING " + strings.Join(returning, ", ")
	}

	return Statement{SQL: sql, Args: bind.args, Fields: returning}, nil
}

// Insert builds and executes a single-row INSERT.
func (b *Builder) Insert(ctx context.Context, q Querier, table string, row Row) error {
	st, err := b.BuildInsert(table, row)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, st.SQL, st.Args...); err != nil {
		return dberr.Wrap(err, "insert "+table)
	}
	return nil
}

// InsertReturning executes a single-row INSERT and returns the requested
// generated columns (e.g. a SERIAL primary key).
func (b *Builder) InsertReturning(ctx context.Context, q Querier, table string, row Row, returning ...string) (Row, error) {
	st, err := b.BuildInsert(table, row, returning...)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "insert "+table)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dberr.Fetch(err, "insert "+table)
		}
		return nil, apperr.Fetch("insert "+table, nil)
	}
	values, err := rows.Values()
	if err != nil {
		return nil, dberr.Fetch(err, "insert "+table)
	}
	out := make(Row, len(st.Fields))
	for i, field := range st.Fields {
		out[field] = values[i]
	}
	return out, nil
}

// BuildUpdate renders a SET-list UPDATE. A nil where updates every row.
func (b *Builder) BuildUpdate(table string, set Row, where Predicate) (Statement, error) {
	t, err := b.catalog.Table(table)
	if err != nil {
		return Statement{}, err
	}
	columns, err := writeColumns(t, set)
	if err != nil {
		return Statement{}, err
	}

	bind := &binder{}
	assignments := make([]string, len(columns))
	for i, c := range columns {
		assignments[i] = c + " = " + bind.bind(set[c])
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", t.Name, strings.Join(assignments, ", "))
	if where != nil {
		clause, err := where.render(t, bind)
		if err != nil {
			return Statement{}, err
		}
		sql += " WHERE " + clause
	}
	return Statement{SQL: sql, Args: bind.args}, nil
}

// Update builds and executes an UPDATE, returning the affected row count.
func (b *Builder) Update(ctx context.Context, q Querier, table string, set Row, where Predicate) (int64, error) {
	st, err := b.BuildUpdate(table, set, where)
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return 0, dberr.Wrap(err, "update "+table)
	}
	return tag.RowsAffected(), nil
}

// BuildDelete renders a DELETE. A nil where deletes every row.
func (b *Builder) BuildDelete(table string, where Predicate) (Statement, error) {
	t, err := b.catalog.Table(table)
	if err != nil {
		return Statement{}, err
	}

	bind := &binder{}
	sql := "DELETE FROM " + t.Name
	if where != nil {
		clause, err := where.render(t, bind)
		if err != nil {
			return Statement{}, err
		}
		sql += " WHERE " + clause
	}
	return Statement{SQL: sql, Args: bind.args}, nil
}

// Delete builds and executes a DELETE, returning the affected row count.
func (b *Builder) Delete(ctx context.Context, q Querier, table string, where Predicate) (int64, error) {
	st, err := b.BuildDelete(table, where)
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return 0, dberr.Wrap(err, "delete "+table)
	}
	return tag.RowsAffected(), nil
}

// RenderWhere renders a predicate as a standalone WHERE fragment with
// arguments numbered from $1. Used by components (the search indexer) that
// assemble their own statement around a validated condition.
func (b *Builder) RenderWhere(table string, p Predicate) (string, []any, error) {
	t, err := b.catalog.Table(table)
	if err != nil {
		return "", nil, err
	}
	bind := &binder{}
	clause, err := p.render(t, bind)
	if err != nil {
		return "", nil, err
	}
	return clause, bind.args, nil
}

// # Internals

// writeColumns validates a write row and returns its columns sorted. The
// derived search column is rejected: only the indexer may write it.
func writeColumns(t *schema.Table, row Row) ([]string, error) {
	if len(row) == 0 {
		return nil, apperr.SchemaValidation("empty row for table %q", t.Name)
	}
	columns := make([]string, 0, len(row))
	for name := range row {
		if name == schema.SearchIndexColumn {
			return nil, apperr.SchemaValidation("column %q is derived and not writable", name)
		}
		if !t.HasColumn(name) {
			return nil, apperr.SchemaValidation("unknown column %q on table %q", name, t.Name)
		}
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns, nil
}

// renderExpr substitutes each "$?" marker in the expression with the next
// bound argument.
func renderExpr(expr Expr, bind *binder) (string, error) {
	if expr.Alias == "" {
		return "", apperr.SchemaValidation("expression requires an alias")
	}
	parts := strings.Split(expr.SQL, "$?")
	if len(parts)-1 != len(expr.Args) {
		return "", apperr.SchemaValidation("expression %q expects %d arguments, got %d",
			expr.Alias, len(parts)-1, len(expr.Args))
	}
	var sb strings.Builder
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(expr.Args) {
			sb.WriteString(bind.bind(expr.Args[i]))
		}
	}
	return sb.String(), nil
}
