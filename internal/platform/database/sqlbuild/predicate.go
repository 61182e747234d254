// Copyright (c) 2026 Urban Atelier. All rights reserved.

package sqlbuild

import (
	"strconv"
	"strings"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
)

// Predicate is a structured WHERE/HAVING condition. Leaves validate their
// column names against the schema catalog and bind their values as $n
// parameters, so caller input can never reach the SQL text.
type Predicate interface {
	render(t *schema.Table, b *binder) (string, error)
}

// binder accumulates statement arguments and hands out $n placeholders.
type binder struct {
	args []any
}

func (b *binder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

func checkColumn(t *schema.Table, column string) error {
	if !t.AllowedColumn(column) {
		return apperr.SchemaValidation("unknown column %q on table %q", column, t.Name)
	}
	return nil
}

// # Leaf Predicates

type comparison struct {
	column string
	op     string
	value  any
}

func (p comparison) render(t *schema.Table, b *binder) (string, error) {
	if err := checkColumn(t, p.column); err != nil {
		return "", err
	}
	return p.column + " " + p.op + " " + b.bind(p.value), nil
}

// Eq matches rows where column equals value.
func Eq(column string, value any) Predicate { return comparison{column, "=", value} }

// NotEq matches rows where column differs from value.
func NotEq(column string, value any) Predicate { return comparison{column, "<>", value} }

type anyOf struct {
	column string
	values any // a slice type pgx can encode as an array
}

func (p anyOf) render(t *schema.Table, b *binder) (string, error) {
	if err := checkColumn(t, p.column); err != nil {
		return "", err
	}
	return p.column + " = ANY(" + b.bind(p.values) + ")", nil
}

// AnyOf matches rows where column equals any element of values. Values must
// be a slice pgx encodes as an array ([]int, []string, ...). An empty slice
// matches nothing, which is the desired "unknown id" behavior for facet
// filters.
func AnyOf(column string, values any) Predicate { return anyOf{column, values} }

type isNull struct{ column string }

func (p isNull) render(t *schema.Table, b *binder) (string, error) {
	if err := checkColumn(t, p.column); err != nil {
		return "", err
	}
	return p.column + " IS NULL", nil
}

// IsNull matches rows where column is NULL.
func IsNull(column string) Predicate { return isNull{column} }

type matches struct {
	query string
}

func (p matches) render(t *schema.Table, b *binder) (string, error) {
	if !t.Searchable() {
		return "", apperr.SchemaValidation("table %q has no search index", t.Name)
	}
	return schema.SearchIndexColumn + " @@ plainto_tsquery('english', " + b.bind(p.query) + ")", nil
}

// Matches performs a ranked full-text match of query against the table's
// derived search index. Only valid on searchable tables.
func Matches(query string) Predicate { return matches{query} }

// # Composite Predicates

type junction struct {
	op    string
	preds []Predicate
}

func (p junction) render(t *schema.Table, b *binder) (string, error) {
	if len(p.preds) == 0 {
		return "", apperr.SchemaValidation("empty %s predicate", strings.TrimSpace(p.op))
	}
	if len(p.preds) == 1 {
		return p.preds[0].render(t, b)
	}
	parts := make([]string, len(p.preds))
	for i, pred := range p.preds {
		s, err := pred.render(t, b)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, p.op) + ")", nil
}

// And combines predicates conjunctively.
func And(preds ...Predicate) Predicate { return junction{" AND ", preds} }

// Or combines predicates disjunctively.
func Or(preds ...Predicate) Predicate { return junction{" OR ", preds} }
