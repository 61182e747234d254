// Copyright (c) 2026 Urban Atelier. All rights reserved.

package sqlbuild_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
)

func newBuilder() *sqlbuild.Builder {
	return sqlbuild.New(schema.Default())
}

/*
TestBuildSelect_Basic renders a full-clause SELECT and checks that every
value travels as a bound parameter.
*/
func TestBuildSelect_Basic(t *testing.T) {
	st, err := newBuilder().BuildSelect("tag", sqlbuild.SelectRequest{
		Columns: []string{"id", "name"},
		Where:   sqlbuild.Eq("category_id", 3),
		Order:   []sqlbuild.Order{{Column: "name"}, {Column: "id", Desc: true}},
		Limit:   25,
		Offset:  50,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, name FROM tag WHERE category_id = $1 ORDER BY name, id DESC LIMIT $2 OFFSET $3",
		st.SQL)
	assert.Equal(t, []any{3, 25, 50}, st.Args)
	assert.Equal(t, []string{"id", "name"}, st.Fields)
}

/*
TestBuildSelect_DefaultColumns projects every declared column when none are
requested; the derived search column stays out of the projection.
*/
func TestBuildSelect_DefaultColumns(t *testing.T) {
	st, err := newBuilder().BuildSelect("finishes", sqlbuild.SelectRequest{})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name, outdoor FROM finishes", st.SQL)
	assert.NotContains(t, st.SQL, "search_index")
}

/*
TestBuildSelect_Predicates covers the composite and membership predicates.
*/
func TestBuildSelect_Predicates(t *testing.T) {
	st, err := newBuilder().BuildSelect("product_variations", sqlbuild.SelectRequest{
		Columns: []string{"listing_id", "extension"},
		Where: sqlbuild.And(
			sqlbuild.Eq("listing_id", "UA01"),
			sqlbuild.Or(
				sqlbuild.AnyOf("price", []int{100, 200}),
				sqlbuild.IsNull("price"),
			),
		),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT listing_id, extension FROM product_variations WHERE (listing_id = $1 AND (price = ANY($2) OR price IS NULL))",
		st.SQL)
	assert.Equal(t, []any{"UA01", []int{100, 200}}, st.Args)
}

/*
TestBuildSelect_Distinct renders DISTINCT projections.
*/
func TestBuildSelect_Distinct(t *testing.T) {
	st, err := newBuilder().BuildSelect("product_variation__tag", sqlbuild.SelectRequest{
		Columns:  []string{"listing_id", "variation_extension"},
		Distinct: true,
		Where:    sqlbuild.AnyOf("tag_id", []int{7}),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT DISTINCT listing_id, variation_extension FROM product_variation__tag WHERE tag_id = ANY($1)",
		st.SQL)
}

/*
TestBuildSelect_Expr substitutes $? markers in trusted expressions and lets
ORDER BY reference the alias.
*/
func TestBuildSelect_Expr(t *testing.T) {
	st, err := newBuilder().BuildSelect("product_listing", sqlbuild.SelectRequest{
		Columns: []string{"id", "name"},
		Exprs: []sqlbuild.Expr{{
			Alias: "rank",
			SQL:   "ts_rank(search_index, plainto_tsquery('english', $?))",
			Args:  []any{"loft light"},
		}},
		Where: sqlbuild.Matches("loft light"),
		Order: []sqlbuild.Order{{Column: "rank", Desc: true}, {Column: "id"}},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, name, ts_rank(search_index, plainto_tsquery('english', $1)) AS rank "+
			"FROM product_listing WHERE search_index @@ plainto_tsquery('english', $2) "+
			"ORDER BY rank DESC, id",
		st.SQL)
	assert.Equal(t, []any{"loft light", "loft light"}, st.Args)
	assert.Equal(t, []string{"id", "name", "rank"}, st.Fields)
}

/*
TestBuildSelect_Validation rejects unknown identifiers before execution.
*/
func TestBuildSelect_Validation(t *testing.T) {
	b := newBuilder()

	tests := []struct {
		name  string
		table string
		req   sqlbuild.SelectRequest
	}{
		{"unknown_table", "no_such_table", sqlbuild.SelectRequest{}},
		{"unknown_column", "tag", sqlbuild.SelectRequest{Columns: []string{"nope"}}},
		{"unknown_where_column", "tag", sqlbuild.SelectRequest{Where: sqlbuild.Eq("nope", 1)}},
		{"unknown_order_column", "tag", sqlbuild.SelectRequest{Order: []sqlbuild.Order{{Column: "nope"}}}},
		{"match_on_unsearchable", "finishes", sqlbuild.SelectRequest{Where: sqlbuild.Matches("brass")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.BuildSelect(tt.table, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperr.CodeSchemaValidation, apperr.As(err).Code)
		})
	}
}

/*
TestBuildInsert_Deterministic sorts columns so the same row always renders
the same statement, with optional RETURNING.
*/
func TestBuildInsert_Deterministic(t *testing.T) {
	b := newBuilder()

	st, err := b.BuildInsert("tag", sqlbuild.Row{"name": "Brass", "category_id": 6}, "id")
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO tag (category_id, name) VALUES ($1, $2) RETURNING id", st.SQL)
	assert.Equal(t, []any{6, "Brass"}, st.Args)
	assert.Equal(t, []string{"id"}, st.Fields)
}

/*
TestBuildInsert_RejectsDerivedColumn keeps the search index out of reach of
ordinary writes; only the indexer recomputes it.
*/
func TestBuildInsert_RejectsDerivedColumn(t *testing.T) {
	_, err := newBuilder().BuildInsert("tag", sqlbuild.Row{"name": "Brass", "search_index": "forged"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSchemaValidation, apperr.As(err).Code)

	_, err = newBuilder().BuildInsert("tag", sqlbuild.Row{})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSchemaValidation, apperr.As(err).Code)
}

/*
TestBuildUpdate renders the SET list with a bound WHERE clause.
*/
func TestBuildUpdate(t *testing.T) {
	st, err := newBuilder().BuildUpdate("tag",
		sqlbuild.Row{"name": "Polished Brass"},
		sqlbuild.Eq("id", 12))
	require.NoError(t, err)

	assert.Equal(t, "UPDATE tag SET name = $1 WHERE id = $2", st.SQL)
	assert.Equal(t, []any{"Polished Brass", 12}, st.Args)
}

/*
TestBuildDelete renders a parameterized DELETE.
*/
func TestBuildDelete(t *testing.T) {
	st, err := newBuilder().BuildDelete("custom_items__tag",
		sqlbuild.And(sqlbuild.Eq("item_id", 4), sqlbuild.AnyOf("tag_id", []int{1, 2})))
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM custom_items__tag WHERE (item_id = $1 AND tag_id = ANY($2))", st.SQL)
	assert.Equal(t, []any{4, []int{1, 2}}, st.Args)
}

/*
TestRenderWhere numbers arguments from $1 for standalone clauses.
*/
func TestRenderWhere(t *testing.T) {
	clause, args, err := newBuilder().RenderWhere("product_variations",
		sqlbuild.Eq("listing_id", "UA01"))
	require.NoError(t, err)

	assert.Equal(t, "listing_id = $1", clause)
	assert.Equal(t, []any{"UA01"}, args)
}
