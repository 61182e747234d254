/*
Package search maintains the derived full-text index and answers ranked
queries against it.

Every searchable table carries a derived tsvector column (declared in the
schema catalog) holding the weighted concatenation of its text columns. The
indexer recomputes that column whenever a store writes an indexed row — a
write that skips this step would silently serve stale search results, which
is why the store write paths fuse reindexing into the same transaction as
the write itself.

Query-time ranking uses ts_rank over the same vector the index stores, so
index-time and query-time tokenization always agree.
*/
package search

import (
	"context"
	"fmt"

	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/dberr"
)

// RankField is the alias of the computed relevance column in search results.
const RankField = "rank"

// Match is one ranked search hit. Rank is a non-negative relevance score;
// ties are broken by primary-key order for determinism.
type Match struct {
	Row  sqlbuild.Row
	Rank float64
}

// Indexer recomputes derived search vectors and executes ranked queries.
type Indexer struct {
	builder  *sqlbuild.Builder
	expander Expander
}

// NewIndexer constructs an indexer. A nil expander falls back to [Fold].
func NewIndexer(builder *sqlbuild.Builder, expander Expander) *Indexer {
	if expander == nil {
		expander = Fold
	}
	return &Indexer{builder: builder, expander: expander}
}

// Reindex recomputes the derived search column for the rows matching where
// (nil recomputes the whole table). Must run inside the same transaction as
// the write that made the rows dirty.
func (ix *Indexer) Reindex(ctx context.Context, q sqlbuild.Querier, table string, where sqlbuild.Predicate) error {
	t, err := ix.builder.Catalog().Table(table)
	if err != nil {
		return err
	}
	if !t.Searchable() {
		// Not an error: stores call this unconditionally after writes.
		return nil
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s = %s",
		t.Name, schema.SearchIndexColumn, t.SearchVectorExpr())
	var args []any
	if where != nil {
		clause, whereArgs, err := ix.builder.RenderWhere(table, where)
		if err != nil {
			return err
		}
		stmt += " WHERE " + clause
		args = whereArgs
	}

	if _, err := q.Exec(ctx, stmt, args...); err != nil {
		return dberr.Wrap(err, "reindex "+table)
	}
	return nil
}

// Search returns the rows of table matching the query text, ordered by
// descending relevance with primary-key order as the tiebreaker. A limit of
// zero returns every match.
func (ix *Indexer) Search(ctx context.Context, q sqlbuild.Querier, table, text string, limit int) ([]Match, error) {
	t, err := ix.builder.Catalog().Table(table)
	if err != nil {
		return nil, err
	}

	expanded := ix.expander.Expand(text)

	order := []sqlbuild.Order{{Column: RankField, Desc: true}}
	for _, key := range tieBreak(t) {
		order = append(order, sqlbuild.Order{Column: key})
	}

	rows, err := ix.builder.Select(ctx, q, table, sqlbuild.SelectRequest{
		Exprs: []sqlbuild.Expr{{
			Alias: RankField,
			SQL:   "ts_rank(" + schema.SearchIndexColumn + ", plainto_tsquery('english', $?))",
			Args:  []any{expanded},
		}},
		Where: sqlbuild.Matches(expanded),
		Order: order,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(rows))
	for i, row := range rows {
		matches[i] = Match{Row: row, Rank: rankOf(row)}
	}
	return matches, nil
}

// tieBreak picks the deterministic ordering columns for a table: the primary
// key, or the first unique group for tables keyed by a composite natural key.
func tieBreak(t *schema.Table) []string {
	if len(t.PrimaryKey) > 0 {
		return t.PrimaryKey
	}
	if len(t.Unique) > 0 {
		return t.Unique[0]
	}
	return nil
}

// rankOf reads the computed relevance score. ts_rank yields a float4, which
// pgx surfaces as float32.
func rankOf(row sqlbuild.Row) float64 {
	switch v := row[RankField].(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}
