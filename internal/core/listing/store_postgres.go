package listing

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/urbanatelier/catalog/internal/core/search"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/dberr"
	"github.com/urbanatelier/catalog/internal/platform/postgres"
)

// pgStore is the plumbing shared by every Postgres-backed store: the session
// owning the transaction boundary, the statement builder, and the indexer
// that refreshes search vectors inside the writing transaction.
type pgStore struct {
	session *postgres.Session
	builder *sqlbuild.Builder
	indexer *search.Indexer
}

// linkTags inserts one tag link per id, all sharing the base key columns.
// The inserts go out as a single batch round trip.
func (s *pgStore) linkTags(ctx context.Context, tx pgx.Tx, table string, base sqlbuild.Row, tagIDs []int) error {
	if len(tagIDs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tagID := range tagIDs {
		row := make(sqlbuild.Row, len(base)+1)
		for k, v := range base {
			row[k] = v
		}
		row["tag_id"] = tagID
		st, err := s.builder.BuildInsert(table, row)
		if err != nil {
			return err
		}
		batch.Queue(st.SQL, st.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range tagIDs {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "insert "+table)
		}
	}
	return results.Close()
}

// syncTags reconciles the tag links under one key: missing links are
// inserted, links no longer wanted are deleted, shared links are untouched.
func (s *pgStore) syncTags(ctx context.Context, tx pgx.Tx, table string, key sqlbuild.Row, incoming, existing []int) error {
	added, removed := diffIDs(incoming, existing)
	if err := s.linkTags(ctx, tx, table, key, added); err != nil {
		return err
	}
	if len(removed) > 0 {
		preds := make([]sqlbuild.Predicate, 0, len(key)+1)
		for column, value := range key {
			preds = append(preds, sqlbuild.Eq(column, value))
		}
		preds = append(preds, sqlbuild.AnyOf("tag_id", removed))
		if _, err := s.builder.Delete(ctx, tx, table, sqlbuild.And(preds...)); err != nil {
			return err
		}
	}
	return nil
}

// # Value helpers
//
// Builder results come back as any-typed column values; pgx surfaces Postgres
// integers as int32/int64 depending on the column type.

func asText(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func asInt(value any) int {
	switch v := value.(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func asBool(value any) bool {
	b, _ := value.(bool)
	return b
}

// textOrNull maps the empty string to NULL so optional VARCHAR columns, in
// particular nullable foreign keys, do not store empty-string sentinels.
func textOrNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}
