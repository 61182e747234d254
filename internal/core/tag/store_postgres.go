package tag

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/urbanatelier/catalog/internal/core/search"
	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/postgres"
)

// PostgresStore implements [Store] over the tag, tag_categories and finishes
// tables.
type PostgresStore struct {
	session *postgres.Session
	builder *sqlbuild.Builder
	indexer *search.Indexer
	logger  *slog.Logger
}

// NewPostgresStore constructs the store.
func NewPostgresStore(session *postgres.Session, builder *sqlbuild.Builder, indexer *search.Indexer, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{session: session, builder: builder, indexer: indexer, logger: logger}
}

// Create inserts a tag and refreshes its search vector, returning the
// generated id.
func (s *PostgresStore) Create(ctx context.Context, t Tag) (int, error) {
	var id int
	err := s.session.WithTx(ctx, func(tx pgx.Tx) error {
		out, err := s.builder.InsertReturning(ctx, tx, schema.Tag.Name, sqlbuild.Row{
			"name":        t.Name,
			"category_id": t.CategoryID,
		}, "id")
		if err != nil {
			return err
		}
		id = asInt(out["id"])
		return s.indexer.Reindex(ctx, tx, schema.Tag.Name, sqlbuild.Eq("id", id))
	})
	return id, err
}

// Get loads one tag by id.
func (s *PostgresStore) Get(ctx context.Context, id int) (Tag, error) {
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.Tag.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name", "category_id"},
		Where:   sqlbuild.Eq("id", id),
	})
	if err != nil {
		return Tag{}, err
	}
	if len(rows) == 0 {
		return Tag{}, apperr.NotFound("tag " + strconv.Itoa(id))
	}
	return tagFromRow(rows[0]), nil
}

// Update renames a tag or moves it to another category, refreshing the
// search vector.
func (s *PostgresStore) Update(ctx context.Context, t Tag) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Update(ctx, tx, schema.Tag.Name, sqlbuild.Row{
			"name":        t.Name,
			"category_id": t.CategoryID,
		}, sqlbuild.Eq("id", t.ID))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("tag " + strconv.Itoa(t.ID))
		}
		return s.indexer.Reindex(ctx, tx, schema.Tag.Name, sqlbuild.Eq("id", t.ID))
	})
}

// Delete removes a tag; its links on every entity cascade away.
func (s *PostgresStore) Delete(ctx context.Context, id int) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Delete(ctx, tx, schema.Tag.Name, sqlbuild.Eq("id", id))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("tag " + strconv.Itoa(id))
		}
		s.logger.Info("tag deleted", slog.Int("id", id))
		return nil
	})
}

// List returns tags in name order, optionally restricted to one category.
func (s *PostgresStore) List(ctx context.Context, categoryID int) ([]Tag, error) {
	req := sqlbuild.SelectRequest{
		Columns: []string{"id", "name", "category_id"},
		Order:   []sqlbuild.Order{{Column: "name"}, {Column: "id"}},
	}
	if categoryID > 0 {
		req.Where = sqlbuild.Eq("category_id", categoryID)
	}
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.Tag.Name, req)
	if err != nil {
		return nil, err
	}
	tags := make([]Tag, len(rows))
	for i, row := range rows {
		tags[i] = tagFromRow(row)
	}
	return tags, nil
}

// Search returns tags matching the text by descending relevance. Empty text
// is not a query, so it falls back to the full name-ordered list.
func (s *PostgresStore) Search(ctx context.Context, text string) ([]Tag, error) {
	if text == "" {
		return s.List(ctx, 0)
	}
	matches, err := s.indexer.Search(ctx, s.session.Pool(), schema.Tag.Name, text, 0)
	if err != nil {
		return nil, err
	}
	tags := make([]Tag, len(matches))
	for i, m := range matches {
		tags[i] = tagFromRow(m.Row)
	}
	return tags, nil
}

// Categories returns the seeded facet categories in id order.
func (s *PostgresStore) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.TagCategories.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name", "description"},
		Order:   []sqlbuild.Order{{Column: "id"}},
	})
	if err != nil {
		return nil, err
	}
	categories := make([]Category, len(rows))
	for i, row := range rows {
		categories[i] = Category{
			ID:          asInt(row["id"]),
			Name:        asText(row["name"]),
			Description: asText(row["description"]),
		}
	}
	return categories, nil
}

// Finishes returns the seeded metal-finish list in id order.
func (s *PostgresStore) Finishes(ctx context.Context) ([]Finish, error) {
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.Finishes.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name", "outdoor"},
		Order:   []sqlbuild.Order{{Column: "id"}},
	})
	if err != nil {
		return nil, err
	}
	finishes := make([]Finish, len(rows))
	for i, row := range rows {
		finishes[i] = Finish{
			ID:      asText(row["id"]),
			Name:    asText(row["name"]),
			Outdoor: row["outdoor"] == true,
		}
	}
	return finishes, nil
}

func tagFromRow(row sqlbuild.Row) Tag {
	return Tag{
		ID:         asInt(row["id"]),
		Name:       asText(row["name"]),
		CategoryID: asInt(row["category_id"]),
	}
}

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
