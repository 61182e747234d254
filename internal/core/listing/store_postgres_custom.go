package listing

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

// PostgresCustomStore implements [CustomStore] over the custom_items and
// custom_items__tag tables. Custom items are flat records, so there is no
// child reconciliation, only a tag-link diff.
type PostgresCustomStore struct {
	pgStore
	logger *slog.Logger
}

// NewPostgresCustomStore constructs the store.
func NewPostgresCustomStore(session *postgres.Session, builder *sqlbuild.Builder, indexer *search.Indexer, logger *slog.Logger) *PostgresCustomStore {
	return &PostgresCustomStore{
		pgStore: pgStore{session: session, builder: builder, indexer: indexer},
		logger:  logger,
	}
}

// Create inserts the item with its tag links and refreshes the search vector,
// returning the generated id.
func (s *PostgresCustomStore) Create(ctx context.Context, item CustomItem) (int, error) {
	var id int
	err := s.session.WithTx(ctx, func(tx pgx.Tx) error {
		out, err := s.builder.InsertReturning(ctx, tx, schema.CustomItems.Name, sqlbuild.Row{
			"name":                item.Name,
			"description":         textOrNull(item.Description),
			"customer":            textOrNull(item.Customer),
			"display":             item.Display,
			"product_id":          textOrNull(item.ProductID),
			"variation_extension": textOrNull(item.VariationExtension),
		}, "id")
		if err != nil {
			return err
		}
		id = asInt(out["id"])
		if err := s.linkTags(ctx, tx, schema.CustomItemsTag.Name, sqlbuild.Row{"item_id": id}, item.TagIDs); err != nil {
			return err
		}
		return s.indexer.Reindex(ctx, tx, schema.CustomItems.Name, sqlbuild.Eq("id", id))
	})
	return id, err
}

// Get loads a custom item with its tag ids.
func (s *PostgresCustomStore) Get(ctx context.Context, id int) (CustomItem, error) {
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.CustomItems.Name, sqlbuild.SelectRequest{
		Where: sqlbuild.Eq("id", id),
	})
	if err != nil {
		return CustomItem{}, err
	}
	if len(rows) == 0 {
		return CustomItem{}, apperr.NotFound("custom item " + strconv.Itoa(id))
	}
	item := CustomItem{
		ID:                 asInt(rows[0]["id"]),
		Name:               asText(rows[0]["name"]),
		Description:        asText(rows[0]["description"]),
		Customer:           asText(rows[0]["customer"]),
		Display:            asBool(rows[0]["display"]),
		ProductID:          asText(rows[0]["product_id"]),
		VariationExtension: asText(rows[0]["variation_extension"]),
	}

	tagIDs, err := s.tagIDs(ctx, s.session.Pool(), id)
	if err != nil {
		return CustomItem{}, err
	}
	item.TagIDs = tagIDs
	return item, nil
}

// Update rewrites the item fields, diffs the tag links, and refreshes the
// search vector.
func (s *PostgresCustomStore) Update(ctx context.Context, item CustomItem) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Update(ctx, tx, schema.CustomItems.Name, sqlbuild.Row{
			"name":                item.Name,
			"description":         textOrNull(item.Description),
			"customer":            textOrNull(item.Customer),
			"display":             item.Display,
			"product_id":          textOrNull(item.ProductID),
			"variation_extension": textOrNull(item.VariationExtension),
		}, sqlbuild.Eq("id", item.ID))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("custom item " + strconv.Itoa(item.ID))
		}

		existing, err := s.tagIDs(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if err := s.syncTags(ctx, tx, schema.CustomItemsTag.Name, sqlbuild.Row{"item_id": item.ID}, item.TagIDs, existing); err != nil {
			return err
		}
		return s.indexer.Reindex(ctx, tx, schema.CustomItems.Name, sqlbuild.Eq("id", item.ID))
	})
}

// Delete removes the item; tag links cascade.
func (s *PostgresCustomStore) Delete(ctx context.Context, id int) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Delete(ctx, tx, schema.CustomItems.Name, sqlbuild.Eq("id", id))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("custom item " + strconv.Itoa(id))
		}
		s.logger.Info("custom item deleted", slog.Int("id", id))
		return nil
	})
}

func (s *PostgresCustomStore) tagIDs(ctx context.Context, q sqlbuild.Querier, id int) ([]int, error) {
	rows, err := s.builder.Select(ctx, q, schema.CustomItemsTag.Name, sqlbuild.SelectRequest{
		Columns: []string{"tag_id"},
		Where:   sqlbuild.Eq("item_id", id),
		Order:   []sqlbuild.Order{{Column: "tag_id"}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = asInt(row["tag_id"])
	}
	return out, nil
}
