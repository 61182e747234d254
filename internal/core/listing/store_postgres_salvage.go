package listing

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/urbanatelier/catalog/internal/core/search"
	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/dberr"
	"github.com/urbanatelier/catalog/internal/platform/postgres"
)

// PostgresSalvageStore implements [SalvageStore] over the salvage_listing,
// salvage_items and salvage_listing__tag tables.
type PostgresSalvageStore struct {
	pgStore
	logger *slog.Logger
}

// NewPostgresSalvageStore constructs the store.
func NewPostgresSalvageStore(session *postgres.Session, builder *sqlbuild.Builder, indexer *search.Indexer, logger *slog.Logger) *PostgresSalvageStore {
	return &PostgresSalvageStore{
		pgStore: pgStore{session: session, builder: builder, indexer: indexer},
		logger:  logger,
	}
}

// Create inserts the listing and its items and refreshes the listing's search
// vector, all in one transaction.
func (s *PostgresSalvageStore) Create(ctx context.Context, l SalvageListing) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		err := s.builder.Insert(ctx, tx, schema.SalvageListing.Name, sqlbuild.Row{
			"id":          l.ID,
			"name":        l.Name,
			"description": textOrNull(l.Description),
		})
		if err != nil {
			return err
		}
		for _, item := range l.Items {
			if err := s.insertItem(ctx, tx, l.ID, item); err != nil {
				return err
			}
		}
		return s.indexer.Reindex(ctx, tx, schema.SalvageListing.Name, sqlbuild.Eq("id", l.ID))
	})
}

const salvageItemsSQL = `
SELECT i.serial, i.price, i.display, i.overview,
       COALESCE(json_agg(it.tag_id ORDER BY it.tag_id)
                FILTER (WHERE it.tag_id IS NOT NULL), '[]'::json) AS tag_ids
FROM salvage_items i
LEFT JOIN salvage_listing__tag it
  ON it.listing_id = i.listing_id AND it.item_serial = i.serial
WHERE i.listing_id = $1
GROUP BY i.serial, i.price, i.display, i.overview
ORDER BY i.serial`

// Get loads a salvage listing with its items and tag ids.
func (s *PostgresSalvageStore) Get(ctx context.Context, id string) (SalvageListing, error) {
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.SalvageListing.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name", "description"},
		Where:   sqlbuild.Eq("id", id),
	})
	if err != nil {
		return SalvageListing{}, err
	}
	if len(rows) == 0 {
		return SalvageListing{}, apperr.NotFound("salvage listing " + id)
	}
	l := SalvageListing{
		ID:          asText(rows[0]["id"]),
		Name:        asText(rows[0]["name"]),
		Description: asText(rows[0]["description"]),
	}

	irows, err := s.session.Pool().Query(ctx, salvageItemsSQL, id)
	if err != nil {
		return SalvageListing{}, dberr.Wrap(err, "select salvage_items")
	}
	defer irows.Close()
	for irows.Next() {
		var (
			item  SalvageItem
			price *int
		)
		if err := irows.Scan(&item.Serial, &price, &item.Display, &item.Overview, &item.TagIDs); err != nil {
			return SalvageListing{}, dberr.Fetch(err, "scan salvage item")
		}
		if price != nil {
			item.Price = *price
		}
		l.Items = append(l.Items, item)
	}
	if err := irows.Err(); err != nil {
		return SalvageListing{}, dberr.Fetch(err, "select salvage_items")
	}
	return l, nil
}

// Update rewrites the listing fields, reconciles the item set by serial, and
// refreshes the search vector.
func (s *PostgresSalvageStore) Update(ctx context.Context, l SalvageListing) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Update(ctx, tx, schema.SalvageListing.Name, sqlbuild.Row{
			"name":        l.Name,
			"description": textOrNull(l.Description),
		}, sqlbuild.Eq("id", l.ID))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("salvage listing " + l.ID)
		}

		existingTags, err := s.existingItemTags(ctx, tx, l.ID)
		if err != nil {
			return err
		}
		serials := make([]int, 0, len(existingTags))
		for serial := range existingTags {
			serials = append(serials, serial)
		}

		err = reconcile(l.Items, serials,
			func(item SalvageItem) int { return item.Serial },
			func(item SalvageItem) error { return s.insertItem(ctx, tx, l.ID, item) },
			func(item SalvageItem) error { return s.updateItem(ctx, tx, l.ID, item, existingTags[item.Serial]) },
			func(serial int) error { return s.removeItem(ctx, tx, l.ID, serial) },
		)
		if err != nil {
			return err
		}
		return s.indexer.Reindex(ctx, tx, schema.SalvageListing.Name, sqlbuild.Eq("id", l.ID))
	})
}

// Delete removes the listing; items and tag links cascade.
func (s *PostgresSalvageStore) Delete(ctx context.Context, id string) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Delete(ctx, tx, schema.SalvageListing.Name, sqlbuild.Eq("id", id))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("salvage listing " + id)
		}
		s.logger.Info("salvage listing deleted", slog.String("id", id))
		return nil
	})
}

func (s *PostgresSalvageStore) insertItem(ctx context.Context, tx pgx.Tx, listingID string, item SalvageItem) error {
	err := s.builder.Insert(ctx, tx, schema.SalvageItems.Name, sqlbuild.Row{
		"listing_id": listingID,
		"serial":     item.Serial,
		"price":      item.Price,
		"display":    item.Display,
		"overview":   item.Overview,
	})
	if err != nil {
		return err
	}
	return s.linkTags(ctx, tx, schema.SalvageListingTag.Name, sqlbuild.Row{
		"listing_id":  listingID,
		"item_serial": item.Serial,
	}, item.TagIDs)
}

func (s *PostgresSalvageStore) updateItem(ctx context.Context, tx pgx.Tx, listingID string, item SalvageItem, existingTags []int) error {
	_, err := s.builder.Update(ctx, tx, schema.SalvageItems.Name, sqlbuild.Row{
		"price":    item.Price,
		"display":  item.Display,
		"overview": item.Overview,
	}, sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("serial", item.Serial)))
	if err != nil {
		return err
	}
	return s.syncTags(ctx, tx, schema.SalvageListingTag.Name, sqlbuild.Row{
		"listing_id":  listingID,
		"item_serial": item.Serial,
	}, item.TagIDs, existingTags)
}

func (s *PostgresSalvageStore) removeItem(ctx context.Context, tx pgx.Tx, listingID string, serial int) error {
	_, err := s.builder.Delete(ctx, tx, schema.SalvageListingTag.Name,
		sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("item_serial", serial)))
	if err != nil {
		return err
	}
	_, err = s.builder.Delete(ctx, tx, schema.SalvageItems.Name,
		sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("serial", serial)))
	return err
}

func (s *PostgresSalvageStore) existingItemTags(ctx context.Context, tx pgx.Tx, listingID string) (map[int][]int, error) {
	irows, err := s.builder.Select(ctx, tx, schema.SalvageItems.Name, sqlbuild.SelectRequest{
		Columns: []string{"serial"},
		Where:   sqlbuild.Eq("listing_id", listingID),
	})
	if err != nil {
		return nil, err
	}
	out := make(map[int][]int, len(irows))
	for _, row := range irows {
		out[asInt(row["serial"])] = nil
	}

	trows, err := s.builder.Select(ctx, tx, schema.SalvageListingTag.Name, sqlbuild.SelectRequest{
		Columns: []string{"item_serial", "tag_id"},
		Where:   sqlbuild.Eq("listing_id", listingID),
	})
	if err != nil {
		return nil, err
	}
	for _, row := range trows {
		serial := asInt(row["item_serial"])
		out[serial] = append(out[serial], asInt(row["tag_id"]))
	}
	return out, nil
}
