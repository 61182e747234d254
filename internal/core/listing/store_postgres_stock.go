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
	"github.com/urbanatelier/catalog/internal/platform/dberr"
	"github.com/urbanatelier/catalog/internal/platform/postgres"
)

// PostgresStockStore implements [StockStore] over the instock_listing,
// instock_items and instock_listing__tag tables. Stock tables carry no text
// of their own, so these writes touch no search vector.
type PostgresStockStore struct {
	pgStore
	logger *slog.Logger
}

// NewPostgresStockStore constructs the store.
func NewPostgresStockStore(session *postgres.Session, builder *sqlbuild.Builder, indexer *search.Indexer, logger *slog.Logger) *PostgresStockStore {
	return &PostgresStockStore{
		pgStore: pgStore{session: session, builder: builder, indexer: indexer},
		logger:  logger,
	}
}

// Create inserts the listing and its items, returning the generated id.
func (s *PostgresStockStore) Create(ctx context.Context, l StockListing) (int, error) {
	var id int
	err := s.session.WithTx(ctx, func(tx pgx.Tx) error {
		out, err := s.builder.InsertReturning(ctx, tx, schema.InstockListing.Name, sqlbuild.Row{
			"sale":                l.Sale,
			"price":               l.Price,
			"product_id":          l.ProductID,
			"variation_extension": textOrNull(l.VariationExtension),
		}, "id")
		if err != nil {
			return err
		}
		id = asInt(out["id"])
		for _, item := range l.Items {
			if err := s.insertItem(ctx, tx, id, item); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

const stockItemsSQL = `
SELECT i.serial, i.display, i.overview,
       COALESCE(json_agg(it.tag_id ORDER BY it.tag_id)
                FILTER (WHERE it.tag_id IS NOT NULL), '[]'::json) AS tag_ids
FROM instock_items i
LEFT JOIN instock_listing__tag it
  ON it.listing_id = i.listing_id AND it.item_serial = i.serial
WHERE i.listing_id = $1
GROUP BY i.serial, i.display, i.overview
ORDER BY i.serial`

// Get loads a stock listing with its items and tag ids.
func (s *PostgresStockStore) Get(ctx context.Context, id int) (StockListing, error) {
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.InstockListing.Name, sqlbuild.SelectRequest{
		Where: sqlbuild.Eq("id", id),
	})
	if err != nil {
		return StockListing{}, err
	}
	if len(rows) == 0 {
		return StockListing{}, apperr.NotFound("stock listing " + strconv.Itoa(id))
	}
	l := StockListing{
		ID:                 asInt(rows[0]["id"]),
		Sale:               asBool(rows[0]["sale"]),
		Price:              asInt(rows[0]["price"]),
		ProductID:          asText(rows[0]["product_id"]),
		VariationExtension: asText(rows[0]["variation_extension"]),
	}

	irows, err := s.session.Pool().Query(ctx, stockItemsSQL, id)
	if err != nil {
		return StockListing{}, dberr.Wrap(err, "select instock_items")
	}
	defer irows.Close()
	for irows.Next() {
		var item StockItem
		if err := irows.Scan(&item.Serial, &item.Display, &item.Overview, &item.TagIDs); err != nil {
			return StockListing{}, dberr.Fetch(err, "scan stock item")
		}
		l.Items = append(l.Items, item)
	}
	if err := irows.Err(); err != nil {
		return StockListing{}, dberr.Fetch(err, "select instock_items")
	}
	return l, nil
}

// Update rewrites the listing fields and reconciles the item set by serial.
func (s *PostgresStockStore) Update(ctx context.Context, l StockListing) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Update(ctx, tx, schema.InstockListing.Name, sqlbuild.Row{
			"sale":                l.Sale,
			"price":               l.Price,
			"product_id":          l.ProductID,
			"variation_extension": textOrNull(l.VariationExtension),
		}, sqlbuild.Eq("id", l.ID))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("stock listing " + strconv.Itoa(l.ID))
		}

		existingTags, err := s.existingItemTags(ctx, tx, l.ID)
		if err != nil {
			return err
		}
		serials := make([]int, 0, len(existingTags))
		for serial := range existingTags {
			serials = append(serials, serial)
		}

		return reconcile(l.Items, serials,
			func(item StockItem) int { return item.Serial },
			func(item StockItem) error { return s.insertItem(ctx, tx, l.ID, item) },
			func(item StockItem) error { return s.updateItem(ctx, tx, l.ID, item, existingTags[item.Serial]) },
			func(serial int) error { return s.removeItem(ctx, tx, l.ID, serial) },
		)
	})
}

// Delete removes the listing; items and tag links cascade.
func (s *PostgresStockStore) Delete(ctx context.Context, id int) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Delete(ctx, tx, schema.InstockListing.Name, sqlbuild.Eq("id", id))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("stock listing " + strconv.Itoa(id))
		}
		s.logger.Info("stock listing deleted", slog.Int("id", id))
		return nil
	})
}

func (s *PostgresStockStore) insertItem(ctx context.Context, tx pgx.Tx, listingID int, item StockItem) error {
	err := s.builder.Insert(ctx, tx, schema.InstockItems.Name, sqlbuild.Row{
		"listing_id": listingID,
		"serial":     item.Serial,
		"display":    item.Display,
		"overview":   item.Overview,
	})
	if err != nil {
		return err
	}
	return s.linkTags(ctx, tx, schema.InstockListingTag.Name, sqlbuild.Row{
		"listing_id":  listingID,
		"item_serial": item.Serial,
	}, item.TagIDs)
}

func (s *PostgresStockStore) updateItem(ctx context.Context, tx pgx.Tx, listingID int, item StockItem, existingTags []int) error {
	_, err := s.builder.Update(ctx, tx, schema.InstockItems.Name, sqlbuild.Row{
		"display":  item.Display,
		"overview": item.Overview,
	}, sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("serial", item.Serial)))
	if err != nil {
		return err
	}
	return s.syncTags(ctx, tx, schema.InstockListingTag.Name, sqlbuild.Row{
		"listing_id":  listingID,
		"item_serial": item.Serial,
	}, item.TagIDs, existingTags)
}

func (s *PostgresStockStore) removeItem(ctx context.Context, tx pgx.Tx, listingID, serial int) error {
	_, err := s.builder.Delete(ctx, tx, schema.InstockListingTag.Name,
		sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("item_serial", serial)))
	if err != nil {
		return err
	}
	_, err = s.builder.Delete(ctx, tx, schema.InstockItems.Name,
		sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("serial", serial)))
	return err
}

func (s *PostgresStockStore) existingItemTags(ctx context.Context, tx pgx.Tx, listingID int) (map[int][]int, error) {
	irows, err := s.builder.Select(ctx, tx, schema.InstockItems.Name, sqlbuild.SelectRequest{
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

	trows, err := s.builder.Select(ctx, tx, schema.InstockListingTag.Name, sqlbuild.SelectRequest{
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
