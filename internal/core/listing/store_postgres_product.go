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

// PostgresProductStore implements [ProductStore] over the product_listing,
// product_variations and product_variation__tag tables.
type PostgresProductStore struct {
	pgStore
	logger *slog.Logger
}

// NewPostgresProductStore constructs the store.
func NewPostgresProductStore(session *postgres.Session, builder *sqlbuild.Builder, indexer *search.Indexer, logger *slog.Logger) *PostgresProductStore {
	return &PostgresProductStore{
		pgStore: pgStore{session: session, builder: builder, indexer: indexer},
		logger:  logger,
	}
}

// Create inserts the listing, its variations and their tag links, and
// refreshes the search vectors, all in one transaction.
func (s *PostgresProductStore) Create(ctx context.Context, p Product) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		err := s.builder.Insert(ctx, tx, schema.ProductListing.Name, sqlbuild.Row{
			"id":          p.ID,
			"name":        p.Name,
			"description": textOrNull(p.Description),
		})
		if err != nil {
			return err
		}
		for _, v := range p.Variations {
			if err := s.insertVariation(ctx, tx, p.ID, v); err != nil {
				return err
			}
		}
		return s.reindex(ctx, tx, p.ID)
	})
}

// productVariationsSQL hydrates a listing's variations with their tag ids in
// one round trip.
const productVariationsSQL = `
SELECT v.extension, v.subname, v.price, v.display, v.overview,
       COALESCE(json_agg(vt.tag_id ORDER BY vt.tag_id)
                FILTER (WHERE vt.tag_id IS NOT NULL), '[]'::json) AS tag_ids
FROM product_variations v
LEFT JOIN product_variation__tag vt
  ON vt.listing_id = v.listing_id AND vt.variation_extension = v.extension
WHERE v.listing_id = $1
GROUP BY v.extension, v.subname, v.price, v.display, v.overview
ORDER BY v.extension`

// Get loads a product with its variations and tag ids.
func (s *PostgresProductStore) Get(ctx context.Context, id string) (Product, error) {
	rows, err := s.builder.Select(ctx, s.session.Pool(), schema.ProductListing.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name", "description"},
		Where:   sqlbuild.Eq("id", id),
	})
	if err != nil {
		return Product{}, err
	}
	if len(rows) == 0 {
		return Product{}, apperr.NotFound("product " + id)
	}
	p := Product{
		ID:          asText(rows[0]["id"]),
		Name:        asText(rows[0]["name"]),
		Description: asText(rows[0]["description"]),
	}

	vrows, err := s.session.Pool().Query(ctx, productVariationsSQL, id)
	if err != nil {
		return Product{}, dberr.Wrap(err, "select product_variations")
	}
	defer vrows.Close()
	for vrows.Next() {
		var (
			v       Variation
			subname *string
			price   *int
		)
		if err := vrows.Scan(&v.Extension, &subname, &price, &v.Display, &v.Overview, &v.TagIDs); err != nil {
			return Product{}, dberr.Fetch(err, "scan product variation")
		}
		if subname != nil {
			v.Subname = *subname
		}
		if price != nil {
			v.Price = *price
		}
		p.Variations = append(p.Variations, v)
	}
	if err := vrows.Err(); err != nil {
		return Product{}, dberr.Fetch(err, "select product_variations")
	}
	return p, nil
}

// Update rewrites the listing fields and reconciles the variation set by
// extension: new extensions are inserted, surviving ones updated in place
// with their tag links diffed, dropped ones removed.
func (s *PostgresProductStore) Update(ctx context.Context, p Product) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Update(ctx, tx, schema.ProductListing.Name, sqlbuild.Row{
			"name":        p.Name,
			"description": textOrNull(p.Description),
		}, sqlbuild.Eq("id", p.ID))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("product " + p.ID)
		}

		existingTags, err := s.existingVariationTags(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		extensions := make([]string, 0, len(existingTags))
		for ext := range existingTags {
			extensions = append(extensions, ext)
		}

		err = reconcile(p.Variations, extensions,
			func(v Variation) string { return v.Extension },
			func(v Variation) error { return s.insertVariation(ctx, tx, p.ID, v) },
			func(v Variation) error { return s.updateVariation(ctx, tx, p.ID, v, existingTags[v.Extension]) },
			func(ext string) error { return s.removeVariation(ctx, tx, p.ID, ext) },
		)
		if err != nil {
			return err
		}
		return s.reindex(ctx, tx, p.ID)
	})
}

// Delete removes the listing; variations, tag links and dependent stock
// records go with it through the cascading foreign keys.
func (s *PostgresProductStore) Delete(ctx context.Context, id string) error {
	return s.session.WithTx(ctx, func(tx pgx.Tx) error {
		affected, err := s.builder.Delete(ctx, tx, schema.ProductListing.Name, sqlbuild.Eq("id", id))
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.NotFound("product " + id)
		}
		s.logger.Info("product deleted", slog.String("id", id))
		return nil
	})
}

func (s *PostgresProductStore) insertVariation(ctx context.Context, tx pgx.Tx, listingID string, v Variation) error {
	err := s.builder.Insert(ctx, tx, schema.ProductVariations.Name, sqlbuild.Row{
		"listing_id": listingID,
		"extension":  v.Extension,
		"subname":    textOrNull(v.Subname),
		"price":      v.Price,
		"display":    v.Display,
		"overview":   v.Overview,
	})
	if err != nil {
		return err
	}
	return s.linkTags(ctx, tx, schema.ProductVariationTag.Name, sqlbuild.Row{
		"listing_id":          listingID,
		"variation_extension": v.Extension,
	}, v.TagIDs)
}

func (s *PostgresProductStore) updateVariation(ctx context.Context, tx pgx.Tx, listingID string, v Variation, existingTags []int) error {
	key := sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("extension", v.Extension))
	_, err := s.builder.Update(ctx, tx, schema.ProductVariations.Name, sqlbuild.Row{
		"subname":  textOrNull(v.Subname),
		"price":    v.Price,
		"display":  v.Display,
		"overview": v.Overview,
	}, key)
	if err != nil {
		return err
	}
	return s.syncTags(ctx, tx, schema.ProductVariationTag.Name, sqlbuild.Row{
		"listing_id":          listingID,
		"variation_extension": v.Extension,
	}, v.TagIDs, existingTags)
}

// removeVariation drops the tag links first: the link table's foreign keys
// point at the listing, not the variation, so nothing cascades from here.
func (s *PostgresProductStore) removeVariation(ctx context.Context, tx pgx.Tx, listingID, extension string) error {
	_, err := s.builder.Delete(ctx, tx, schema.ProductVariationTag.Name,
		sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("variation_extension", extension)))
	if err != nil {
		return err
	}
	_, err = s.builder.Delete(ctx, tx, schema.ProductVariations.Name,
		sqlbuild.And(sqlbuild.Eq("listing_id", listingID), sqlbuild.Eq("extension", extension)))
	return err
}

// existingVariationTags maps each stored extension to its tag ids. Extensions
// without tags still get an entry so the reconcile diff sees them.
func (s *PostgresProductStore) existingVariationTags(ctx context.Context, tx pgx.Tx, listingID string) (map[string][]int, error) {
	vrows, err := s.builder.Select(ctx, tx, schema.ProductVariations.Name, sqlbuild.SelectRequest{
		Columns: []string{"extension"},
		Where:   sqlbuild.Eq("listing_id", listingID),
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string][]int, len(vrows))
	for _, row := range vrows {
		out[asText(row["extension"])] = nil
	}

	trows, err := s.builder.Select(ctx, tx, schema.ProductVariationTag.Name, sqlbuild.SelectRequest{
		Columns: []string{"variation_extension", "tag_id"},
		Where:   sqlbuild.Eq("listing_id", listingID),
	})
	if err != nil {
		return nil, err
	}
	for _, row := range trows {
		ext := asText(row["variation_extension"])
		out[ext] = append(out[ext], asInt(row["tag_id"]))
	}
	return out, nil
}

func (s *PostgresProductStore) reindex(ctx context.Context, tx pgx.Tx, listingID string) error {
	if err := s.indexer.Reindex(ctx, tx, schema.ProductListing.Name, sqlbuild.Eq("id", listingID)); err != nil {
		return err
	}
	return s.indexer.Reindex(ctx, tx, schema.ProductVariations.Name, sqlbuild.Eq("listing_id", listingID))
}
