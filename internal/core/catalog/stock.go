package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urbanatelier/catalog/internal/core/facet"
	"github.com/urbanatelier/catalog/internal/core/listing"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/validate"
)

// StockSummary is the list-view projection of one in-stock listing.
type StockSummary struct {
	ID                 int
	ProductID          string
	VariationExtension string
	Sale               bool
	Price              int
}

// CreateStock validates and stores a new stock listing, returning its
// generated id.
func (r *Repository) CreateStock(ctx context.Context, l listing.StockListing) (int, error) {
	if err := validateStock(l); err != nil {
		return 0, err
	}
	return r.stock.Create(ctx, l)
}

// GetStock loads one stock listing with its items and tag ids.
func (r *Repository) GetStock(ctx context.Context, id int) (listing.StockListing, error) {
	return r.stock.Get(ctx, id)
}

// UpdateStock validates and applies a full rewrite of the listing,
// reconciling its items by serial.
func (r *Repository) UpdateStock(ctx context.Context, l listing.StockListing) error {
	if err := validateStock(l); err != nil {
		return err
	}
	return r.stock.Update(ctx, l)
}

// DeleteStock removes a stock listing and its items.
func (r *Repository) DeleteStock(ctx context.Context, id int) error {
	return r.stock.Delete(ctx, id)
}

// ListStock returns stock summaries filtered by tag selections. Stock rows
// carry no searchable text, so there is no free-text argument.
func (r *Repository) ListStock(ctx context.Context, tagFilters map[int][]int) ([]StockSummary, error) {
	keys, err := r.engine.Filter(ctx, facet.Stock, "", tagFilters)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []StockSummary{}, nil
	}

	ids := make([]int, len(keys))
	for i, key := range keys {
		id, err := strconv.Atoi(key.ListingID)
		if err != nil {
			return nil, fmt.Errorf("malformed stock key %q: %w", key.ListingID, err)
		}
		ids[i] = id
	}

	rows, err := r.builder.Select(ctx, r.session.Pool(), schema.InstockListing.Name, sqlbuild.SelectRequest{
		Where: sqlbuild.AnyOf("id", ids),
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[int]StockSummary, len(rows))
	for _, row := range rows {
		summary := StockSummary{
			ID:                 intValue(row["id"]),
			ProductID:          textValue(row["product_id"]),
			VariationExtension: textValue(row["variation_extension"]),
			Sale:               row["sale"] == true,
			Price:              intValue(row["price"]),
		}
		byID[summary.ID] = summary
	}

	summaries := make([]StockSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := byID[id]; ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func validateStock(l listing.StockListing) error {
	v := &validate.Validator{}
	v.ListingID("product_id", l.ProductID).
		Min("price", l.Price, 0)
	for i, item := range l.Items {
		field := fmt.Sprintf("items[%d]", i)
		v.Min(field+".serial", item.Serial, 0)
	}
	return v.Err()
}
