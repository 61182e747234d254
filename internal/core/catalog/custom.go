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

// CustomSummary is the list-view projection of one custom item.
type CustomSummary struct {
	ID        int
	Name      string
	Customer  string
	ProductID string
}

// CreateCustom validates and stores a new custom item, returning its
// generated id.
func (r *Repository) CreateCustom(ctx context.Context, item listing.CustomItem) (int, error) {
	if err := validateCustom(item); err != nil {
		return 0, err
	}
	return r.custom.Create(ctx, item)
}

// GetCustom loads one custom item with its tag ids.
func (r *Repository) GetCustom(ctx context.Context, id int) (listing.CustomItem, error) {
	return r.custom.Get(ctx, id)
}

// UpdateCustom validates and applies a full rewrite of the item, diffing its
// tag links.
func (r *Repository) UpdateCustom(ctx context.Context, item listing.CustomItem) error {
	if err := validateCustom(item); err != nil {
		return err
	}
	return r.custom.Update(ctx, item)
}

// DeleteCustom removes a custom item and its tag links.
func (r *Repository) DeleteCustom(ctx context.Context, id int) error {
	return r.custom.Delete(ctx, id)
}

// ListCustom returns custom-item summaries filtered by free text and tag
// selections. With text the order is by relevance, otherwise by id.
func (r *Repository) ListCustom(ctx context.Context, searchText string, tagFilters map[int][]int) ([]CustomSummary, error) {
	keys, err := r.engine.Filter(ctx, facet.Custom, searchText, tagFilters)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []CustomSummary{}, nil
	}

	ids := make([]int, len(keys))
	for i, key := range keys {
		id, err := strconv.Atoi(key.ListingID)
		if err != nil {
			return nil, fmt.Errorf("malformed custom key %q: %w", key.ListingID, err)
		}
		ids[i] = id
	}

	rows, err := r.builder.Select(ctx, r.session.Pool(), schema.CustomItems.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name", "customer", "product_id"},
		Where:   sqlbuild.AnyOf("id", ids),
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[int]CustomSummary, len(rows))
	for _, row := range rows {
		summary := CustomSummary{
			ID:        intValue(row["id"]),
			Name:      textValue(row["name"]),
			Customer:  textValue(row["customer"]),
			ProductID: textValue(row["product_id"]),
		}
		byID[summary.ID] = summary
	}

	summaries := make([]CustomSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := byID[id]; ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func validateCustom(item listing.CustomItem) error {
	v := &validate.Validator{}
	v.Required("name", item.Name).
		MaxLen("name", item.Name, 255).
		MaxLen("customer", item.Customer, 255)
	if item.ProductID != "" {
		v.ListingID("product_id", item.ProductID)
	}
	return v.Err()
}
