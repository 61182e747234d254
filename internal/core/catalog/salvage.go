package catalog

import (
	"context"
	"fmt"

	"github.com/urbanatelier/catalog/internal/core/facet"
	"github.com/urbanatelier/catalog/internal/core/listing"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/validate"
)

// SalvageSummary is the list-view projection of one salvage listing.
type SalvageSummary struct {
	ID   string
	Name string
}

// CreateSalvage validates and stores a new salvage listing with its items.
func (r *Repository) CreateSalvage(ctx context.Context, l listing.SalvageListing) error {
	if err := validateSalvage(l); err != nil {
		return err
	}
	return r.salvage.Create(ctx, l)
}

// GetSalvage loads one salvage listing with its items and tag ids.
func (r *Repository) GetSalvage(ctx context.Context, id string) (listing.SalvageListing, error) {
	return r.salvage.Get(ctx, id)
}

// UpdateSalvage validates and applies a full rewrite of the listing,
// reconciling its items by serial.
func (r *Repository) UpdateSalvage(ctx context.Context, l listing.SalvageListing) error {
	if err := validateSalvage(l); err != nil {
		return err
	}
	return r.salvage.Update(ctx, l)
}

// DeleteSalvage removes a salvage listing and its items.
func (r *Repository) DeleteSalvage(ctx context.Context, id string) error {
	return r.salvage.Delete(ctx, id)
}

// ListSalvage returns salvage summaries filtered by free text and tag
// selections. With text the order is by relevance, otherwise by id.
func (r *Repository) ListSalvage(ctx context.Context, searchText string, tagFilters map[int][]int) ([]SalvageSummary, error) {
	keys, err := r.engine.Filter(ctx, facet.Salvage, searchText, tagFilters)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []SalvageSummary{}, nil
	}

	ids := make([]string, len(keys))
	for i, key := range keys {
		ids[i] = key.ListingID
	}
	rows, err := r.builder.Select(ctx, r.session.Pool(), schema.SalvageListing.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name"},
		Where:   sqlbuild.AnyOf("id", ids),
	})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[textValue(row["id"])] = textValue(row["name"])
	}

	summaries := make([]SalvageSummary, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			summaries = append(summaries, SalvageSummary{ID: id, Name: name})
		}
	}
	return summaries, nil
}

func validateSalvage(l listing.SalvageListing) error {
	v := &validate.Validator{}
	v.ListingID("id", l.ID).
		Required("name", l.Name).
		MaxLen("name", l.Name, 255)
	for i, item := range l.Items {
		field := fmt.Sprintf("items[%d]", i)
		v.Min(field+".serial", item.Serial, 0).
			Min(field+".price", item.Price, 0)
	}
	return v.Err()
}
