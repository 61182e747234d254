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

// ProductSummary is the list-view projection of one product variation.
type ProductSummary struct {
	ListingID string
	Extension string
	Name      string
	Subname   string
	Display   bool
}

// CreateProduct validates and stores a new product listing with its
// variations and tag links.
func (r *Repository) CreateProduct(ctx context.Context, p listing.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return r.products.Create(ctx, p)
}

// GetProduct loads one product with its variations and tag ids.
func (r *Repository) GetProduct(ctx context.Context, id string) (listing.Product, error) {
	return r.products.Get(ctx, id)
}

// UpdateProduct validates and applies a full rewrite of the listing,
// reconciling its variations by extension.
func (r *Repository) UpdateProduct(ctx context.Context, p listing.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	return r.products.Update(ctx, p)
}

// DeleteProduct removes a listing and everything hanging off it.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	return r.products.Delete(ctx, id)
}

// ListProducts returns variation summaries filtered by free text and tag
// selections. With text the order is by relevance, otherwise by id.
func (r *Repository) ListProducts(ctx context.Context, searchText string, tagFilters map[int][]int) ([]ProductSummary, error) {
	keys, err := r.engine.Filter(ctx, facet.Products, searchText, tagFilters)
	if err != nil {
		return nil, err
	}
	return r.productSummaries(ctx, keys)
}

// SearchProducts is text-only product lookup.
func (r *Repository) SearchProducts(ctx context.Context, text string) ([]ProductSummary, error) {
	return r.ListProducts(ctx, text, nil)
}

// SearchComponents finds products usable as replacement parts: those with a
// variation carrying the reserved "Replacement" tag, optionally narrowed by
// free text.
func (r *Repository) SearchComponents(ctx context.Context, text string) ([]ProductSummary, error) {
	rows, err := r.builder.Select(ctx, r.session.Pool(), schema.Tag.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "category_id"},
		Where:   sqlbuild.Eq("name", "Replacement"),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// Nothing is tagged as a replacement part without the tag itself.
		return []ProductSummary{}, nil
	}

	categoryID := 0
	tagIDs := make([]int, 0, len(rows))
	for _, row := range rows {
		categoryID = intValue(row["category_id"])
		tagIDs = append(tagIDs, intValue(row["id"]))
	}

	keys, err := r.engine.Filter(ctx, facet.Products, text, map[int][]int{categoryID: tagIDs})
	if err != nil {
		return nil, err
	}
	return r.productSummaries(ctx, keys)
}

// productSummaries projects facet keys into list rows, preserving key order.
func (r *Repository) productSummaries(ctx context.Context, keys []facet.Key) ([]ProductSummary, error) {
	if len(keys) == 0 {
		return []ProductSummary{}, nil
	}

	seen := make(map[string]bool, len(keys))
	listingIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		if !seen[key.ListingID] {
			seen[key.ListingID] = true
			listingIDs = append(listingIDs, key.ListingID)
		}
	}

	nameRows, err := r.builder.Select(ctx, r.session.Pool(), schema.ProductListing.Name, sqlbuild.SelectRequest{
		Columns: []string{"id", "name"},
		Where:   sqlbuild.AnyOf("id", listingIDs),
	})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(nameRows))
	for _, row := range nameRows {
		names[textValue(row["id"])] = textValue(row["name"])
	}

	type variationInfo struct {
		subname string
		display bool
	}
	variationRows, err := r.builder.Select(ctx, r.session.Pool(), schema.ProductVariations.Name, sqlbuild.SelectRequest{
		Columns: []string{"listing_id", "extension", "subname", "display"},
		Where:   sqlbuild.AnyOf("listing_id", listingIDs),
	})
	if err != nil {
		return nil, err
	}
	variations := make(map[facet.Key]variationInfo, len(variationRows))
	for _, row := range variationRows {
		key := facet.Key{ListingID: textValue(row["listing_id"]), Extension: textValue(row["extension"])}
		variations[key] = variationInfo{
			subname: textValue(row["subname"]),
			display: row["display"] == true,
		}
	}

	summaries := make([]ProductSummary, 0, len(keys))
	for _, key := range keys {
		summary := ProductSummary{
			ListingID: key.ListingID,
			Extension: key.Extension,
			Name:      names[key.ListingID],
			Display:   true,
		}
		if info, ok := variations[key]; ok {
			summary.Subname = info.subname
			summary.Display = info.display
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func validateProduct(p listing.Product) error {
	v := &validate.Validator{}
	v.ListingID("id", p.ID).
		Required("name", p.Name).
		MaxLen("name", p.Name, 255)
	for i, variation := range p.Variations {
		field := fmt.Sprintf("variations[%d]", i)
		v.Required(field+".extension", variation.Extension).
			MaxLen(field+".extension", variation.Extension, 10).
			MaxLen(field+".subname", variation.Subname, 255).
			Min(field+".price", variation.Price, 0)
	}
	return v.Err()
}
