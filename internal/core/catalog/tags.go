package catalog

import (
	"context"

	"github.com/urbanatelier/catalog/internal/core/tag"
	"github.com/urbanatelier/catalog/internal/platform/validate"
)

// CreateTag validates and stores a new tag, returning its generated id.
func (r *Repository) CreateTag(ctx context.Context, t tag.Tag) (int, error) {
	if err := validateTag(t); err != nil {
		return 0, err
	}
	return r.tags.Create(ctx, t)
}

// GetTag loads one tag by id.
func (r *Repository) GetTag(ctx context.Context, id int) (tag.Tag, error) {
	return r.tags.Get(ctx, id)
}

// UpdateTag renames a tag or moves it to another category.
func (r *Repository) UpdateTag(ctx context.Context, t tag.Tag) error {
	if err := validateTag(t); err != nil {
		return err
	}
	return r.tags.Update(ctx, t)
}

// DeleteTag removes a tag everywhere it is used.
func (r *Repository) DeleteTag(ctx context.Context, id int) error {
	return r.tags.Delete(ctx, id)
}

// ListTags returns every tag, optionally restricted to one category
// (categoryID <= 0 means all), in name order.
func (r *Repository) ListTags(ctx context.Context, categoryID int) ([]tag.Tag, error) {
	return r.tags.List(ctx, categoryID)
}

// SearchTags returns the tags matching the text by relevance. Empty text
// falls back to the full list.
func (r *Repository) SearchTags(ctx context.Context, text string) ([]tag.Tag, error) {
	return r.tags.Search(ctx, text)
}

// TagCategories returns the seeded facet categories, served from the cache
// when one is configured.
func (r *Repository) TagCategories(ctx context.Context) ([]tag.Category, error) {
	var categories []tag.Category
	if r.cache.get(ctx, cacheKeyCategories, &categories) {
		return categories, nil
	}
	categories, err := r.tags.Categories(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.put(ctx, cacheKeyCategories, categories)
	return categories, nil
}

// MetalFinishes returns the seeded metal-finish list, served from the cache
// when one is configured.
func (r *Repository) MetalFinishes(ctx context.Context) ([]tag.Finish, error) {
	var finishes []tag.Finish
	if r.cache.get(ctx, cacheKeyFinishes, &finishes) {
		return finishes, nil
	}
	finishes, err := r.tags.Finishes(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.put(ctx, cacheKeyFinishes, finishes)
	return finishes, nil
}

func validateTag(t tag.Tag) error {
	v := &validate.Validator{}
	v.Required("name", t.Name).
		MaxLen("name", t.Name, 255).
		Min("category_id", t.CategoryID, 1)
	return v.Err()
}
