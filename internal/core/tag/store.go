package tag

import "context"

// Store persists the facet vocabulary.
type Store interface {
	// Create inserts a tag and returns its generated id.
	Create(ctx context.Context, t Tag) (int, error)
	// Get loads one tag by id.
	Get(ctx context.Context, id int) (Tag, error)
	// Update renames a tag or moves it to another category.
	Update(ctx context.Context, t Tag) error
	// Delete removes a tag; its links on every entity cascade away.
	Delete(ctx context.Context, id int) error

	// List returns every tag, optionally restricted to one category
	// (categoryID <= 0 means all), in name order.
	List(ctx context.Context, categoryID int) ([]Tag, error)
	// Search returns the tags matching the text by relevance. Empty text
	// falls back to the full list.
	Search(ctx context.Context, text string) ([]Tag, error)

	// Categories returns the seeded facet categories in id order.
	Categories(ctx context.Context) ([]Category, error)
	// Finishes returns the seeded metal-finish list in id order.
	Finishes(ctx context.Context) ([]Finish, error)
}
