package listing

import "context"

// ProductStore persists product listings with their variations and tag links.
type ProductStore interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

// StockStore persists in-stock listings with their items and tag links.
type StockStore interface {
	Create(ctx context.Context, l StockListing) (int, error)
	Get(ctx context.Context, id int) (StockListing, error)
	Update(ctx context.Context, l StockListing) error
	Delete(ctx context.Context, id int) error
}

// SalvageStore persists salvage listings with their items and tag links.
type SalvageStore interface {
	Create(ctx context.Context, l SalvageListing) error
	Get(ctx context.Context, id string) (SalvageListing, error)
	Update(ctx context.Context, l SalvageListing) error
	Delete(ctx context.Context, id string) error
}

// CustomStore persists custom items with their tag links.
type CustomStore interface {
	Create(ctx context.Context, item CustomItem) (int, error)
	Get(ctx context.Context, id int) (CustomItem, error)
	Update(ctx context.Context, item CustomItem) error
	Delete(ctx context.Context, id int) error
}
