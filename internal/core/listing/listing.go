/*
Package listing holds the catalog entity types and their stores.

Four entity families share one shape: a listing record, zero or more child
records under it, and tag links hanging off the children (or, for custom
items, off the record itself). The stores write each mutation as one
transaction, reconcile children by natural key instead of rewriting them, and
refresh the derived search vectors before committing.
*/
package listing

// Product is a catalog product listing with its purchasable variations.
type Product struct {
	ID          string
	Name        string
	Description string
	Variations  []Variation
}

// Variation is one purchasable configuration of a product, identified within
// the product by its extension code.
type Variation struct {
	Extension string
	Subname   string
	Price     int
	Display   bool
	Overview  map[string]any
	TagIDs    []int
}

// StockListing is an in-stock offer pointing at a product variation.
type StockListing struct {
	ID                 int
	Sale               bool
	Price              int
	ProductID          string
	VariationExtension string
	Items              []StockItem
}

// StockItem is one physical unit under a stock listing, identified by its
// serial within the listing.
type StockItem struct {
	Serial   int
	Display  bool
	Overview map[string]any
	TagIDs   []int
}

// SalvageListing is a salvage record with its recovered units.
type SalvageListing struct {
	ID          string
	Name        string
	Description string
	Items       []SalvageItem
}

// SalvageItem is one recovered unit under a salvage listing.
type SalvageItem struct {
	Serial   int
	Price    int
	Display  bool
	Overview map[string]any
	TagIDs   []int
}

// CustomItem is a one-off commissioned piece, optionally linked to the
// product it derives from.
type CustomItem struct {
	ID                 int
	Name               string
	Description        string
	Customer           string
	Display            bool
	ProductID          string
	VariationExtension string
	TagIDs             []int
}
