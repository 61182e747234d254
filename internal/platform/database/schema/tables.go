// Copyright (c) 2026 Urban Atelier. All rights reserved.

package schema

// Catalog table declarations. Order matters: referenced tables first.

// Finishes is the fixed metal-finish reference table.
var Finishes = &Table{
	Name: "finishes",
	Columns: []Column{
		{Name: "id", Type: "VARCHAR(5)", NotNull: true},
		{Name: "name", Type: "VARCHAR(255)", NotNull: true},
		{Name: "outdoor", Type: "BOOL", NotNull: true, Default: "FALSE"},
	},
	PrimaryKey: []string{"id"},
}

// ProductListing is the top-level product catalog record.
var ProductListing = &Table{
	Name: "product_listing",
	Columns: []Column{
		{Name: "id", Type: "VARCHAR(10)", NotNull: true},
		{Name: "name", Type: "VARCHAR(255)", NotNull: true},
		{Name: "description", Type: "TEXT"},
	},
	PrimaryKey: []string{"id"},
	Search: []SearchColumn{
		{Name: "id", Weight: 'A'},
		{Name: "name", Weight: 'A'},
		{Name: "description", Weight: 'B'},
	},
}

// ProductVariations holds the purchasable configurations of a product
// listing, keyed by (listing_id, extension).
var ProductVariations = &Table{
	Name: "product_variations",
	Columns: []Column{
		{Name: "listing_id", Type: "VARCHAR(10)", NotNull: true},
		{Name: "extension", Type: "VARCHAR(10)", NotNull: true},
		{Name: "subname", Type: "VARCHAR(255)"},
		{Name: "price", Type: "INT"},
		{Name: "display", Type: "BOOL", NotNull: true, Default: "TRUE"},
		{Name: "overview", Type: "JSONB"},
	},
	Unique:      [][]string{{"listing_id", "extension"}},
	ForeignKeys: []ForeignKey{{Column: "listing_id", RefTable: "product_listing", RefColumn: "id"}},
	Search:      []SearchColumn{{Name: "subname", Weight: 'A'}},
}

// InstockListing is a stock record pointing at a product variation.
var InstockListing = &Table{
	Name: "instock_listing",
	Columns: []Column{
		{Name: "id", Type: "SERIAL", NotNull: true},
		{Name: "sale", Type: "BOOL", NotNull: true, Default: "FALSE"},
		{Name: "price", Type: "INT"},
		{Name: "product_id", Type: "VARCHAR(10)", NotNull: true},
		{Name: "variation_extension", Type: "VARCHAR(10)"},
	},
	PrimaryKey:  []string{"id"},
	ForeignKeys: []ForeignKey{{Column: "product_id", RefTable: "product_listing", RefColumn: "id"}},
}

// InstockItems are the physical units under a stock listing.
var InstockItems = &Table{
	Name: "instock_items",
	Columns: []Column{
		{Name: "listing_id", Type: "INT", NotNull: true},
		{Name: "serial", Type: "INT", NotNull: true},
		{Name: "display", Type: "BOOL", NotNull: true, Default: "TRUE"},
		{Name: "overview", Type: "JSONB"},
	},
	Unique:      [][]string{{"listing_id", "serial"}},
	ForeignKeys: []ForeignKey{{Column: "listing_id", RefTable: "instock_listing", RefColumn: "id"}},
}

// SalvageListing is a salvage catalog record.
var SalvageListing = &Table{
	Name: "salvage_listing",
	Columns: []Column{
		{Name: "id", Type: "VARCHAR(10)", NotNull: true},
		{Name: "name", Type: "VARCHAR(255)", NotNull: true},
		{Name: "description", Type: "TEXT"},
	},
	PrimaryKey: []string{"id"},
	Search: []SearchColumn{
		{Name: "id", Weight: 'A'},
		{Name: "name", Weight: 'A'},
		{Name: "description", Weight: 'B'},
	},
}

// SalvageItems are the physical units under a salvage listing.
var SalvageItems = &Table{
	Name: "salvage_items",
	Columns: []Column{
		{Name: "listing_id", Type: "VARCHAR(10)", NotNull: true},
		{Name: "serial", Type: "INT", NotNull: true},
		{Name: "price", Type: "INT"},
		{Name: "display", Type: "BOOL", NotNull: true, Default: "TRUE"},
		{Name: "overview", Type: "JSONB"},
	},
	Unique:      [][]string{{"listing_id", "serial"}},
	ForeignKeys: []ForeignKey{{Column: "listing_id", RefTable: "salvage_listing", RefColumn: "id"}},
}

// CustomItems are one-off commissioned pieces, keyed by a surrogate id and
// linked back to the product they derive from.
var CustomItems = &Table{
	Name: "custom_items",
	Columns: []Column{
		{Name: "id", Type: "SERIAL", NotNull: true},
		{Name: "name", Type: "VARCHAR(255)", NotNull: true},
		{Name: "description", Type: "TEXT"},
		{Name: "customer", Type: "VARCHAR(255)"},
		{Name: "display", Type: "BOOL", NotNull: true, Default: "TRUE"},
		{Name: "product_id", Type: "VARCHAR(10)"},
		{Name: "variation_extension", Type: "VARCHAR(10)"},
	},
	PrimaryKey:  []string{"id"},
	ForeignKeys: []ForeignKey{{Column: "product_id", RefTable: "product_listing", RefColumn: "id"}},
	Search: []SearchColumn{
		{Name: "name", Weight: 'A'},
		{Name: "product_id", Weight: 'A'},
		{Name: "description", Weight: 'B'},
		{Name: "customer", Weight: 'B'},
	},
}

// TagCategories is the fixed facet grouping table. The unique name makes the
// seed insert idempotent.
var TagCategories = &Table{
	Name: "tag_categories",
	Columns: []Column{
		{Name: "id", Type: "SERIAL", NotNull: true},
		{Name: "name", Type: "VARCHAR(255)", NotNull: true},
		{Name: "description", Type: "TEXT"},
	},
	PrimaryKey: []string{"id"},
	Unique:     [][]string{{"name"}},
}

// Tag is a labeled facet value belonging to exactly one category.
var Tag = &Table{
	Name: "tag",
	Columns: []Column{
		{Name: "id", Type: "SERIAL", NotNull: true},
		{Name: "name", Type: "VARCHAR(255)", NotNull: true},
		{Name: "category_id", Type: "INT", NotNull: true},
	},
	PrimaryKey:  []string{"id"},
	ForeignKeys: []ForeignKey{{Column: "category_id", RefTable: "tag_categories", RefColumn: "id"}},
	Search:      []SearchColumn{{Name: "name", Weight: 'A'}},
}

// ProductVariationTag links variations to tags.
var ProductVariationTag = &Table{
	Name: "product_variation__tag",
	Columns: []Column{
		{Name: "listing_id", Type: "VARCHAR(10)", NotNull: true},
		{Name: "variation_extension", Type: "VARCHAR(10)", NotNull: true},
		{Name: "tag_id", Type: "INT", NotNull: true},
	},
	Unique: [][]string{{"listing_id", "variation_extension", "tag_id"}},
	ForeignKeys: []ForeignKey{
		{Column: "listing_id", RefTable: "product_listing", RefColumn: "id"},
		{Column: "tag_id", RefTable: "tag", RefColumn: "id"},
	},
}

// InstockListingTag links stock items to tags.
var InstockListingTag = &Table{
	Name: "instock_listing__tag",
	Columns: []Column{
		{Name: "listing_id", Type: "INT", NotNull: true},
		{Name: "item_serial", Type: "INT", NotNull: true},
		{Name: "tag_id", Type: "INT", NotNull: true},
	},
	Unique: [][]string{{"listing_id", "item_serial", "tag_id"}},
	ForeignKeys: []ForeignKey{
		{Column: "listing_id", RefTable: "instock_listing", RefColumn: "id"},
		{Column: "tag_id", RefTable: "tag", RefColumn: "id"},
	},
}

// SalvageListingTag links salvage items to tags.
var SalvageListingTag = &Table{
	Name: "salvage_listing__tag",
	Columns: []Column{
		{Name: "listing_id", Type: "VARCHAR(10)", NotNull: true},
		{Name: "item_serial", Type: "INT", NotNull: true},
		{Name: "tag_id", Type: "INT", NotNull: true},
	},
	Unique: [][]string{{"listing_id", "item_serial", "tag_id"}},
	ForeignKeys: []ForeignKey{
		{Column: "listing_id", RefTable: "salvage_listing", RefColumn: "id"},
		{Column: "tag_id", RefTable: "tag", RefColumn: "id"},
	},
}

// CustomItemsTag links custom items to tags.
var CustomItemsTag = &Table{
	Name: "custom_items__tag",
	Columns: []Column{
		{Name: "item_id", Type: "INT", NotNull: true},
		{Name: "tag_id", Type: "INT", NotNull: true},
	},
	Unique: [][]string{{"item_id", "tag_id"}},
	ForeignKeys: []ForeignKey{
		{Column: "item_id", RefTable: "custom_items", RefColumn: "id"},
		{Column: "tag_id", RefTable: "tag", RefColumn: "id"},
	},
}

// Default returns the full catalog registry in dependency order.
func Default() *Catalog {
	return NewCatalog(
		Finishes,
		ProductListing,
		ProductVariations,
		InstockListing,
		InstockItems,
		SalvageListing,
		SalvageItems,
		CustomItems,
		TagCategories,
		Tag,
		ProductVariationTag,
		InstockListingTag,
		SalvageListingTag,
		CustomItemsTag,
	)
}

// Seed declares reference rows inserted during initialization. Conflict
// names the unique key that makes re-running the insert a no-op.
type Seed struct {
	Table    string
	Conflict []string
	Rows     []map[string]any
}

// Seeds is the reference data installed by EnsureSchema: the metal-finish
// list and the eight facet categories.
var Seeds = []Seed{
	{
		Table:    "finishes",
		Conflict: []string{"id"},
		Rows: []map[string]any{
			{"id": "PB", "name": "Polished Brass", "outdoor": true},
			{"id": "PN", "name": "Polished Nickel", "outdoor": true},
			{"id": "GP", "name": "Green Patina", "outdoor": true},
			{"id": "BP", "name": "Brown Patina", "outdoor": true},
			{"id": "AB", "name": "Antique Brass", "outdoor": true},
			{"id": "SN", "name": "Satin Nickel", "outdoor": true},
			{"id": "LP", "name": "Light Pewter", "outdoor": true},
			{"id": "STBR", "name": "Statuary Brown", "outdoor": false},
			{"id": "STBL", "name": "Statuary Black", "outdoor": false},
			{"id": "PC", "name": "Polished Chrome", "outdoor": true},
			{"id": "BN", "name": "Black Nickel", "outdoor": true},
		},
	},
	{
		Table:    "tag_categories",
		Conflict: []string{"name"},
		Rows: []map[string]any{
			{"name": "Class", "description": "Whether the item is a(n) Lighting, Bathroom, Washstands, Furnishing, Mirrors, Cabinets, Display, Hardware, Tile"},
			{"name": "Category", "description": "The order of the classification, such as sconce, hanging, flushmount, etc."},
			{"name": "Style", "description": "The artistic period that the item is from."},
			{"name": "Family", "description": "The structural grouping of the item, such as \"torch\" for Loft Light, Urban Torch, etc."},
			{"name": "Designer", "description": "The name of the designer who created the piece."},
			{"name": "Material", "description": "The type of materials used to create the item, such as alabaster, marble, aluminum, brass, etc."},
			{"name": "Distinction", "description": "Specifically for lighting used to distinguish exterior and interior."},
			{"name": "Environmental", "description": "Specifies any environmental conditions the item can be used in, such as waterproof."},
		},
	},
}
