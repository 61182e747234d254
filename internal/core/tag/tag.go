/*
Package tag manages the facet vocabulary: categories, the tags under them,
and the fixed metal-finish reference list.

Categories and finishes are seeded reference data and read-only at runtime;
tags are user-maintained and fully writable. Tag writes refresh the tag
table's search vector so tag lookup by text stays current.
*/
package tag

// Tag is one facet value. Every tag belongs to exactly one category.
type Tag struct {
	ID         int
	Name       string
	CategoryID int
}

// Category groups tags into one facet dimension (Class, Style, Material...).
type Category struct {
	ID          int
	Name        string
	Description string
}

// Finish is one entry of the metal-finish reference list.
type Finish struct {
	ID      string
	Name    string
	Outdoor bool
}
