package facet

import "context"

// Store answers the membership queries the engine intersects.
type Store interface {
	// TagKeys returns the distinct keys associated with any of the given
	// tag ids (the union within one category's filter set). Unknown tag ids
	// contribute nothing, so an all-unknown set yields an empty result.
	TagKeys(ctx context.Context, kind Kind, tagIDs []int) ([]Key, error)

	// SearchKeys returns the keys matching the free-text query, ordered by
	// descending relevance. For products, listing-level text matches expand
	// to every variation of the listing.
	SearchKeys(ctx context.Context, kind Kind, text string) ([]Ranked, error)

	// AllKeys returns every key of the kind in natural id order.
	AllKeys(ctx context.Context, kind Kind) ([]Key, error)
}
