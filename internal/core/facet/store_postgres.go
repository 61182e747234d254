package facet

import (
	"context"
	"sort"
	"strconv"

	"github.com/urbanatelier/catalog/internal/core/search"
	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
)

// PostgresStore answers membership queries over the association and listing
// tables. All queries are read-only and run outside any transaction.
type PostgresStore struct {
	db      sqlbuild.Querier
	builder *sqlbuild.Builder
	indexer *search.Indexer
}

// NewPostgresStore constructs the membership store.
func NewPostgresStore(db sqlbuild.Querier, builder *sqlbuild.Builder, indexer *search.Indexer) *PostgresStore {
	return &PostgresStore{db: db, builder: builder, indexer: indexer}
}

// TagKeys implements [Store]. One call covers one category's filter set:
// tag_id = ANY($1) is the union within the category.
func (s *PostgresStore) TagKeys(ctx context.Context, kind Kind, tagIDs []int) ([]Key, error) {
	switch kind {
	case Products:
		rows, err := s.builder.Select(ctx, s.db, schema.ProductVariationTag.Name, sqlbuild.SelectRequest{
			Columns:  []string{"listing_id", "variation_extension"},
			Distinct: true,
			Where:    sqlbuild.AnyOf("tag_id", tagIDs),
		})
		if err != nil {
			return nil, err
		}
		keys := make([]Key, len(rows))
		for i, row := range rows {
			keys[i] = Key{ListingID: asString(row["listing_id"]), Extension: asString(row["variation_extension"])}
		}
		return keys, nil

	case Stock:
		return s.listingIDKeys(ctx, schema.InstockListingTag.Name, "listing_id", tagIDs)
	case Salvage:
		return s.listingIDKeys(ctx, schema.SalvageListingTag.Name, "listing_id", tagIDs)
	case Custom:
		return s.listingIDKeys(ctx, schema.CustomItemsTag.Name, "item_id", tagIDs)
	default:
		return nil, apperr.SchemaValidation("unknown entity kind %q", kind)
	}
}

// SearchKeys implements [Store].
func (s *PostgresStore) SearchKeys(ctx context.Context, kind Kind, text string) ([]Ranked, error) {
	switch kind {
	case Products:
		return s.searchProductKeys(ctx, text)
	case Salvage:
		return s.searchSingleKeys(ctx, schema.SalvageListing.Name, "id", text)
	case Custom:
		return s.searchSingleKeys(ctx, schema.CustomItems.Name, "id", text)
	case Stock:
		// Stock listings carry no text of their own; text search over stock
		// goes through the product it references.
		return []Ranked{}, nil
	default:
		return nil, apperr.SchemaValidation("unknown entity kind %q", kind)
	}
}

// AllKeys implements [Store].
func (s *PostgresStore) AllKeys(ctx context.Context, kind Kind) ([]Key, error) {
	switch kind {
	case Products:
		rows, err := s.builder.Select(ctx, s.db, schema.ProductVariations.Name, sqlbuild.SelectRequest{
			Columns: []string{"listing_id", "extension"},
			Order:   []sqlbuild.Order{{Column: "listing_id"}, {Column: "extension"}},
		})
		if err != nil {
			return nil, err
		}
		keys := make([]Key, len(rows))
		for i, row := range rows {
			keys[i] = Key{ListingID: asString(row["listing_id"]), Extension: asString(row["extension"])}
		}
		return keys, nil

	case Stock:
		return s.allIDKeys(ctx, schema.InstockListing.Name)
	case Salvage:
		return s.allIDKeys(ctx, schema.SalvageListing.Name)
	case Custom:
		return s.allIDKeys(ctx, schema.CustomItems.Name)
	default:
		return nil, apperr.SchemaValidation("unknown entity kind %q", kind)
	}
}

// searchProductKeys merges listing-level and variation-level text matches
// into ranked (listing, extension) pairs. A listing-level hit covers every
// variation of the listing; when both levels hit, the higher rank wins.
func (s *PostgresStore) searchProductKeys(ctx context.Context, text string) ([]Ranked, error) {
	listingMatches, err := s.indexer.Search(ctx, s.db, schema.ProductListing.Name, text, 0)
	if err != nil {
		return nil, err
	}
	variationMatches, err := s.indexer.Search(ctx, s.db, schema.ProductVariations.Name, text, 0)
	if err != nil {
		return nil, err
	}

	ranks := make(map[Key]float64)
	keep := func(key Key, rank float64) {
		if existing, ok := ranks[key]; !ok || rank > existing {
			ranks[key] = rank
		}
	}

	if len(listingMatches) > 0 {
		listingIDs := make([]string, len(listingMatches))
		for i, m := range listingMatches {
			listingIDs[i] = asString(m.Row["id"])
		}
		variationRows, err := s.builder.Select(ctx, s.db, schema.ProductVariations.Name, sqlbuild.SelectRequest{
			Columns: []string{"listing_id", "extension"},
			Where:   sqlbuild.AnyOf("listing_id", listingIDs),
		})
		if err != nil {
			return nil, err
		}
		extensions := make(map[string][]string)
		for _, row := range variationRows {
			id := asString(row["listing_id"])
			extensions[id] = append(extensions[id], asString(row["extension"]))
		}
		for _, m := range listingMatches {
			id := asString(m.Row["id"])
			if exts := extensions[id]; len(exts) > 0 {
				for _, ext := range exts {
					keep(Key{ListingID: id, Extension: ext}, m.Rank)
				}
			} else {
				// A listing without variations still matches as itself.
				keep(Key{ListingID: id}, m.Rank)
			}
		}
	}

	for _, m := range variationMatches {
		keep(Key{ListingID: asString(m.Row["listing_id"]), Extension: asString(m.Row["extension"])}, m.Rank)
	}

	return rankOrder(ranks), nil
}

// searchSingleKeys runs a ranked search over a table keyed by a single id.
func (s *PostgresStore) searchSingleKeys(ctx context.Context, table, idColumn, text string) ([]Ranked, error) {
	matches, err := s.indexer.Search(ctx, s.db, table, text, 0)
	if err != nil {
		return nil, err
	}
	ranked := make([]Ranked, len(matches))
	for i, m := range matches {
		ranked[i] = Ranked{Key: Key{ListingID: asString(m.Row[idColumn])}, Rank: m.Rank}
	}
	return ranked, nil
}

func (s *PostgresStore) listingIDKeys(ctx context.Context, table, idColumn string, tagIDs []int) ([]Key, error) {
	rows, err := s.builder.Select(ctx, s.db, table, sqlbuild.SelectRequest{
		Columns:  []string{idColumn},
		Distinct: true,
		Where:    sqlbuild.AnyOf("tag_id", tagIDs),
	})
	if err != nil {
		return nil, err
	}
	keys := make([]Key, len(rows))
	for i, row := range rows {
		keys[i] = Key{ListingID: asString(row[idColumn])}
	}
	return keys, nil
}

func (s *PostgresStore) allIDKeys(ctx context.Context, table string) ([]Key, error) {
	rows, err := s.builder.Select(ctx, s.db, table, sqlbuild.SelectRequest{
		Columns: []string{"id"},
		Order:   []sqlbuild.Order{{Column: "id"}},
	})
	if err != nil {
		return nil, err
	}
	keys := make([]Key, len(rows))
	for i, row := range rows {
		keys[i] = Key{ListingID: asString(row["id"])}
	}
	return keys, nil
}

// rankOrder flattens a rank map into descending-rank, then natural-key order.
func rankOrder(ranks map[Key]float64) []Ranked {
	out := make([]Ranked, 0, len(ranks))
	for key, rank := range ranks {
		out = append(out, Ranked{Key: key, Rank: rank})
	}
	sortRanked(out)
	return out
}

func sortRanked(ranked []Ranked) {
	sortSlice := func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank > ranked[j].Rank
		}
		return compareKeys(ranked[i].Key, ranked[j].Key) < 0
	}
	sort.Slice(ranked, sortSlice)
}

// asString renders a key column value, converting the integer ids of the
// surrogate-keyed tables.
func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int32:
		return strconv.Itoa(int(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case nil:
		return ""
	default:
		return ""
	}
}
