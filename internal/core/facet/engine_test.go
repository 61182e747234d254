package facet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanatelier/catalog/internal/core/facet"
)

// fakeStore serves canned membership data so the set algebra runs without a
// database.
type fakeStore struct {
	tagKeys map[int][]facet.Key // tag id -> keys carrying it
	ranked  []facet.Ranked
	all     []facet.Key
}

func (f *fakeStore) TagKeys(_ context.Context, _ facet.Kind, tagIDs []int) ([]facet.Key, error) {
	seen := make(map[facet.Key]bool)
	var out []facet.Key
	for _, id := range tagIDs {
		for _, key := range f.tagKeys[id] {
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) SearchKeys(_ context.Context, _ facet.Kind, _ string) ([]facet.Ranked, error) {
	return f.ranked, nil
}

func (f *fakeStore) AllKeys(_ context.Context, _ facet.Kind) ([]facet.Key, error) {
	return f.all, nil
}

func key(listing, ext string) facet.Key {
	return facet.Key{ListingID: listing, Extension: ext}
}

// The fixture: three variations tagged across two categories.
//
//	tag 1 (Class=Lighting):  UA01-PB, UA01-PN, UA02-PB
//	tag 2 (Class=Hardware):  UA03-PB
//	tag 5 (Style=Deco):      UA01-PN, UA03-PB
func newFixture() *fakeStore {
	return &fakeStore{
		tagKeys: map[int][]facet.Key{
			1: {key("UA01", "PB"), key("UA01", "PN"), key("UA02", "PB")},
			2: {key("UA03", "PB")},
			5: {key("UA01", "PN"), key("UA03", "PB")},
		},
		all: []facet.Key{
			key("UA01", "PB"), key("UA01", "PN"), key("UA02", "PB"), key("UA03", "PB"),
		},
	}
}

/*
TestFilter_WithinCategoryUnion ORs tags selected in the same category.
*/
func TestFilter_WithinCategoryUnion(t *testing.T) {
	engine := facet.NewEngine(newFixture())

	keys, err := engine.Filter(context.Background(), facet.Products, "", map[int][]int{
		10: {1, 2}, // Class: Lighting OR Hardware
	})
	require.NoError(t, err)

	assert.Equal(t, []facet.Key{
		key("UA01", "PB"), key("UA01", "PN"), key("UA02", "PB"), key("UA03", "PB"),
	}, keys)
}

/*
TestFilter_AcrossCategoryIntersection ANDs selections across categories.
*/
func TestFilter_AcrossCategoryIntersection(t *testing.T) {
	engine := facet.NewEngine(newFixture())

	keys, err := engine.Filter(context.Background(), facet.Products, "", map[int][]int{
		10: {1, 2}, // Class: Lighting OR Hardware
		20: {5},    // Style: Deco
	})
	require.NoError(t, err)

	assert.Equal(t, []facet.Key{key("UA01", "PN"), key("UA03", "PB")}, keys)
}

/*
TestFilter_EmptyCategoryIgnored treats a category with no selected tags as
unconstrained rather than as "matches nothing".
*/
func TestFilter_EmptyCategoryIgnored(t *testing.T) {
	engine := facet.NewEngine(newFixture())

	keys, err := engine.Filter(context.Background(), facet.Products, "", map[int][]int{
		10: {2},
		20: {}, // no selection in Style
	})
	require.NoError(t, err)

	assert.Equal(t, []facet.Key{key("UA03", "PB")}, keys)
}

/*
TestFilter_UnknownTagsYieldEmpty returns an empty result, not an error, when
a filter references tag ids that exist nowhere.
*/
func TestFilter_UnknownTagsYieldEmpty(t *testing.T) {
	engine := facet.NewEngine(newFixture())

	keys, err := engine.Filter(context.Background(), facet.Products, "", map[int][]int{
		10: {999},
	})
	require.NoError(t, err)
	assert.Empty(t, keys)

	// An unknown tag in one category also empties the intersection.
	keys, err = engine.Filter(context.Background(), facet.Products, "", map[int][]int{
		10: {1},
		20: {999},
	})
	require.NoError(t, err)
	assert.Empty(t, keys)
}

/*
TestFilter_Unconstrained returns every key in natural order with no text and
no filters.
*/
func TestFilter_Unconstrained(t *testing.T) {
	store := newFixture()
	engine := facet.NewEngine(store)

	keys, err := engine.Filter(context.Background(), facet.Products, "", nil)
	require.NoError(t, err)
	assert.Equal(t, store.all, keys)
}

/*
TestFilter_FreeTextKeepsRankOrder intersects the ranked candidate set with
the tag members while preserving relevance order.
*/
func TestFilter_FreeTextKeepsRankOrder(t *testing.T) {
	store := newFixture()
	store.ranked = []facet.Ranked{
		{Key: key("UA03", "PB"), Rank: 0.9},
		{Key: key("UA01", "PN"), Rank: 0.7},
		{Key: key("UA01", "PB"), Rank: 0.2},
	}
	engine := facet.NewEngine(store)

	// Text only: the full candidate list in rank order.
	keys, err := engine.Filter(context.Background(), facet.Products, "deco", nil)
	require.NoError(t, err)
	assert.Equal(t, []facet.Key{key("UA03", "PB"), key("UA01", "PN"), key("UA01", "PB")}, keys)

	// Text plus tags: candidates outside the member set drop out, order holds.
	keys, err = engine.Filter(context.Background(), facet.Products, "deco", map[int][]int{
		20: {5},
	})
	require.NoError(t, err)
	assert.Equal(t, []facet.Key{key("UA03", "PB"), key("UA01", "PN")}, keys)
}

/*
TestFilter_NaturalOrdering sorts intersection results numerically where ids
are numeric and lexically otherwise.
*/
func TestFilter_NaturalOrdering(t *testing.T) {
	store := &fakeStore{
		tagKeys: map[int][]facet.Key{
			1: {key("10", ""), key("2", ""), key("1", "")},
		},
	}
	engine := facet.NewEngine(store)

	keys, err := engine.Filter(context.Background(), facet.Custom, "", map[int][]int{
		10: {1},
	})
	require.NoError(t, err)
	assert.Equal(t, []facet.Key{key("1", ""), key("2", ""), key("10", "")}, keys)
}
