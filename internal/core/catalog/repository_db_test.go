package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanatelier/catalog/internal/core/catalog"
	"github.com/urbanatelier/catalog/internal/core/listing"
	"github.com/urbanatelier/catalog/internal/core/search"
	"github.com/urbanatelier/catalog/internal/core/tag"
	"github.com/urbanatelier/catalog/internal/platform/apperr"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/postgres"
)

// newTestRepository connects to the database named by TEST_DATABASE_URL and
// rebuilds the schema from scratch. Without the variable the test is skipped,
// keeping the default `go test` run hermetic.
func newTestRepository(t *testing.T) *catalog.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping store round-trip tests")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	session := postgres.NewSession(pool, logger)
	t.Cleanup(session.Close)

	builder := sqlbuild.New(schema.Default())
	indexer := search.NewIndexer(builder, nil)
	repo := catalog.New(session, builder, indexer, nil, logger)

	require.NoError(t, repo.Reset(ctx))
	require.NoError(t, repo.Initialize(ctx))
	return repo
}

// materialTag creates one tag in the seeded Material category.
func materialTag(t *testing.T, repo *catalog.Repository, name string) int {
	t.Helper()
	ctx := context.Background()

	categories, err := repo.TagCategories(ctx)
	require.NoError(t, err)
	categoryID := 0
	for _, c := range categories {
		if c.Name == "Material" {
			categoryID = c.ID
		}
	}
	require.NotZero(t, categoryID)

	id, err := repo.CreateTag(ctx, tag.Tag{Name: name, CategoryID: categoryID})
	require.NoError(t, err)
	return id
}

/*
TestProduct_RoundTrip creates a product with variations and tag links, reads
it back, rewrites it with a reconciling update, and reads it back again.
*/
func TestProduct_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	brass := materialTag(t, repo, "Brass")

	original := listing.Product{
		ID:          "UA01",
		Name:        "Loft Light",
		Description: "Industrial pendant",
		Variations: []listing.Variation{
			{Extension: "PB", Subname: "Polished Brass", Price: 1250, Display: true, TagIDs: []int{brass}},
			{Extension: "PN", Subname: "Polished Nickel", Price: 1300, Display: true},
		},
	}
	require.NoError(t, repo.CreateProduct(ctx, original))

	got, err := repo.GetProduct(ctx, "UA01")
	require.NoError(t, err)
	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.Description, got.Description)
	require.Len(t, got.Variations, 2)
	assert.Equal(t, "PB", got.Variations[0].Extension)
	assert.Equal(t, []int{brass}, got.Variations[0].TagIDs)
	assert.Empty(t, got.Variations[1].TagIDs)

	// Rewrite: drop PN, add AB, retag PB.
	updated := listing.Product{
		ID:   "UA01",
		Name: "Loft Light",
		Variations: []listing.Variation{
			{Extension: "PB", Subname: "Polished Brass", Price: 1275, Display: true},
			{Extension: "AB", Subname: "Antique Brass", Price: 1350, Display: true, TagIDs: []int{brass}},
		},
	}
	require.NoError(t, repo.UpdateProduct(ctx, updated))
	// Applying the identical update again must be a no-op.
	require.NoError(t, repo.UpdateProduct(ctx, updated))

	got, err = repo.GetProduct(ctx, "UA01")
	require.NoError(t, err)
	require.Len(t, got.Variations, 2)
	assert.Equal(t, "AB", got.Variations[0].Extension)
	assert.Equal(t, []int{brass}, got.Variations[0].TagIDs)
	assert.Equal(t, "PB", got.Variations[1].Extension)
	assert.Empty(t, got.Variations[1].TagIDs)
	assert.Equal(t, 1275, got.Variations[1].Price)
}

/*
TestSearch_FollowsWrites checks that every write is immediately visible to
ranked search: no stale index after create, update or delete.
*/
func TestSearch_FollowsWrites(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateProduct(ctx, listing.Product{
		ID:   "UA02",
		Name: "Harbor Lamp",
		Variations: []listing.Variation{
			{Extension: "PB", Display: true},
		},
	}))

	results, err := repo.SearchProducts(ctx, "harbor")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "UA02", results[0].ListingID)

	require.NoError(t, repo.UpdateProduct(ctx, listing.Product{
		ID:   "UA02",
		Name: "Quay Lantern",
		Variations: []listing.Variation{
			{Extension: "PB", Display: true},
		},
	}))

	results, err = repo.SearchProducts(ctx, "harbor")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = repo.SearchProducts(ctx, "quay")
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, repo.DeleteProduct(ctx, "UA02"))
	results, err = repo.SearchProducts(ctx, "quay")
	require.NoError(t, err)
	assert.Empty(t, results)
}

/*
TestDelete_Cascades verifies that deleting a product listing removes its
variations, tag links and dependent stock records through the declared
foreign keys.
*/
func TestDelete_Cascades(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	brass := materialTag(t, repo, "Brass")

	require.NoError(t, repo.CreateProduct(ctx, listing.Product{
		ID:   "UA03",
		Name: "Urban Torch",
		Variations: []listing.Variation{
			{Extension: "PB", Display: true, TagIDs: []int{brass}},
		},
	}))
	stockID, err := repo.CreateStock(ctx, listing.StockListing{
		ProductID:          "UA03",
		VariationExtension: "PB",
		Price:              800,
		Items:              []listing.StockItem{{Serial: 1, Display: true}},
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProduct(ctx, "UA03"))

	_, err = repo.GetProduct(ctx, "UA03")
	assert.True(t, apperr.IsNotFound(err))
	_, err = repo.GetStock(ctx, stockID)
	assert.True(t, apperr.IsNotFound(err))

	// The tag itself survives; only the links go.
	_, err = repo.GetTag(ctx, brass)
	assert.NoError(t, err)
}

/*
TestUpdate_AtomicRollback forces a failure midway through a multi-statement
update and verifies that no partial state is left behind.
*/
func TestUpdate_AtomicRollback(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateProduct(ctx, listing.Product{
		ID:   "UA04",
		Name: "Dock Sconce",
		Variations: []listing.Variation{
			{Extension: "PB", Subname: "Polished Brass", Display: true},
		},
	}))

	// The second variation references a tag id that does not exist, so the
	// link insert violates its foreign key after the listing row and first
	// variation were already written inside the transaction.
	err := repo.UpdateProduct(ctx, listing.Product{
		ID:   "UA04",
		Name: "Renamed Sconce",
		Variations: []listing.Variation{
			{Extension: "PB", Subname: "Changed", Display: true},
			{Extension: "PN", Display: true, TagIDs: []int{99999}},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	got, err := repo.GetProduct(ctx, "UA04")
	require.NoError(t, err)
	assert.Equal(t, "Dock Sconce", got.Name)
	require.Len(t, got.Variations, 1)
	assert.Equal(t, "Polished Brass", got.Variations[0].Subname)
}

/*
TestCreate_AtomicRollback forces a failure midway through a multi-statement
create and verifies that the listing row itself is not persisted.
*/
func TestCreate_AtomicRollback(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// The second variation references a tag id that does not exist, so the
	// link insert violates its foreign key after the listing row and first
	// variation were already written inside the transaction.
	err := repo.CreateProduct(ctx, listing.Product{
		ID:   "UA07",
		Name: "Canal Sconce",
		Variations: []listing.Variation{
			{Extension: "PB", Subname: "Polished Brass", Display: true},
			{Extension: "PN", Display: true, TagIDs: []int{99999}},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	_, err = repo.GetProduct(ctx, "UA07")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestFacets_EndToEnd drives the tag filter through real association tables:
OR within a category, AND across categories.
*/
func TestFacets_EndToEnd(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	categories, err := repo.TagCategories(ctx)
	require.NoError(t, err)
	byName := make(map[string]int, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}

	brass, err := repo.CreateTag(ctx, tag.Tag{Name: "Brass", CategoryID: byName["Material"]})
	require.NoError(t, err)
	nickel, err := repo.CreateTag(ctx, tag.Tag{Name: "Nickel", CategoryID: byName["Material"]})
	require.NoError(t, err)
	deco, err := repo.CreateTag(ctx, tag.Tag{Name: "Art Deco", CategoryID: byName["Style"]})
	require.NoError(t, err)

	require.NoError(t, repo.CreateProduct(ctx, listing.Product{
		ID:   "UA05",
		Name: "Foyer Pendant",
		Variations: []listing.Variation{
			{Extension: "PB", Display: true, TagIDs: []int{brass, deco}},
			{Extension: "PN", Display: true, TagIDs: []int{nickel}},
		},
	}))

	// Material OR: both variations.
	got, err := repo.ListProducts(ctx, "", map[int][]int{
		byName["Material"]: {brass, nickel},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Material AND Style: only the deco brass variation.
	got, err = repo.ListProducts(ctx, "", map[int][]int{
		byName["Material"]: {brass, nickel},
		byName["Style"]:    {deco},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PB", got[0].Extension)

	// Unknown tag id: empty result, no error.
	got, err = repo.ListProducts(ctx, "", map[int][]int{
		byName["Material"]: {99999},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

/*
TestReferenceData checks the idempotent seeds through the facade getters.
*/
func TestReferenceData(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	finishes, err := repo.MetalFinishes(ctx)
	require.NoError(t, err)
	assert.Len(t, finishes, 11)

	categories, err := repo.TagCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 8)

	// Re-initializing must not duplicate the seeds.
	require.NoError(t, repo.Initialize(ctx))
	finishes, err = repo.MetalFinishes(ctx)
	require.NoError(t, err)
	assert.Len(t, finishes, 11)
}
