/*
Package catalog is the facade the host application talks to.

A [Repository] bundles the per-entity stores, the facet engine and the
reference-data cache behind one typed API. Every mutating call validates its
input first, then runs as a single transaction inside the store; every read
returns a typed error instead of panicking. Listing calls combine the facet
engine's key set with a summary projection so screens can render result lists
without hydrating full records.
*/
package catalog

import (
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/urbanatelier/catalog/internal/core/facet"
	"github.com/urbanatelier/catalog/internal/core/listing"
	"github.com/urbanatelier/catalog/internal/core/search"
	"github.com/urbanatelier/catalog/internal/core/tag"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	"github.com/urbanatelier/catalog/internal/platform/postgres"
)

// Repository is the catalog facade.
type Repository struct {
	session *postgres.Session
	builder *sqlbuild.Builder

	products listing.ProductStore
	stock    listing.StockStore
	salvage  listing.SalvageStore
	custom   listing.CustomStore
	tags     tag.Store

	engine *facet.Engine
	cache  *refCache
	logger *slog.Logger
}

// New wires a repository over an established session. The cache client is
// optional; nil disables reference-data caching.
func New(session *postgres.Session, builder *sqlbuild.Builder, indexer *search.Indexer, cache *goredis.Client, logger *slog.Logger) *Repository {
	engine := facet.NewEngine(facet.NewPostgresStore(session.Pool(), builder, indexer))

	return &Repository{
		session:  session,
		builder:  builder,
		products: listing.NewPostgresProductStore(session, builder, indexer, logger),
		stock:    listing.NewPostgresStockStore(session, builder, indexer, logger),
		salvage:  listing.NewPostgresSalvageStore(session, builder, indexer, logger),
		custom:   listing.NewPostgresCustomStore(session, builder, indexer, logger),
		tags:     tag.NewPostgresStore(session, builder, indexer, logger),
		engine:   engine,
		cache:    newRefCache(cache, logger),
		logger:   logger,
	}
}
