// Command catalogctl administers the catalog database.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load the session file into configuration.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when a REDIS_URL is configured.
//  5. Wire the repository and dispatch the subcommand.
//
// No business logic lives here. All wiring is explicit constructor injection.
//
// # Subcommands
//
//	init                          create tables, indexes and seed rows
//	reset                         drop every catalog table
//	products  [-q text] [-tag id] list product variations
//	search    <text>              ranked product search
//	tags      [text]              list or search tags
//	categories                    list the facet categories
//	finishes                      list the metal-finish reference data
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/urbanatelier/catalog/internal/core/catalog"
	"github.com/urbanatelier/catalog/internal/core/search"
	"github.com/urbanatelier/catalog/internal/platform/config"
	"github.com/urbanatelier/catalog/internal/platform/database/schema"
	"github.com/urbanatelier/catalog/internal/platform/database/sqlbuild"
	pgstore "github.com/urbanatelier/catalog/internal/platform/postgres"
	redisstore "github.com/urbanatelier/catalog/internal/platform/redis"
)

func main() {
	sessionFile := flag.String("session", "", "session configuration file (defaults to process environment only)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: catalogctl [-session file] <init|reset|products|search|tags|categories|finishes> [args]")
		os.Exit(2)
	}

	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(
		slog.String("app", "catalogctl"),
		slog.String("run_id", uuid.NewString()),
	)
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load(*sessionFile)
	must(log, err, "load configuration")

	if cfg.Debug {
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})).With(slog.String("app", "catalogctl"))
		slog.SetDefault(log)
		log.Debug("debug logging enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(ctx, cfg.DSN(), log)
	must(log, err, "connect to postgres")
	session := pgstore.NewSession(pool, log)
	defer session.Close()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var cache *goredis.Client
	if cfg.RedisURL != "" {
		cache, err = redisstore.NewClient(ctx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer cache.Close()
	}

	// ── 5. Repository ─────────────────────────────────────────────────────
	builder := sqlbuild.New(schema.Default())
	indexer := search.NewIndexer(builder, nil)
	repo := catalog.New(session, builder, indexer, cache, log)

	must(log, run(ctx, repo, flag.Arg(0), flag.Args()[1:]), flag.Arg(0))
}

// run dispatches one subcommand against the repository.
func run(ctx context.Context, repo *catalog.Repository, command string, args []string) error {
	switch command {
	case "init":
		return repo.Initialize(ctx)

	case "reset":
		return repo.Reset(ctx)

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		text := fs.String("q", "", "free-text filter")
		tagIDs := fs.String("tag", "", "comma-separated list of tag ids")
		if err := fs.Parse(args); err != nil {
			return err
		}
		filters, err := parseTagFilter(*tagIDs)
		if err != nil {
			return err
		}
		summaries, err := repo.ListProducts(ctx, *text, filters)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Printf("%s-%s\t%s\t%s\n", s.ListingID, s.Extension, s.Name, s.Subname)
		}
		return nil

	case "search":
		if len(args) == 0 {
			return fmt.Errorf("search requires a query")
		}
		summaries, err := repo.SearchProducts(ctx, args[0])
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Printf("%s-%s\t%s\t%s\n", s.ListingID, s.Extension, s.Name, s.Subname)
		}
		return nil

	case "tags":
		text := ""
		if len(args) > 0 {
			text = args[0]
		}
		tags, err := repo.SearchTags(ctx, text)
		if err != nil {
			return err
		}
		for _, t := range tags {
			fmt.Printf("%d\t%s\t(category %d)\n", t.ID, t.Name, t.CategoryID)
		}
		return nil

	case "categories":
		categories, err := repo.TagCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range categories {
			fmt.Printf("%d\t%s\t%s\n", c.ID, c.Name, c.Description)
		}
		return nil

	case "finishes":
		finishes, err := repo.MetalFinishes(ctx)
		if err != nil {
			return err
		}
		for _, f := range finishes {
			fmt.Printf("%s\t%s\toutdoor=%t\n", f.ID, f.Name, f.Outdoor)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// parseTagFilter turns "1,2,7" into a single-category filter. The command
// cannot know category boundaries, so all ids land in one OR group; the
// repository API accepts the full per-category map.
func parseTagFilter(raw string) (map[int][]int, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("malformed tag id %q", part)
		}
		ids = append(ids, id)
	}
	return map[int][]int{0: ids}, nil
}

// must logs a structured fatal error and terminates the process if err is
// non-nil. Limited to startup wiring; afterwards all errors are returned.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("command failed",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
