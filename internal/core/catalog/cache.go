package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache keys for the immutable seed tables.
const (
	cacheKeyFinishes   = "catalog:ref:finishes"
	cacheKeyCategories = "catalog:ref:tag_categories"

	// The seed tables never change after initialization; the TTL only bounds
	// staleness across re-initializations of the database.
	refCacheTTL = time.Hour
)

// refCache is a best-effort JSON cache for reference data. Every failure is
// logged and treated as a miss, so a broken cache never breaks a read.
type refCache struct {
	client *goredis.Client
	logger *slog.Logger
}

// newRefCache wraps an optional client; nil yields a disabled cache.
func newRefCache(client *goredis.Client, logger *slog.Logger) *refCache {
	if client == nil {
		return nil
	}
	return &refCache{client: client, logger: logger}
}

// get loads and decodes a cached value, reporting whether it was present.
func (c *refCache) get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Debug("cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Debug("cache decode failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

// put stores an encoded value with the reference TTL.
func (c *refCache) put(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, key, payload, refCacheTTL).Err(); err != nil {
		c.logger.Debug("cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
