// Package cache is the response cache sitting in front of list reads.
// Keys are derived deterministically from table, filter set and pagination;
// writes to a table invalidate every key derived for it. The backend may be
// absent entirely, in which case every lookup is a miss and every write a
// no-op.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "galvan"

// DefaultTTL bounds staleness when an invalidation is missed, e.g. after a
// direct store mutation outside this layer.
const DefaultTTL = 5 * time.Minute

// ResponseCache fronts list queries with a Redis-backed key-value store.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// New constructs the cache. A nil client degrades to always-miss.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseCache{client: client, ttl: ttl, logger: logger}
}

// Key derives the deterministic cache key for a list read. Filter keys are
// sorted before serializing so the key is independent of insertion order.
func Key(table string, filters map[string]string, page, limit int) string {
	filterPart := "no-filters"
	if len(filters) > 0 {
		keys := make([]string, 0, len(filters))
		for k := range filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + filters[k]
		}
		filterPart = strings.Join(pairs, "&")
	}
	pagePart := "no-page"
	if page > 0 {
		pagePart = "page:" + strconv.Itoa(page)
	}
	limitPart := "no-limit"
	if limit > 0 {
		limitPart = "limit:" + strconv.Itoa(limit)
	}
	return strings.Join([]string{keyPrefix, table, filterPart, pagePart, limitPart}, ":")
}

// GetList returns the cached result set for key, or a miss. Backend errors
// count as misses and are only logged.
func (c *ResponseCache) GetList(ctx context.Context, key string) ([]map[string]any, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache get", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err != nil {
		c.logger.Warn("cache decode", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return rows, true
}

// SetList stores a result set under key with the configured TTL.
func (c *ResponseCache) SetList(ctx context.Context, key string, rows []map[string]any) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		c.logger.Warn("cache encode", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set", slog.String("key", key), slog.Any("error", err))
	}
}

// FetchList consults the cache and falls back to loader on a miss,
// populating the cache with the loaded rows. Concurrent misses for the
// same key are collapsed into a single loader call. The returned flag
// reports whether the value came from the cache.
func (c *ResponseCache) FetchList(ctx context.Context, key string, loader func(context.Context) ([]map[string]any, error)) ([]map[string]any, bool, error) {
	if rows, ok := c.GetList(ctx, key); ok {
		return rows, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		rows, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.SetList(ctx, key, rows)
		return rows, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]map[string]any), false, nil
}

// InvalidateTable removes every key derived for table. Called after any
// insert, update or delete against that table.
func (c *ResponseCache) InvalidateTable(ctx context.Context, table string) {
	if c == nil || c.client == nil {
		return
	}
	pattern := keyPrefix + ":" + table + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache scan", slog.String("pattern", pattern), slog.Any("error", err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache del", slog.String("pattern", pattern), slog.Any("error", err))
	}
}
