package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"admissions_crm_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "dashboard:stats:"

// Cache keeps computed dashboard snapshots in Redis. A nil client disables
// caching; every call falls through to the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCache creates a dashboard cache. client may be nil.
func NewCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

// Get returns the cached snapshot for a filter, or false on miss. Redis
// failures degrade to a miss so the dashboard never breaks on cache trouble.
func (c *Cache) Get(ctx context.Context, filter string) (Stats, bool) {
	if c.client == nil {
		return Stats{}, false
	}

	raw, err := c.client.Get(ctx, cacheKeyPrefix+filter).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("dashboard cache read failed", "error", err)
		}
		return Stats{}, false
	}

	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.log.Warn("dashboard cache entry corrupt", "error", err)
		return Stats{}, false
	}
	return stats, true
}

// Set stores a snapshot under its filter key.
func (c *Cache) Set(ctx context.Context, filter string, stats Stats) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		c.log.Warn("dashboard cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+filter, raw, c.ttl).Err(); err != nil {
		c.log.Warn("dashboard cache write failed", "error", err)
	}
}

// Invalidate drops all cached windows. Called when a webhook changes the
// underlying lead data.
func (c *Cache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}

	keys := []string{
		cacheKeyPrefix + FilterWeek,
		cacheKeyPrefix + FilterMonth,
		cacheKeyPrefix + FilterAll,
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("dashboard cache invalidation failed", "error", err)
	}
}
