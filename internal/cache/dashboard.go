// Package cache holds the Redis-backed read caches. Every cache miss or
// Redis failure falls through to Postgres; the cache is never authoritative.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk/internal/domain"
)

const (
	dashboardCountsKey = "dashboard:status_counts"
	dashboardTTL       = 30 * time.Second
)

// DashboardCache caches the per-status ticket counts shown on the staff
// dashboards. Invalidated by the lifecycle engine after every commit that
// changes a ticket's status set.
type DashboardCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewDashboardCache builds the cache.
func NewDashboardCache(client *redis.Client, logger *zap.Logger) *DashboardCache {
	return &DashboardCache{client: client, logger: logger}
}

// Get returns the cached counts, reporting whether the cache was warm.
func (c *DashboardCache) Get(ctx context.Context) (map[domain.TicketStatus]int64, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, dashboardCountsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var counts map[domain.TicketStatus]int64
	if err := json.Unmarshal(raw, &counts); err != nil {
		c.logger.Warn("dashboard cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return counts, true
}

// Set stores fresh counts.
func (c *DashboardCache) Set(ctx context.Context, counts map[domain.TicketStatus]int64) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, dashboardCountsKey, raw, dashboardTTL).Err(); err != nil {
		c.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached counts.
func (c *DashboardCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, dashboardCountsKey).Err(); err != nil {
		c.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}
