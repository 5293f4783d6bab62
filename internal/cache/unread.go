package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UnreadCounter tracks the per-user unread notification badge so list pages
// do not hit Postgres for every render. Incremented by the lifecycle engine
// after commit, reset when the user marks notifications read.
type UnreadCounter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewUnreadCounter builds the counter.
func NewUnreadCounter(client *redis.Client, logger *zap.Logger) *UnreadCounter {
	return &UnreadCounter{client: client, logger: logger}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// Incr bumps the badge for one user.
func (c *UnreadCounter) Incr(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, unreadKey(userID)).Err(); err != nil {
		c.logger.Warn("unread counter incr failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Get returns the cached badge, reporting whether the cache was warm.
func (c *UnreadCounter) Get(ctx context.Context, userID int64) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	count, err := c.client.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("unread counter read failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return 0, false
	}
	return count, true
}

// Set seeds the badge with a value computed from Postgres.
func (c *UnreadCounter) Set(ctx context.Context, userID, count int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, unreadKey(userID), count, 0).Err(); err != nil {
		c.logger.Warn("unread counter write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Reset drops the badge; it is recomputed on the next read.
func (c *UnreadCounter) Reset(ctx context.Context, userID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		c.logger.Warn("unread counter reset failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
