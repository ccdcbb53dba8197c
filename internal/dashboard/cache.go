package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis caching of dashboard summaries. Invalidation is by
// TTL only; a nil client degrades to calling the loader every time.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func summaryKey(workspaceID int64) string {
	return fmt.Sprintf("dashboard:summary:%d", workspaceID)
}

// FetchSummary loads a cached summary or populates it using the loader.
func (c *Cache) FetchSummary(ctx context.Context, workspaceID int64, loader func(context.Context) (*Summary, error)) (*Summary, error) {
	if loader == nil {
		return nil, errors.New("dashboard: loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := summaryKey(workspaceID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached Summary
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
		// Corrupt entry; fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	summary, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return summary, nil
}
