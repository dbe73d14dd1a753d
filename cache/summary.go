package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastCycleKey = "tender-scout:last-cycle"

// SummaryCache keeps the JSON summary of the most recent cycle so the API can
// serve it without touching the store. Without redis it holds the payload in
// process instead.
type SummaryCache struct {
	client *redis.Client

	mu    sync.Mutex
	local []byte
}

func NewSummaryCache(client *redis.Client) *SummaryCache {
	return &SummaryCache{client: client}
}

func (c *SummaryCache) Put(ctx context.Context, payload []byte, ttl time.Duration) error {
	if c.client == nil {
		c.mu.Lock()
		c.local = payload
		c.mu.Unlock()
		return nil
	}
	return c.client.Set(ctx, lastCycleKey, payload, ttl).Err()
}

// Last returns the stored summary; ok is false when no cycle has completed yet.
func (c *SummaryCache) Last(ctx context.Context) (payload []byte, ok bool, err error) {
	if c.client == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.local, c.local != nil, nil
	}
	payload, err = c.client.Get(ctx, lastCycleKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}
