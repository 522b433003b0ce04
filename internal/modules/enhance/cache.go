package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// KV is the slice of the redis client the enhancement cache and the
// rate limiter need. In tests an in-memory map stands in for it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Cache stores normalized enhancement results per feature and article.
type Cache struct {
	kv KV
}

func NewCache(kv KV) *Cache { return &Cache{kv: kv} }

func cacheKey(feature, refID string) string {
	return fmt.Sprintf("enhance:%s:%s", feature, refID)
}

// Get loads a cached result into out. The boolean reports a hit.
func (c *Cache) Get(ctx context.Context, feature, refID string, out interface{}) (bool, error) {
	raw, err := c.kv.Get(ctx, cacheKey(feature, refID))
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// A corrupt entry behaves like a miss and gets overwritten.
		return false, nil
	}
	return true, nil
}

// Put stores a result with the given TTL.
func (c *Cache) Put(ctx context.Context, feature, refID string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, cacheKey(feature, refID), string(raw), ttl)
}

// Invalidate drops the cached results of every feature for one article.
func (c *Cache) Invalidate(ctx context.Context, refID string) error {
	keys := make([]string, 0, len(allFeatures))
	for _, feature := range allFeatures {
		keys = append(keys, cacheKey(feature, refID))
	}
	return c.kv.Del(ctx, keys...)
}
