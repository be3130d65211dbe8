package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ceramicarte/preventivi-backend/pkg/metrics"
	"github.com/ceramicarte/preventivi-backend/pkg/redis"
)

// KV is the slice of the redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cache memoizes translations keyed by source text and language pair.
// Catalog names repeat across quotes, so most finalizations after the
// first are served without touching the backends.
type Cache struct {
	kv      KV
	ttl     time.Duration
	metrics *metrics.Registry
}

func NewCache(kv KV, ttl time.Duration, reg *metrics.Registry) *Cache {
	return &Cache{kv: kv, ttl: ttl, metrics: reg}
}

func cacheKey(text, source, target string) string {
	sum := sha256.Sum256([]byte(text))
	return redis.Key("tr", source, target, hex.EncodeToString(sum[:16]))
}

// Get returns the cached translation and whether it was present.
// Cache errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, text, source, target string) (string, bool) {
	if c == nil || c.kv == nil {
		return "", false
	}
	val, err := c.kv.Get(ctx, cacheKey(text, source, target))
	if err != nil || val == "" {
		if c.metrics != nil {
			c.metrics.TranslationCacheMiss.Inc()
		}
		return "", false
	}
	if c.metrics != nil {
		c.metrics.TranslationCacheHit.Inc()
	}
	return val, true
}

func (c *Cache) Put(ctx context.Context, text, source, target, translated string) {
	if c == nil || c.kv == nil || translated == "" {
		return
	}
	// Best effort, a failed write just means a backend call next time.
	_ = c.kv.Set(ctx, cacheKey(text, source, target), translated, c.ttl)
}
