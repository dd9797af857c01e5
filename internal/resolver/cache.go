package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/factive/claimsearch/pkg/metrics"
	"github.com/factive/claimsearch/pkg/redis"
	"github.com/factive/claimsearch/pkg/resilience"
)

const cacheKeyPrefix = "resolve:"

// CachedResolver fronts a Resolver with a Redis result cache. Concurrent
// resolutions of the same claim are collapsed to one index walk, and a
// circuit breaker keeps a failing Redis from slowing the query path.
type CachedResolver struct {
	inner   *Resolver
	cache   *redis.Client
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps inner with a Redis cache. cache may be nil, in which case
// every resolution walks the index.
func NewCached(inner *Resolver, cache *redis.Client, ttl time.Duration, m *metrics.Metrics, log *slog.Logger) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   cache,
		breaker: resilience.NewCircuitBreaker("resolve-cache", resilience.CircuitBreakerConfig{}),
		ttl:     ttl,
		metrics: m,
		log:     log.With(slog.String("component", "resolve-cache")),
	}
}

// Resolve returns the document names for claim, consulting the cache first.
func (c *CachedResolver) Resolve(ctx context.Context, claim string) ([]string, error) {
	start := time.Now()
	key := cacheKey(claim)

	if names, ok := c.cacheGet(ctx, key); ok {
		c.hits.Add(1)
		if c.metrics != nil {
			c.metrics.CacheHitsTotal.Inc()
			c.metrics.ResolveDuration.WithLabelValues("hit").Observe(time.Since(start).Seconds())
		}
		return names, nil
	}
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		names := c.inner.Resolve(ctx, claim)
		c.cacheSet(ctx, key, names)
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	names := v.([]string)
	if c.metrics != nil {
		c.metrics.ResolveDuration.WithLabelValues("miss").Observe(time.Since(start).Seconds())
		c.metrics.ResolveResultCount.Observe(float64(len(names)))
	}
	return names, nil
}

// Invalidate removes every cached resolution, returning how many entries
// were dropped. Called when a new index build is published.
func (c *CachedResolver) Invalidate(ctx context.Context) (int64, error) {
	if c.cache == nil {
		return 0, nil
	}
	return c.cache.FlushByPattern(ctx, cacheKeyPrefix+"*")
}

// CacheStats reports hit/miss counters and the breaker state since startup.
type CacheStats struct {
	Hits         int64  `json:"hits"`
	Misses       int64  `json:"misses"`
	HitRate      string `json:"hitRate"`
	BreakerState string `json:"breakerState"`
}

// Stats returns current cache counters.
func (c *CachedResolver) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	rate := "0.00"
	if total := hits + misses; total > 0 {
		rate = fmt.Sprintf("%.2f", float64(hits)/float64(total))
	}
	return CacheStats{
		Hits:         hits,
		Misses:       misses,
		HitRate:      rate,
		BreakerState: c.breaker.GetState().String(),
	}
}

func (c *CachedResolver) cacheGet(ctx context.Context, key string) ([]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	var names []string
	found := false
	err := c.breaker.Execute(func() error {
		raw, err := c.cache.Get(ctx, key)
		if err != nil {
			if redis.IsNilError(err) {
				return nil
			}
			return err
		}
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		c.log.WarnContext(ctx, "cache read failed", slog.Any("error", err))
		return nil, false
	}
	return names, found
}

func (c *CachedResolver) cacheSet(ctx context.Context, key string, names []string) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return
	}
	err = c.breaker.Execute(func() error {
		return c.cache.Set(ctx, key, raw, c.ttl)
	})
	if err != nil {
		c.log.WarnContext(ctx, "cache write failed", slog.Any("error", err))
	}
}

func cacheKey(claim string) string {
	sum := sha256.Sum256([]byte(claim))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
