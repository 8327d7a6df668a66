// Package cache keeps ranked search results in Redis so repeated queries skip
// ranking. The cache is best effort: every backend failure degrades to a miss
// and a circuit breaker stops calling Redis while it is unhealthy.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/resilience"
)

const keyPrefix = "search:"

// Backend is the subset of the Redis client the cache uses.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	backend   Backend
	ttl       time.Duration
	opTimeout time.Duration
	breaker   *resilience.CircuitBreaker
	group     singleflight.Group
	metrics   *metrics.Metrics
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// New wraps backend. m may be nil.
func New(backend Backend, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	c := &QueryCache{
		backend:   backend,
		ttl:       cfg.CacheTTL,
		opTimeout: cfg.OpTimeout,
		metrics:   m,
		logger:    slog.Default().With("component", "query-cache"),
	}
	c.breaker = resilience.NewCircuitBreaker("search-cache", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		IsFailure: func(err error) bool {
			return err != nil && !pkgredis.IsNilError(err)
		},
		OnStateChange: func(name string, _, to resilience.State) {
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	if m != nil {
		m.CircuitBreakerState.WithLabelValues("search-cache").Set(float64(resilience.StateClosed))
	}
	return c
}

// GetOrCompute returns the cached ranking for plan, or runs compute and
// stores its result. Concurrent misses for the same key share one compute.
func (c *QueryCache) GetOrCompute(ctx context.Context, plan *parser.QueryPlan, compute func() []string) ([]string, bool) {
	key := buildKey(plan)
	if slugs, ok := c.get(ctx, key); ok {
		c.recordHit()
		return slugs, true
	}
	c.recordMiss()

	val, _, _ := c.group.Do(key, func() (any, error) {
		slugs := compute()
		c.set(ctx, key, slugs)
		return slugs, nil
	})
	return val.([]string), false
}

// Invalidate deletes every cached ranking.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports the circuit breaker guarding the backend.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.GetState()
}

func (c *QueryCache) get(ctx context.Context, key string) ([]string, bool) {
	result := make(chan string, 1)
	err := c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, c.opTimeout, "cache-get", func(ctx context.Context) error {
			data, err := c.backend.Get(ctx, key)
			if err != nil {
				return err
			}
			result <- data
			return nil
		})
	})
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	var slugs []string
	if err := json.Unmarshal([]byte(<-result), &slugs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return slugs, true
}

func (c *QueryCache) set(ctx context.Context, key string, slugs []string) {
	data, err := json.Marshal(slugs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, c.opTimeout, "cache-set", func(ctx context.Context) error {
			return c.backend.Set(ctx, key, data, c.ttl)
		})
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func buildKey(plan *parser.QueryPlan) string {
	hash := sha256.Sum256([]byte(plan.CacheKey()))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
