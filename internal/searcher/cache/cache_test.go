package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/resilience"
)

type fakeBackend struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failErr error
	gets    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeBackend) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failErr != nil {
		return "", f.failErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeBackend) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return nil
}

func (f *fakeBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return 0, f.failErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
			n++
		}
	}
	return n, nil
}

func testConfig() config.RedisConfig {
	return config.RedisConfig{CacheTTL: time.Minute, OpTimeout: time.Second}
}

func TestGetOrCompute_MissThenHit(t *testing.T) {
	backend := newFakeBackend()
	m := metrics.New(nil)
	c := New(backend, testConfig(), m)
	ctx := context.Background()

	calls := 0
	compute := func() []string {
		calls++
		return []string{"react-hooks", "react-components"}
	}

	slugs, hit := c.GetOrCompute(ctx, parser.Parse("react hooks"), compute)
	assert.False(t, hit)
	assert.Equal(t, []string{"react-hooks", "react-components"}, slugs)

	slugs, hit = c.GetOrCompute(ctx, parser.Parse("HOOKS  react"), compute)
	assert.True(t, hit, "word order must not change the key")
	assert.Equal(t, []string{"react-hooks", "react-components"}, slugs)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))

	for _, ttl := range backend.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestGetOrCompute_EmptyResultIsCached(t *testing.T) {
	c := New(newFakeBackend(), testConfig(), nil)
	ctx := context.Background()

	slugs, _ := c.GetOrCompute(ctx, parser.Parse("nothing"), func() []string { return []string{} })
	assert.Empty(t, slugs)

	slugs, hit := c.GetOrCompute(ctx, parser.Parse("nothing"), func() []string {
		t.Fatal("compute should not run on a hit")
		return nil
	})
	assert.True(t, hit)
	assert.Empty(t, slugs)
}

func TestGetOrCompute_BackendErrorDegradesToCompute(t *testing.T) {
	backend := newFakeBackend()
	backend.failErr = errors.New("connection refused")
	c := New(backend, testConfig(), nil)

	slugs, hit := c.GetOrCompute(context.Background(), parser.Parse("go"), func() []string { return []string{"a"} })
	assert.False(t, hit)
	assert.Equal(t, []string{"a"}, slugs)
}

func TestGetOrCompute_CorruptEntryIsAMiss(t *testing.T) {
	backend := newFakeBackend()
	c := New(backend, testConfig(), nil)
	backend.data[buildKey(parser.Parse("go"))] = "{not json"

	slugs, hit := c.GetOrCompute(context.Background(), parser.Parse("go"), func() []string { return []string{"a"} })
	assert.False(t, hit)
	assert.Equal(t, []string{"a"}, slugs)
}

func TestBreakerOpensOnBackendFailures(t *testing.T) {
	backend := newFakeBackend()
	backend.failErr = errors.New("timeout")
	m := metrics.New(nil)
	c := New(backend, testConfig(), m)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		c.GetOrCompute(ctx, parser.Parse("go"), func() []string { return nil })
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())
	assert.Equal(t, float64(resilience.StateOpen), testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("search-cache")))

	backend.mu.Lock()
	gets := backend.gets
	backend.mu.Unlock()
	assert.Less(t, gets, 10, "open breaker must stop calling the backend")
}

func TestBreakerIgnoresMisses(t *testing.T) {
	c := New(newFakeBackend(), testConfig(), nil)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		c.GetOrCompute(ctx, parser.Parse("q"+strings.Repeat("x", i)), func() []string { return nil })
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestGetOrCompute_SingleflightCollapsesConcurrentMisses(t *testing.T) {
	c := New(newFakeBackend(), testConfig(), nil)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slugs, _ := c.GetOrCompute(context.Background(), parser.Parse("slow"), func() []string {
				calls.Add(1)
				<-release
				return []string{"a"}
			})
			assert.Equal(t, []string{"a"}, slugs)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestInvalidate(t *testing.T) {
	backend := newFakeBackend()
	backend.data["other:key"] = "x"
	c := New(backend, testConfig(), nil)
	ctx := context.Background()

	c.GetOrCompute(ctx, parser.Parse("a"), func() []string { return []string{"1"} })
	c.GetOrCompute(ctx, parser.Parse("b"), func() []string { return []string{"2"} })

	n, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Contains(t, backend.data, "other:key")

	backend.failErr = errors.New("down")
	_, err = c.Invalidate(ctx)
	assert.Error(t, err)
}

func TestBuildKey(t *testing.T) {
	k := buildKey(parser.Parse("react"))
	assert.True(t, strings.HasPrefix(k, keyPrefix))
	assert.Len(t, k, len(keyPrefix)+32)
	assert.NotEqual(t, k, buildKey(parser.Parse("react react")))
}
