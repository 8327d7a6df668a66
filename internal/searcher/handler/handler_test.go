package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func (b *memoryBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = string(value.([]byte))
	return nil
}

func (b *memoryBackend) FlushByPattern(_ context.Context, _ string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := int64(len(b.data))
	b.data = map[string]string{}
	return n, nil
}

type searchBody struct {
	Success    bool              `json:"success"`
	Data       []content.Article `json:"data"`
	Query      string            `json:"query"`
	Error      string            `json:"error"`
	Field      string            `json:"field"`
	Pagination struct {
		Page        int  `json:"page"`
		Limit       int  `json:"limit"`
		Total       int  `json:"total"`
		TotalPages  int  `json:"totalPages"`
		HasNextPage bool `json:"hasNextPage"`
		HasPrevPage bool `json:"hasPrevPage"`
	} `json:"pagination"`
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	c, err := content.Load(content.Embedded())
	require.NoError(t, err)
	return engine.New(c)
}

func searchConfig() config.SearchConfig {
	return config.SearchConfig{DefaultLimit: 6, MaxLimit: 50}
}

func doSearch(t *testing.T, h *Handler, rawQuery string) (*httptest.ResponseRecorder, searchBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/search?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	var body searchBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestSearch_Validation(t *testing.T) {
	h := New(newEngine(t), nil, nil, nil, searchConfig())

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing q", "", "q"},
		{"blank q", "q=%20%20", "q"},
		{"page zero", "q=react&page=0", "page"},
		{"page not a number", "q=react&page=abc", "page"},
		{"limit too big", "q=react&limit=51", "limit"},
		{"limit zero", "q=react&limit=0", "limit"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := doSearch(t, h, tc.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tc.field, body.Field)
		})
	}
}

func TestSearch_RanksAndPaginates(t *testing.T) {
	h := New(newEngine(t), nil, nil, nil, searchConfig())

	rec, body := doSearch(t, h, "q=%20React%20&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "React", body.Query)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "react-components", body.Data[0].Slug)
	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, 2, body.Pagination.Limit)
	assert.Greater(t, body.Pagination.Total, 2)
	assert.True(t, body.Pagination.HasNextPage)
	assert.False(t, body.Pagination.HasPrevPage)

	_, page2 := doSearch(t, h, "q=react&limit=2&page=2")
	assert.True(t, page2.Pagination.HasPrevPage)
	assert.NotEqual(t, body.Data[0].Slug, page2.Data[0].Slug)
}

func TestSearch_NoResults(t *testing.T) {
	m := metrics.New(nil)
	h := New(newEngine(t), nil, nil, m, searchConfig())

	rec, body := doSearch(t, h, "q=zzzzqqq")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
	assert.Equal(t, 0, body.Pagination.Total)
	assert.Equal(t, 0, body.Pagination.TotalPages)
	assert.False(t, body.Pagination.HasNextPage)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("zero_result")))
}

func TestSearch_PageBeyondEnd(t *testing.T) {
	h := New(newEngine(t), nil, nil, nil, searchConfig())
	rec, body := doSearch(t, h, "q=react&page=99")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Data)
	assert.Equal(t, 99, body.Pagination.Page)
	assert.True(t, body.Pagination.HasPrevPage)
}

func TestSearch_LargestPage(t *testing.T) {
	h := New(newEngine(t), nil, nil, nil, searchConfig())
	rec, body := doSearch(t, h, "q=react&limit=50&page="+strconv.Itoa(math.MaxInt))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Data)
	assert.Equal(t, math.MaxInt, body.Pagination.Page)
	assert.False(t, body.Pagination.HasNextPage)
	assert.Positive(t, body.Pagination.Total)
}

func TestSearch_UsesCache(t *testing.T) {
	m := metrics.New(nil)
	backend := &memoryBackend{data: map[string]string{}}
	qc := cache.New(backend, config.RedisConfig{CacheTTL: time.Minute, OpTimeout: time.Second}, m)
	h := New(newEngine(t), qc, nil, m, searchConfig())

	_, first := doSearch(t, h, "q=react+hooks")
	_, second := doSearch(t, h, "q=hooks+react")
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Pagination.Total, second.Pagination.Total)

	hits, misses := qc.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
}

func TestCacheStats(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := New(newEngine(t), nil, nil, nil, searchConfig())
		rec := httptest.NewRecorder()
		h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/search/cache/stats", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":{"status":"disabled"}}`, rec.Body.String())
	})

	t.Run("enabled", func(t *testing.T) {
		qc := cache.New(&memoryBackend{data: map[string]string{}}, config.RedisConfig{OpTimeout: time.Second}, nil)
		h := New(newEngine(t), qc, nil, nil, searchConfig())
		doSearch(t, h, "q=css")
		doSearch(t, h, "q=css")

		rec := httptest.NewRecorder()
		h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/search/cache/stats", nil))
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "enabled", body.Data["status"])
		assert.Equal(t, 1.0, body.Data["hits"])
		assert.Equal(t, 1.0, body.Data["misses"])
		assert.Equal(t, 50.0, body.Data["hitRate"])
		assert.Equal(t, "closed", body.Data["breaker"])
	})
}

func TestCacheInvalidate(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := New(newEngine(t), nil, nil, nil, searchConfig())
		rec := httptest.NewRecorder()
		h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/search/cache/invalidate", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		backend := &memoryBackend{data: map[string]string{}}
		qc := cache.New(backend, config.RedisConfig{OpTimeout: time.Second}, nil)
		h := New(newEngine(t), qc, nil, nil, searchConfig())
		doSearch(t, h, "q=css")

		rec := httptest.NewRecorder()
		h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/search/cache/invalidate", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Search cache invalidated","data":{"deleted":1}}`, rec.Body.String())
	})
}
