// Package handler serves the search endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/pagination"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/tracing"
)

// Handler serves GET /api/search and the cache admin endpoints. The cache,
// collector and metrics are optional.
type Handler struct {
	engine       *engine.Engine
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

func New(eng *engine.Engine, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, cfg config.SearchConfig) *Handler {
	return &Handler{
		engine:       eng,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	ctx, span := tracing.StartSpan(r.Context(), "search", requestID)
	log := logger.FromContext(ctx)

	_, parseSpan := tracing.StartChildSpan(ctx, "parse")
	plan := parser.Parse(r.URL.Query().Get("q"))
	parseSpan.SetAttr("words", len(plan.Words))
	parseSpan.End()

	if plan.Empty() {
		response.Error(w, apperrors.InvalidInput("Parameter 'q' is required and must not be empty").WithField("q"))
		return
	}
	page, limit, err := pagination.Params(r.URL.Query(), h.defaultLimit, h.maxLimit)
	if err != nil {
		response.Error(w, err)
		return
	}

	rank := func() []string {
		_, rankSpan := tracing.StartChildSpan(ctx, "rank")
		defer rankSpan.End()
		slugs := h.engine.RankSlugs(plan)
		rankSpan.SetAttr("matches", len(slugs))
		return slugs
	}

	var slugs []string
	cacheStatus := "disabled"
	cacheHit := false
	if h.cache != nil {
		cacheCtx, cacheSpan := tracing.StartChildSpan(ctx, "cache")
		slugs, cacheHit = h.cache.GetOrCompute(cacheCtx, plan, rank)
		cacheSpan.SetAttr("hit", cacheHit)
		cacheSpan.End()
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	} else {
		slugs = rank()
	}

	slugPage := pagination.Paginate(slugs, page, limit)
	result := pagination.Page[content.Article]{
		Items: h.engine.Resolve(slugPage.Items),
		Meta:  slugPage.Meta,
	}

	latency := time.Since(start)
	span.End()
	span.Log(log)

	total := slugPage.Meta.Total
	h.record(plan, total, len(result.Items), page, latency, cacheStatus, cacheHit, requestID)
	log.Info("search completed",
		"query", plan.Query,
		"total_hits", total,
		"returned", len(result.Items),
		"cache", cacheStatus,
		"latency_us", latency.Microseconds(),
	)

	response.Page(w, result, plan.Query)
}

func (h *Handler) record(plan *parser.QueryPlan, total, returned, page int, latency time.Duration, cacheStatus string, cacheHit bool, requestID string) {
	eventType := analytics.EventSearch
	resultType := "hit"
	if total == 0 {
		eventType = analytics.EventZeroResult
		resultType = "zero_result"
	}

	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(total))
	}
	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     plan.Query,
			Words:     plan.Words,
			TotalHits: total,
			Returned:  returned,
			Page:      page,
			LatencyUs: latency.Microseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: requestID,
		})
	}
}

// CacheStats serves GET /api/search/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		response.OK(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	response.OK(w, http.StatusOK, map[string]any{
		"status":  "enabled",
		"hits":    hits,
		"misses":  misses,
		"total":   total,
		"hitRate": hitRate,
		"breaker": h.cache.BreakerState().String(),
	})
}

// CacheInvalidate serves POST /api/search/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		response.Error(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "Search cache is disabled"))
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		response.Error(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "Search cache invalidation failed"))
		return
	}
	response.Message(w, http.StatusOK, "Search cache invalidated", map[string]int64{"deleted": deleted})
}
