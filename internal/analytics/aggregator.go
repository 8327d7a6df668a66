package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/kafka"
)

const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalSearches     int64               `json:"total_searches"`
	CacheHits         int64               `json:"cache_hits"`
	CacheMisses       int64               `json:"cache_misses"`
	ZeroResultCount   int64               `json:"zero_result_count"`
	AvgLatencyUs      float64             `json:"avg_latency_us"`
	P50LatencyUs      int64               `json:"p50_latency_us"`
	P95LatencyUs      int64               `json:"p95_latency_us"`
	P99LatencyUs      int64               `json:"p99_latency_us"`
	TopQueries        []QueryCount        `json:"top_queries"`
	ZeroResultQueries []QueryCount        `json:"zero_result_queries"`
	UserEvents        map[EventType]int64 `json:"user_events"`
	QueriesPerMinute  float64             `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds analytics events into running totals. Latency samples
// are kept in a ring of the most recent maxLatencySamples.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	cacheHits         int64
	cacheMisses       int64
	zeroResults       int64
	latencies         []int64
	latencyNext       int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	userEvents        map[EventType]int64
	startTime         time.Time
	now               func() time.Time

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		userEvents:        make(map[EventType]int64),
		startTime:         time.Now(),
		now:               time.Now,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// Restore seeds the counters from a saved snapshot so totals survive a
// restart. Latency samples and per-minute rates start fresh.
func (a *Aggregator) Restore(s AggregatedStats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSearches = s.TotalSearches
	a.cacheHits = s.CacheHits
	a.cacheMisses = s.CacheMisses
	a.zeroResults = s.ZeroResultCount
	for _, q := range s.TopQueries {
		a.queryCounts[q.Query] = q.Count
	}
	for _, q := range s.ZeroResultQueries {
		a.zeroResultQueries[q.Query] = q.Count
	}
	for k, v := range s.UserEvents {
		a.userEvents[k] = v
	}
}

// HandleEvent decodes a message by its "type" field and records it.
func (a *Aggregator) HandleEvent(ctx context.Context, key []byte, value []byte) error {
	env, err := kafka.DecodeJSON[envelope](value)
	if err != nil {
		return fmt.Errorf("decoding analytics envelope: %w", err)
	}
	switch env.Type {
	case EventSearch, EventZeroResult:
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			return fmt.Errorf("decoding search event: %w", err)
		}
		a.RecordSearch(event)
	case EventRegister, EventLogin, EventLoginFailed, EventLogout, EventDeleteUser, EventContact:
		event, err := kafka.DecodeJSON[UserEvent](value)
		if err != nil {
			return fmt.Errorf("decoding user event: %w", err)
		}
		a.RecordUser(event)
	default:
		return fmt.Errorf("unknown analytics event type %q", env.Type)
	}
	return nil
}

func (a *Aggregator) RecordSearch(event SearchEvent) {
	query := strings.ToLower(strings.TrimSpace(event.Query))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSearches++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.latencyNext] = event.LatencyUs
		a.latencyNext = (a.latencyNext + 1) % maxLatencySamples
	}
	a.queryCounts[query]++
	if event.TotalHits == 0 {
		a.zeroResults++
		a.zeroResultQueries[query]++
	}
}

func (a *Aggregator) RecordUser(event UserEvent) {
	a.mu.Lock()
	a.userEvents[event.Type]++
	a.mu.Unlock()
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		ZeroResultCount: a.zeroResults,
		UserEvents:      make(map[EventType]int64, len(a.userEvents)),
	}
	for k, v := range a.userEvents {
		stats.UserEvents[k] = v
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	elapsed := a.now().Sub(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n most frequent queries, ties broken alphabetically.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
