// Package engine answers search, latest and by-topic queries over the
// content catalog. The search index is built on first use and reused for the
// engine's lifetime.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/index"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/ranker"
)

type Engine struct {
	catalog *content.Catalog
	weights ranker.Weights

	once    sync.Once
	entries []index.Entry
	bySlug  map[string]int

	logger *slog.Logger
}

func New(catalog *content.Catalog) *Engine {
	return &Engine{
		catalog: catalog,
		weights: ranker.DefaultWeights,
		logger:  slog.Default().With("component", "search-engine"),
	}
}

// Warm builds the index now instead of on the first search.
func (e *Engine) Warm() {
	e.index()
}

// Size is the number of indexed articles.
func (e *Engine) Size() int {
	return len(e.index())
}

func (e *Engine) index() []index.Entry {
	e.once.Do(func() {
		start := time.Now()
		e.entries = index.Build(e.catalog.Articles())
		e.bySlug = make(map[string]int, len(e.entries))
		for i, entry := range e.entries {
			e.bySlug[entry.Article.Slug] = i
		}
		e.logger.Info("search index built",
			"articles", len(e.entries),
			"duration_us", time.Since(start).Microseconds(),
		)
	})
	return e.entries
}

// Search ranks articles against query. A blank query returns every article
// in catalog order.
func (e *Engine) Search(query string) []content.Article {
	plan := parser.Parse(query)
	if plan.Empty() {
		return e.catalog.Articles()
	}
	return e.Resolve(e.RankSlugs(plan))
}

// RankSlugs returns the slugs of matching articles, best first. It is the
// cacheable half of Search.
func (e *Engine) RankSlugs(plan *parser.QueryPlan) []string {
	scored := ranker.Rank(e.index(), plan.Words, e.weights)
	slugs := make([]string, len(scored))
	for i, s := range scored {
		slugs[i] = s.Slug
	}
	return slugs
}

// Resolve maps slugs back to articles, skipping any the catalog lacks.
func (e *Engine) Resolve(slugs []string) []content.Article {
	entries := e.index()
	out := make([]content.Article, 0, len(slugs))
	for _, slug := range slugs {
		i, ok := e.bySlug[slug]
		if !ok {
			continue
		}
		out = append(out, entries[i].Article.Clone())
	}
	return out
}

// Latest returns up to count articles, newest first. Articles sharing a date
// keep catalog order. A zero or negative count returns an empty slice; it is
// not treated as an offset from the end.
func (e *Engine) Latest(count int) []content.Article {
	if count <= 0 {
		return []content.Article{}
	}
	sorted := content.SortArticles(e.catalog.Articles(), content.SortLatest)
	if count < len(sorted) {
		sorted = sorted[:count]
	}
	return sorted
}

func (e *Engine) ByTopic(topicSlug string) []content.Article {
	return e.catalog.ByTopic(topicSlug)
}
