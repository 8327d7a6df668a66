package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/parser"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	topics := []content.Topic{
		{Slug: "react", Title: "React"},
		{Slug: "css", Title: "CSS"},
	}
	articles := []content.Article{
		{Slug: "hooks", Title: "React Hooks", Description: "useState", TopicSlug: "react", Date: "2024-12-15", Tags: []string{"react", "hooks"}, Content: "state"},
		{Slug: "grid", Title: "CSS Grid", Description: "layout", TopicSlug: "css", Date: "2024-09-18", Tags: []string{"css"}, Content: "grid-template"},
		{Slug: "components", Title: "Components", Description: "React components", TopicSlug: "react", Date: "2024-12-02", Tags: []string{"jsx"}, Content: "props"},
		{Slug: "flex", Title: "Flexbox", Description: "layout", TopicSlug: "css", Date: "2024-12-15", Tags: []string{"css"}, Content: "flex"},
	}
	c, err := content.NewCatalog(topics, articles)
	require.NoError(t, err)
	return New(c)
}

func slugs(articles []content.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Slug
	}
	return out
}

func TestSearch(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"blank returns all in order", "  ", []string{"hooks", "grid", "components", "flex"}},
		{"empty returns all", "", []string{"hooks", "grid", "components", "flex"}},
		{"title beats description", "react", []string{"hooks", "components"}},
		{"case insensitive", "CSS", []string{"grid", "flex"}},
		{"ties keep catalog order", "layout", []string{"grid", "flex"}},
		{"multi-word additive", "layout flex", []string{"flex", "grid"}},
		{"no match", "kubernetes", []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, slugs(e.Search(tc.query)))
		})
	}
}

func TestSearch_ReturnsCopies(t *testing.T) {
	e := newTestEngine(t)
	first := e.Search("react")
	first[0].Tags[0] = "mutated"
	first[0].Title = "mutated"

	again := e.Search("react")
	assert.Equal(t, "React Hooks", again[0].Title)
	assert.Equal(t, "react", again[0].Tags[0])
}

func TestRankSlugsAndResolve(t *testing.T) {
	e := newTestEngine(t)

	ranked := e.RankSlugs(parser.Parse("react"))
	assert.Equal(t, []string{"hooks", "components"}, ranked)

	resolved := e.Resolve([]string{"components", "missing", "hooks"})
	assert.Equal(t, []string{"components", "hooks"}, slugs(resolved))
}

func TestLatest(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, []string{"hooks", "flex"}, slugs(e.Latest(2)))
	assert.Equal(t, []string{"hooks", "flex", "components", "grid"}, slugs(e.Latest(4)))
	assert.Len(t, e.Latest(100), 4)
	assert.Empty(t, e.Latest(0))
	assert.Empty(t, e.Latest(-3))
	assert.NotNil(t, e.Latest(-3))
}

func TestByTopic(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, []string{"hooks", "components"}, slugs(e.ByTopic("react")))
	assert.Empty(t, e.ByTopic("unknown"))
}

func TestIndexBuiltOnce(t *testing.T) {
	e := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Search("react")
		}()
	}
	wg.Wait()

	first := &e.index()[0]
	e.Warm()
	assert.Same(t, first, &e.index()[0])
	assert.Equal(t, 4, e.Size())
}

func TestEmbeddedContentSearch(t *testing.T) {
	c, err := content.Load(content.Embedded())
	require.NoError(t, err)
	e := New(c)

	results := e.Search("react")
	require.NotEmpty(t, results)
	assert.Equal(t, "react", results[0].TopicSlug)

	assert.Len(t, e.Search(""), 18)
	assert.Empty(t, e.Search("zzzzqqq"))
}
