// Package parser turns a raw search string into the word list the ranker
// scores against.
package parser

import (
	"sort"
	"strings"
)

// QueryPlan is a parsed search query.
type QueryPlan struct {
	// RawQuery is the input exactly as received.
	RawQuery string
	// Query is the input with surrounding whitespace removed. It is what
	// responses echo back.
	Query string
	// Normalized is Query lowercased.
	Normalized string
	// Words are the whitespace-separated parts of Normalized. Duplicates are
	// kept because every occurrence adds to an article's score.
	Words []string
}

func Parse(query string) *QueryPlan {
	trimmed := strings.TrimSpace(query)
	normalized := strings.ToLower(trimmed)
	return &QueryPlan{
		RawQuery:   query,
		Query:      trimmed,
		Normalized: normalized,
		Words:      strings.Fields(normalized),
	}
}

// Empty reports whether the query has no words.
func (p *QueryPlan) Empty() bool {
	return len(p.Words) == 0
}

// CacheKey identifies the ranking a plan produces. Word order does not
// affect scores, so permutations share a key; duplicates do, so they stay.
func (p *QueryPlan) CacheKey() string {
	words := append([]string(nil), p.Words...)
	sort.Strings(words)
	return strings.Join(words, " ")
}
