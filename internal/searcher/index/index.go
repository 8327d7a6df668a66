// Package index precomputes the lowercased text the ranker matches words
// against, one Entry per article.
package index

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
)

type Entry struct {
	Article     content.Article
	Title       string
	Description string
	Tags        []string
	// Blob is title, description, tags and content joined by single spaces
	// and lowercased.
	Blob string
}

// Build returns one Entry per article, in the order given.
func Build(articles []content.Article) []Entry {
	entries := make([]Entry, len(articles))
	for i, a := range articles {
		tags := make([]string, len(a.Tags))
		for j, tag := range a.Tags {
			tags[j] = strings.ToLower(tag)
		}
		blob := a.Title + " " + a.Description + " " + strings.Join(a.Tags, " ") + " " + a.Content
		entries[i] = Entry{
			Article:     a.Clone(),
			Title:       strings.ToLower(a.Title),
			Description: strings.ToLower(a.Description),
			Tags:        tags,
			Blob:        strings.ToLower(blob),
		}
	}
	return entries
}
