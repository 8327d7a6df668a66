// Package ranker scores index entries against query words with fixed
// per-field weights.
package ranker

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/index"
)

// Weights are the points a single word earns for each field it appears in.
type Weights struct {
	Title       int
	Tag         int
	Description int
	Body        int
}

// DefaultWeights favour titles over tags over descriptions. Body is matched
// against the combined blob, so a title hit also earns the body point.
var DefaultWeights = Weights{Title: 10, Tag: 5, Description: 3, Body: 1}

// Scored is an entry with a positive score. Position is the entry's index in
// the slice passed to Rank.
type Scored struct {
	Position int    `json:"position"`
	Slug     string `json:"slug"`
	Score    int    `json:"score"`
}

// Score sums, for every word, the weight of each field containing it as a
// substring. Tags count once per word no matter how many match.
func Score(e index.Entry, words []string, w Weights) int {
	score := 0
	for _, word := range words {
		if strings.Contains(e.Title, word) {
			score += w.Title
		}
		for _, tag := range e.Tags {
			if strings.Contains(tag, word) {
				score += w.Tag
				break
			}
		}
		if strings.Contains(e.Description, word) {
			score += w.Description
		}
		if strings.Contains(e.Blob, word) {
			score += w.Body
		}
	}
	return score
}

// Rank returns the entries scoring above zero, best first. Equal scores keep
// their input order.
func Rank(entries []index.Entry, words []string, w Weights) []Scored {
	result := make([]Scored, 0)
	for i, e := range entries {
		s := Score(e, words, w)
		if s <= 0 {
			continue
		}
		result = append(result, Scored{Position: i, Slug: e.Article.Slug, Score: s})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result
}
