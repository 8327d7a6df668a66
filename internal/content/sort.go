package content

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode orders article listings.
type SortMode string

const (
	SortLatest SortMode = "latest"
	SortOldest SortMode = "oldest"
	SortTitle  SortMode = "title"
)

// ParseSortMode accepts "", "latest", "oldest" and "title". The empty string
// means SortLatest.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortLatest:
		return SortLatest, nil
	case SortOldest:
		return SortOldest, nil
	case SortTitle:
		return SortTitle, nil
	default:
		return "", fmt.Errorf("sort must be one of: latest, oldest, title")
	}
}

// SortArticles returns a sorted copy. Every mode is stable, so equal keys
// keep their input order. Dates compare as strings, which orders ISO dates
// chronologically. Titles use Russian collation.
func SortArticles(articles []Article, mode SortMode) []Article {
	out := cloneArticles(articles)
	switch mode {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	case SortTitle:
		// Collators keep internal buffers and are not safe to share.
		col := collate.New(language.Russian)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Title, out[j].Title) < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	}
	return out
}
