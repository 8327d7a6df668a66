// Package pagination slices ordered result sets into pages.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/errors"
)

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type Page[T any] struct {
	Items []T
	Meta  Meta
}

// Paginate returns items[(page-1)*limit : page*limit], clamped to the
// slice. page and limit must already be validated as >= 1. Pages far past
// the end are empty; the offset is never computed when it could overflow.
func Paginate[T any](items []T, page, limit int) Page[T] {
	total := len(items)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := total
	if limit < total-start {
		end = start + limit
	}
	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{
		Items: out,
		Meta: Meta{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}
}

// Params reads page and limit from query values. A missing page is 1, a
// missing limit is defaultLimit; limit must lie in 1..maxLimit.
func Params(q url.Values, defaultLimit, maxLimit int) (page, limit int, err error) {
	page, err = intParam(q, "page", 1)
	if err != nil || page < 1 {
		return 0, 0, apperrors.InvalidInput("Parameter 'page' must be a positive integer").WithField("page")
	}
	limit, err = intParam(q, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, 0, apperrors.InvalidInput(fmt.Sprintf("Parameter 'limit' must be an integer from 1 to %d", maxLimit)).WithField("limit")
	}
	return page, limit, nil
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
