package pagination

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name        string
		page, limit int
		want        []int
		totalPages  int
		next, prev  bool
	}{
		{"first page", 1, 3, []int{1, 2, 3}, 3, true, false},
		{"middle page", 2, 3, []int{4, 5, 6}, 3, true, true},
		{"last partial page", 3, 3, []int{7}, 3, false, true},
		{"past the end", 9, 3, []int{}, 3, false, true},
		{"everything", 1, 50, items, 1, false, false},
		{"first page after the end", 4, 3, []int{}, 3, false, true},
		{"largest page", math.MaxInt, 3, []int{}, 3, false, true},
		{"largest page with large limit", math.MaxInt, 50, []int{}, 1, false, true},
		{"largest limit", 1, math.MaxInt, items, 1, false, false},
		{"second page of largest limit", 2, math.MaxInt, []int{}, 1, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Paginate(items, tc.page, tc.limit)
			assert.Equal(t, tc.want, p.Items)
			assert.Equal(t, 7, p.Meta.Total)
			assert.Equal(t, tc.totalPages, p.Meta.TotalPages)
			assert.Equal(t, tc.next, p.Meta.HasNextPage)
			assert.Equal(t, tc.prev, p.Meta.HasPrevPage)
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate([]string{}, 1, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.Meta.TotalPages)
	assert.False(t, p.Meta.HasNextPage)
	assert.False(t, p.Meta.HasPrevPage)
}

func TestPaginateCopies(t *testing.T) {
	items := []int{1, 2, 3}
	p := Paginate(items, 1, 2)
	p.Items[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestParams(t *testing.T) {
	page, limit, err := Params(url.Values{}, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	page, limit, err = Params(url.Values{"page": {"3"}, "limit": {"50"}}, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)

	page, _, err = Params(url.Values{"page": {strconv.Itoa(math.MaxInt)}}, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, page)

	bad := []url.Values{
		{"page": {"99999999999999999999"}},
		{"page": {"0"}},
		{"page": {"-1"}},
		{"page": {"abc"}},
		{"limit": {"0"}},
		{"limit": {"51"}},
		{"limit": {"x"}},
	}
	for _, q := range bad {
		_, _, err := Params(q, 10, 50)
		assert.Error(t, err, "query %v", q)
	}
}

func TestPaginateLargestPageFromParams(t *testing.T) {
	page, limit, err := Params(url.Values{"page": {strconv.Itoa(math.MaxInt)}, "limit": {"50"}}, 10, 50)
	require.NoError(t, err)

	p := Paginate([]int{1, 2, 3}, page, limit)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 3, p.Meta.Total)
	assert.Equal(t, 1, p.Meta.TotalPages)
	assert.False(t, p.Meta.HasNextPage)
}
