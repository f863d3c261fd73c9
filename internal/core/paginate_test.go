package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate(t *testing.T) {
	items := seq(15)
	cases := []struct {
		name          string
		page, perPage int
		want          []int
	}{
		{"first page", 1, 10, seq(10)},
		{"partial last page", 2, 10, []int{10, 11, 12, 13, 14}},
		{"beyond the end", 3, 10, []int{}},
		{"far beyond", 1000, 10, []int{}},
		{"offset would overflow", 4611686018427387905, 4, []int{}},
		{"max page", math.MaxInt, 10, []int{}},
		{"huge page size", 1, math.MaxInt, seq(15)},
		{"huge page size second page", 2, math.MaxInt, []int{}},
		{"page size one", 4, 1, []int{3}},
		{"page clamps to one", 0, 5, []int{0, 1, 2, 3, 4}},
		{"per page clamps to one", 2, 0, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(items, tc.page, tc.perPage)
			assert.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPaginateEmptyInput(t *testing.T) {
	got := Paginate([]int(nil), 1, 10)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPaginateCopies(t *testing.T) {
	items := seq(3)
	page := Paginate(items, 1, 3)
	page[0] = 42
	assert.Equal(t, 0, items[0])
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 2, TotalPages(15, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
	assert.Equal(t, 1, TotalPages(15, math.MaxInt))
}
