package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	p := NewPagination(2, 2, len(items))
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, []int{3, 4}, Paginate(items, p))
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())

	last := NewPagination(9, 2, len(items))
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, []int{5}, Paginate(items, last))
	assert.False(t, last.HasNext())

	assert.Nil(t, Paginate([]int{}, NewPagination(1, 10, 0)))
}

func TestPageFromQuery(t *testing.T) {
	assert.Equal(t, 1, PageFromQuery(url.Values{}))
	assert.Equal(t, 1, PageFromQuery(url.Values{"page": {"-3"}}))
	assert.Equal(t, 4, PageFromQuery(url.Values{"page": {"4"}}))
}
