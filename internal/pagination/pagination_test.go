package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	var p PageRequest
	p.Defaults()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, PageSize: 500}
	p.Defaults()
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 1, 20, 41)
	assert.NotNil(t, resp.Data, "nil data should encode as an empty list")
	assert.Equal(t, 3, resp.TotalPages)

	resp = NewPageResponse([]string{"a"}, 1, 0, 1)
	assert.Equal(t, 0, resp.TotalPages)
}
