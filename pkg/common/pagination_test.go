package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPaginationParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{name: "defaults", query: "", want: PaginationParams{Page: 1, PageSize: 10}},
		{name: "explicit", query: "?page=3&page_size=5", want: PaginationParams{Page: 3, PageSize: 5}},
		{name: "garbage ignored", query: "?page=two&page_size=x", want: PaginationParams{Page: 1, PageSize: 10}},
		{name: "page passed through for clamping", query: "?page=-2", want: PaginationParams{Page: -2, PageSize: 10}},
		{name: "non-positive size ignored", query: "?page_size=0", want: PaginationParams{Page: 1, PageSize: 10}},
		{name: "size capped", query: "?page_size=1000", want: PaginationParams{Page: 1, PageSize: MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/memories"+tt.query, nil)
			assert.Equal(t, tt.want, ExtractPaginationParams(r, 10))
		})
	}
}

func TestBuildPaginationMeta(t *testing.T) {
	meta := BuildPaginationMeta(2, 10, 25, 3)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = BuildPaginationMeta(1, 10, 0, 0)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
