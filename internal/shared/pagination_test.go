package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name            string
		page, perPage   int
		wantPage, wantN int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative", -3, -1, 1, 20},
		{"clamped", 2, 500, 2, 100},
		{"kept", 4, 50, 4, 50},
		{"page capped", math.MaxInt, 100, maxPage, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, perPage := NormalizePage(tc.page, tc.perPage)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantN, perPage)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(3, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 20, p.Offset())

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, 0, empty.Offset())
}
