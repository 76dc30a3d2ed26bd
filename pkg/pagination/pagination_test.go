package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)
}

func TestNext(t *testing.T) {
	p := Params{Page: 2, Limit: 50}
	next := p.Next()
	assert.Equal(t, 3, next.Page)
	assert.Equal(t, 50, next.Limit)
}

func TestHasMore(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		fetched int
		want    bool
	}{
		{"more remain", 120, 100, true},
		{"exactly done", 120, 120, false},
		{"over-fetched", 120, 130, false},
		{"no reported total", 0, 50, false},
		{"negative total", -1, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Params{}.HasMore(tt.total, tt.fetched))
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"valid passes through", Params{Page: 3, Limit: 20}, Params{Page: 3, Limit: 20}},
		{"zero page", Params{Page: 0, Limit: 20}, Params{Page: 1, Limit: 20}},
		{"negative page", Params{Page: -2, Limit: 20}, Params{Page: 1, Limit: 20}},
		{"zero limit", Params{Page: 1, Limit: 0}, Params{Page: 1, Limit: 100}},
		{"oversized limit", Params{Page: 1, Limit: 5000}, Params{Page: 1, Limit: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}
