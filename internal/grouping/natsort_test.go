package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"a2", "A10", -1},
		{"CR", "cr", 0},
		{"01.304", "01.32", 1},
		{"1", "01", -1},
		{"", "A", -1},
		{"x", "x1", -1},
		{"17.52", "17.52", 0},
		{"b", "a10", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, NaturalCompare(tt.a, tt.b))
		})
	}
}

func TestSortVariants_Stable(t *testing.T) {
	g := Group{Variants: []Variant{
		{Code: "X 10", Suffix: "10"},
		{Code: "X 9 first", Suffix: "9"},
		{Code: "X CR", Suffix: "cr"},
		{Code: "X 9 second", Suffix: "9"},
		{Code: "X AO", Suffix: "AO"},
	}}

	SortVariants(&g)

	assert.Equal(t, []string{"X 9 first", "X 9 second", "X 10", "X AO", "X CR"}, skus(g))
}
