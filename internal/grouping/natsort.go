package grouping

import (
	"slices"
	"strings"
	"unicode"
)

// SortVariants orders the variants by suffix in natural, case-insensitive
// order ("2" before "10"). Equal suffixes keep their source order.
func SortVariants(g *Group) {
	slices.SortStableFunc(g.Variants, func(a, b Variant) int {
		return NaturalCompare(a.Suffix, b.Suffix)
	})
}

// NaturalCompare compares strings chunk by chunk: digit runs by numeric
// value, everything else rune by rune ignoring case.
func NaturalCompare(a, b string) int {
	ar, br := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0

	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			if c := compareDigits(ar[si:i], br[sj:j]); c != 0 {
				return c
			}
			continue
		}

		if ar[i] != br[j] {
			if ar[i] < br[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	switch {
	case len(ar)-i < len(br)-j:
		return -1
	case len(ar)-i > len(br)-j:
		return 1
	}
	return 0
}

// compareDigits compares two digit runs by value; with equal values the run
// with fewer leading zeros sorts first.
func compareDigits(a, b []rune) int {
	ta, tb := trimZeros(a), trimZeros(b)
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	for k := range ta {
		if ta[k] != tb[k] {
			if ta[k] < tb[k] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func trimZeros(r []rune) []rune {
	for len(r) > 1 && r[0] == '0' {
		r = r[1:]
	}
	return r
}
