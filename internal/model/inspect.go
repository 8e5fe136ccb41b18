package model

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/glasscom/catalog-builder/internal/price"
	"github.com/glasscom/catalog-builder/internal/types"
)

var slotCodeKey = regexp.MustCompile(`^cod(\d+)$`)

// MaxVariantIndex returns the highest N with a non-blank codN, or 0.
func MaxVariantIndex(record types.Record) int {
	maxIndex := 0
	for key, value := range record {
		match := slotCodeKey.FindStringSubmatch(key)
		if match == nil || strings.TrimSpace(value) == "" {
			continue
		}
		if n, err := strconv.Atoi(match[1]); err == nil && n > maxIndex {
			maxIndex = n
		}
	}
	return maxIndex
}

// HasZeroPrice reports whether any filled slot has a price equal to zero.
// Slots with a blank price do not count.
func HasZeroPrice(record types.Record) bool {
	n := MaxVariantIndex(record)
	for i := 1; i <= n; i++ {
		if strings.TrimSpace(record[CodeKey(i)]) == "" {
			continue
		}
		if price.IsZero(record[PriceKey(i)]) {
			return true
		}
	}
	return false
}

// CountFinishes returns the number of filled slots.
func CountFinishes(record types.Record) int {
	count := 0
	for key, value := range record {
		if slotCodeKey.MatchString(key) && strings.TrimSpace(value) != "" {
			count++
		}
	}
	return count
}

var categorySeparator = regexp.MustCompile(`\s*(?:>|\||/)\s*`)

// ExtractCategory splits "Maniglie > Pomoli" into its category and
// subcategory, both uppercased. When the category has no separator the
// subtitle is used as subcategory.
func ExtractCategory(category, subtitle string) (string, string) {
	cat := strings.ToUpper(strings.TrimSpace(category))
	sub := ""
	if cat != "" {
		parts := categorySeparator.Split(cat, 2)
		cat = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			sub = strings.TrimSpace(parts[1])
		}
	}
	if sub == "" {
		sub = strings.ToUpper(strings.TrimSpace(subtitle))
	}
	return cat, sub
}

// MostCommon returns the most frequent non-blank value. Ties go to the value
// seen first.
func MostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			counts[v]++
		}
	}

	best, bestCount := "", 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
