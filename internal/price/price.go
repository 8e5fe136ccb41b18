// Package price normalizes list prices written with either decimal
// convention ("1.234,56", "1234.56", "€ 12,5") to a dot decimal string with
// two fraction digits.
package price

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numberPrefix is the longest leading number in a cleaned price.
var numberPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// Normalize converts a raw price. Anything that does not start with a number
// yields "", never an error.
//
// STEPS:
//  1. Drop whitespace, then every character except digits , . and -
//  2. Both "," and "." present: "." is the thousands separator, "," the decimal
//  3. Only "," present: "," is the decimal
//  4. Parse the longest leading number and ignore the rest ("12.00-15.00" is 12)
//  5. Format with two decimals, exact halves rounded away from zero
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	s := b.String()
	if s == "" {
		return ""
	}

	hasComma := strings.Contains(s, ",")
	switch {
	case hasComma && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	s = numberPrefix.FindString(s)
	if s == "" {
		return ""
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(value, 0) {
		return ""
	}
	return fixed2(value)
}

// fixed2 formats value with two decimals. The rounding works on the exact
// binary value, so 0.125 rounds up while 1.005 (stored just below) rounds down.
// A value that rounds to zero prints as "0.00", without a sign.
func fixed2(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	scaled := new(big.Rat).SetFloat64(value)
	scaled.Mul(scaled, big.NewRat(100, 1))

	cents := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	rest := new(big.Rat).Sub(scaled, new(big.Rat).SetInt(cents))
	if rest.Cmp(big.NewRat(1, 2)) >= 0 {
		cents.Add(cents, big.NewInt(1))
	}

	if cents.Sign() == 0 {
		sign = ""
	}

	digits := cents.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

// IsZero reports whether a price value is present and equal to zero.
// Both decimal conventions are accepted.
func IsZero(value string) bool {
	normalized := Normalize(value)
	if normalized == "" {
		return false
	}
	f, err := strconv.ParseFloat(normalized, 64)
	return err == nil && f == 0
}
