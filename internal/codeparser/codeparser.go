// =============================================================================
// Catalog Builder - Code Parsers
// =============================================================================
//
// A product code carries both the parent identifier and the variant suffix,
// but every product line writes them differently:
//
//   classic           "PB261 CR"      -> ("PB261", "CR")
//                     "MA12 DX CR"    -> ("MA12DX", "CR")
//                     "SMF40 CR"      -> ("SMF", "40 CR")
//   morsetti          "MB2/17.52"     -> ("MB2", "17.52")
//   tubi              "TUCO-01.304"   -> ("TUCO", "01.304")
//   senza_separatore  no splitter; see MatchPrefix
//
// Every output is trimmed and uppercased. An empty code yields ("", "").
//
// =============================================================================

package codeparser

import (
	"regexp"
	"strings"

	"github.com/glasscom/catalog-builder/internal/types"
)

// Parser splits a raw product code into parent and variant.
type Parser interface {
	Split(code string) (parent, variant string)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(code string) (parent, variant string)

// Split calls f(code).
func (f ParserFunc) Split(code string) (string, string) {
	return f(code)
}

// ForMode returns the parser for mode. Senza_separatore has no splitter of
// its own; it gets the classic parser, which is only used to pretty-print
// codes in that mode.
func ForMode(mode types.Mode) Parser {
	switch mode {
	case types.ModeMorsetti:
		return ParserFunc(Morsetti)
	case types.ModeTubi:
		return ParserFunc(Tubi)
	default:
		return ParserFunc(Classic)
	}
}

// =============================================================================
// CLASSIC
// =============================================================================

var tokenSeparator = regexp.MustCompile(`[\s_]+`)

// handedTokens are the second tokens that belong to the parent code.
var handedTokens = map[string]bool{"DX": true, "SX": true}

// letterOnlyPrefixes are product families whose parent code is the bare
// prefix with the size glued on, e.g. "SMF40".
var letterOnlyPrefixes = []string{"SMF"}

// prefixRemainders holds one compiled pattern per letter-only prefix.
var prefixRemainders = compilePrefixes(letterOnlyPrefixes)

func compilePrefixes(prefixes []string) map[string]*regexp.Regexp {
	compiled := make(map[string]*regexp.Regexp, len(prefixes))
	for _, prefix := range prefixes {
		compiled[prefix] = regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `([0-9][A-Z0-9]*)$`)
	}
	return compiled
}

// Classic splits on whitespace and underscores.
func Classic(code string) (string, string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ""
	}

	tokens := splitTokens(code)
	if len(tokens) == 0 {
		return "", ""
	}

	first, rest := tokens[0], tokens[1:]

	if len(rest) > 0 && handedTokens[rest[0]] {
		return first + rest[0], strings.Join(rest[1:], " ")
	}

	for _, prefix := range letterOnlyPrefixes {
		match := prefixRemainders[prefix].FindStringSubmatch(first)
		if match == nil {
			continue
		}
		variant := match[1]
		if len(rest) > 0 {
			variant += " " + strings.Join(rest, " ")
		}
		return prefix, variant
	}

	return first, strings.Join(rest, " ")
}

func splitTokens(code string) []string {
	parts := tokenSeparator.Split(code, -1)
	tokens := parts[:0]
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// =============================================================================
// MORSETTI / TUBI
// =============================================================================

// Morsetti splits on the first "/".
func Morsetti(code string) (string, string) {
	return splitOnce(code, "/")
}

// Tubi splits on the first "-". A code without "-" is all parent.
func Tubi(code string) (string, string) {
	return splitOnce(code, "-")
}

func splitOnce(code, sep string) (string, string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ""
	}
	parent, variant, _ := strings.Cut(code, sep)
	return strings.TrimSpace(parent), strings.TrimSpace(variant)
}

// =============================================================================
// SENZA SEPARATORE
// =============================================================================

// MatchPrefix reports whether code belongs to parent: code starts with
// parent, ignoring case. The variant is the rest of the code, trimmed and
// uppercased. An empty parent or code never matches.
func MatchPrefix(code, parent string) (string, bool) {
	code = strings.TrimSpace(code)
	parent = strings.TrimSpace(parent)
	if code == "" || parent == "" || len(code) < len(parent) {
		return "", false
	}
	if !strings.EqualFold(code[:len(parent)], parent) {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(code[len(parent):])), true
}
