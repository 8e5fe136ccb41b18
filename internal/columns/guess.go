package columns

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// GuessRule is the batch lookup rule for one role: candidates plus the header
// position used when nothing matches.
type GuessRule struct {
	Candidates []string
	Fallback   int
}

// BatchRules returns the rules for the raw catalog export.
func BatchRules() map[Role]GuessRule {
	return map[Role]GuessRule{
		RoleCode:  {Candidates: []string{"codice dream", "codice", "sku", "articolo", "code"}, Fallback: 0},
		RoleDesc:  {Candidates: []string{"descrizione"}, Fallback: 3},
		RoleCat:   {Candidates: []string{"categoria merc", "categoria", "cat merc", "merc"}, Fallback: 2},
		RoleUM:    {Candidates: []string{"u.m.", "um", "unita", "unità", "unità di misura", "u m"}, Fallback: 4},
		RolePrice: {Candidates: []string{"listino", "prezzo", "price", "€", "eur"}, Fallback: 6},
	}
}

// BatchRulesWithOverrides replaces the candidates of the named roles and
// keeps their fallback positions.
func BatchRulesWithOverrides(overrides map[string][]string) map[Role]GuessRule {
	rules := BatchRules()
	for name, names := range overrides {
		if len(names) == 0 {
			continue
		}
		role := Role(strings.ToLower(strings.TrimSpace(name)))
		rule := rules[role]
		rule.Candidates = names
		rules[role] = rule
	}
	return rules
}

// GuessAll applies Guess to every rule. Roles are always present in the
// result when headers is not empty.
func GuessAll(headers []string, rules map[Role]GuessRule) Map {
	guessed := make(Map, len(rules))
	for role, rule := range rules {
		if header, err := Guess(headers, rule.Candidates, rule.Fallback); err == nil {
			guessed[role] = header
		}
	}
	return guessed
}

// Guess finds the header for a batch role. Headers and candidates are
// normalized first (lower case, accents folded to ASCII, runs of anything
// that is not a letter or digit turned into one space). An exact match wins
// over a substring match; with neither the header at fallbackIndex is used,
// or the first header when the index is out of range.
func Guess(headers []string, candidates []string, fallbackIndex int) (string, error) {
	if len(headers) == 0 {
		return "", ErrNoHeaders
	}

	normalized := make([]string, len(headers))
	for i, header := range headers {
		normalized[i] = normalizeHeader(header)
	}

	for _, candidate := range candidates {
		want := normalizeHeader(candidate)
		if want == "" {
			continue
		}
		for i, header := range normalized {
			if header == want {
				return strings.TrimSpace(headers[i]), nil
			}
		}
	}

	for _, candidate := range candidates {
		want := normalizeHeader(candidate)
		if want == "" {
			continue
		}
		for i, header := range normalized {
			if header != "" && strings.Contains(header, want) {
				return strings.TrimSpace(headers[i]), nil
			}
		}
	}

	if fallbackIndex >= 0 && fallbackIndex < len(headers) {
		return strings.TrimSpace(headers[fallbackIndex]), nil
	}
	return strings.TrimSpace(headers[0]), nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeHeader folds a header to a comparable ASCII form.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "€", "eur")

	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}

	return strings.TrimSpace(nonAlnum.ReplaceAllString(s, " "))
}
