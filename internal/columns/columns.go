// =============================================================================
// Catalog Builder - Column Resolver
// =============================================================================
//
// Source exports do not agree on header names ("sku", "SKU", "parent_sku",
// "Parent SKU"...). This module maps the headers of a loaded table to the
// semantic roles the grouping and model code needs.
//
// MATCHING:
//   For each role, candidates are tried in order:
//     1. Case-insensitive exact match against every header
//     2. Only if pass 1 found nothing: case-insensitive substring match
//        (candidate contained in header)
//   The first hit wins. Roles with no hit are absent from the Map, and
//   reading an absent role always yields "".
//
// =============================================================================

package columns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/types"
)

// Role names a semantic column.
type Role string

const (
	RoleSKU    Role = "sku"
	RoleParent Role = "parent"
	RoleTitle  Role = "title"
	RoleCat    Role = "cat"
	RolePrice  Role = "price"
	RoleFin    Role = "fin"
	RoleUM     Role = "um"
	RoleMat    Role = "mat"
	RoleDim    Role = "dim"
	RoleGlass  Role = "glass"

	// Batch sources (the raw STAN export) have no parent column; the code
	// column carries the full variant code and the description is the title.
	RoleCode Role = "code"
	RoleDesc Role = "desc"
)

// Candidates lists the header names accepted for each role, best first.
type Candidates map[Role][]string

// Map is the result of resolving a header list: role -> header.
type Map map[Role]string

// DefaultCandidates returns the built-in candidates for lookup sources.
func DefaultCandidates() Candidates {
	return Candidates{
		RoleSKU:    {"sku"},
		RoleParent: {"parent_sku", "parent sku", "parent"},
		RoleTitle:  {"post_title", "titolo"},
		RoleCat:    {"categoria", "product_cat"},
		RolePrice:  {"regular_price", "price"},
		RoleFin:    {"meta:attribute_pa_finitura", "finitura"},
		RoleUM:     {"um"},
		RoleMat:    {"materiale"},
		RoleDim:    {"dimensione", "size"},
		RoleGlass:  {"per vetro", "vetro"},
	}
}

// WithOverrides returns a copy of base where every role named in overrides
// uses the override list instead. Unknown role names are added as-is.
func WithOverrides(base Candidates, overrides map[string][]string) Candidates {
	merged := make(Candidates, len(base)+len(overrides))
	for role, names := range base {
		merged[role] = names
	}
	for name, names := range overrides {
		if len(names) == 0 {
			continue
		}
		merged[Role(strings.ToLower(strings.TrimSpace(name)))] = names
	}
	return merged
}

// Resolve maps each role to the best matching header.
//
// PARAMETERS:
//   - headers: The header row of the table, in file order.
//   - candidates: The accepted names for each role.
//
// RETURNS:
//   - The resolved Map. With no headers every role is absent.
func Resolve(headers []string, candidates Candidates) Map {
	resolved := make(Map, len(candidates))
	if len(headers) == 0 {
		return resolved
	}

	for role, names := range candidates {
		if header, ok := matchExact(headers, names); ok {
			resolved[role] = header
			continue
		}
		if header, ok := matchSubstring(headers, names); ok {
			resolved[role] = header
		}
	}

	return resolved
}

func matchExact(headers, names []string) (string, bool) {
	for _, name := range names {
		for _, header := range headers {
			if strings.EqualFold(strings.TrimSpace(header), strings.TrimSpace(name)) {
				return header, true
			}
		}
	}
	return "", false
}

func matchSubstring(headers, names []string) (string, bool) {
	for _, name := range names {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		for _, header := range headers {
			if strings.Contains(strings.ToLower(header), needle) {
				return header, true
			}
		}
	}
	return "", false
}

// Header returns the header resolved for role.
func (m Map) Header(role Role) (string, bool) {
	header, ok := m[role]
	return header, ok
}

// Get reads the trimmed value of role from row. Absent roles and missing
// cells yield "".
func (m Map) Get(row types.Row, role Role) string {
	header, ok := m[role]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[header])
}

// Require checks that every listed role resolved. The error is a
// *csvparser.LoadError of kind KindMissingColumn.
func Require(source string, m Map, roles ...Role) error {
	var missing []string
	for _, role := range roles {
		if _, ok := m[role]; !ok {
			missing = append(missing, string(role))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &csvparser.LoadError{
		Source: source,
		Kind:   csvparser.KindMissingColumn,
		Err:    fmt.Errorf("no column for role %s", strings.Join(missing, ", ")),
	}
}

// ErrNoHeaders is returned by Guess when the header list is empty.
var ErrNoHeaders = errors.New("no headers")
