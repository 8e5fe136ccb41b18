// =============================================================================
// Catalog Builder - Group Builder
// =============================================================================
//
// This module rebuilds parent/variant groups from a flat source table.
//
// CONTIGUOUS BLOCKS (classic, morsetti, tubi lookups):
//   The export has no reliable parent link. A row whose parent column is
//   blank (or a placeholder such as "nan") starts a product; every row after
//   it belongs to that product until the next blank-parent row. Row order is
//   therefore the only grouping signal and must never be changed.
//
// TABLE SCAN (batch builds, and every senza_separatore lookup):
//   Every row is tested against the requested parent code, adjacency does
//   not matter. Classic, morsetti and tubi derive the parent with the mode's
//   code parser; senza_separatore uses a case-insensitive prefix test.
//
// =============================================================================

package grouping

import (
	"errors"
	"strings"

	"github.com/glasscom/catalog-builder/internal/codeparser"
	"github.com/glasscom/catalog-builder/internal/columns"
	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/types"
)

// ErrNotFound is returned when a code matches no row, or only a variant row
// with no parent row above it.
var ErrNotFound = errors.New("code not found")

// =============================================================================
// GROUP STRUCTURE
// =============================================================================

// Variant is one variant row of a group.
type Variant struct {
	// Row is the source row.
	Row types.Row

	// Code is the full variant code as written in the source.
	Code string

	// Suffix is the variant part of Code according to the mode.
	Suffix string
}

// Group is a parent product with its variants in slot order.
type Group struct {
	// Code is the parent code used for Codice Articolo and asset names.
	Code string

	// Main is the parent row. It is nil for table-scan groups.
	Main types.Row

	Variants []Variant
}

// HasMain reports whether the group has a parent row.
func (g Group) HasMain() bool {
	return g.Main != nil
}

// placeholders are parent column values meaning "no parent".
var placeholders = map[string]bool{"": true, "nan": true, "none": true, "null": true, "na": true}

// IsPlaceholder reports whether a parent column value marks a parent row.
func IsPlaceholder(value string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(value))]
}

// =============================================================================
// LOOKUP
// =============================================================================

// Lookup finds the group of code in table. Classic, morsetti and tubi use
// contiguous blocks; senza_separatore scans the whole table by prefix.
func Lookup(table *csvparser.Table, cmap columns.Map, code string, mode types.Mode) (Group, error) {
	if table == nil {
		return Group{}, ErrNotFound
	}

	if mode == types.ModeSenzaSeparatore {
		group := Scan(table.Rows, func(row types.Row) string { return cmap.Get(row, columns.RoleSKU) }, code, mode)
		if len(group.Variants) == 0 {
			return Group{}, ErrNotFound
		}
		return group, nil
	}

	return Contiguous(table.Rows, cmap, code, codeparser.ForMode(mode))
}

// Contiguous finds the block that contains code.
//
// PROCESS:
//  1. Find the first row whose sku equals code (case-insensitive)
//  2. If its parent column is blank, it is the main row
//  3. Otherwise the nearest blank-parent row above it is the main row
//  4. Variants are the rows after the main row up to the next blank-parent row
//
// RETURNS:
//   - The group, with Code taken from the main row's sku.
//   - ErrNotFound when the code is absent or has no main row above it.
func Contiguous(rows []types.Row, cmap columns.Map, code string, parser codeparser.Parser) (Group, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Group{}, ErrNotFound
	}

	hit := -1
	for i, row := range rows {
		if strings.EqualFold(cmap.Get(row, columns.RoleSKU), code) {
			hit = i
			break
		}
	}
	if hit < 0 {
		return Group{}, ErrNotFound
	}

	isMain := func(i int) bool {
		return IsPlaceholder(cmap.Get(rows[i], columns.RoleParent))
	}

	mainIndex := -1
	for i := hit; i >= 0; i-- {
		if isMain(i) {
			mainIndex = i
			break
		}
	}
	if mainIndex < 0 {
		return Group{}, ErrNotFound
	}

	group := Group{
		Code: cmap.Get(rows[mainIndex], columns.RoleSKU),
		Main: rows[mainIndex],
	}

	for i := mainIndex + 1; i < len(rows) && !isMain(i); i++ {
		full := cmap.Get(rows[i], columns.RoleSKU)
		_, suffix := parser.Split(full)
		group.Variants = append(group.Variants, Variant{Row: rows[i], Code: full, Suffix: suffix})
	}

	return group, nil
}

// Scan collects every row that belongs to the requested parent code.
//
// PARAMETERS:
//   - rows: The source rows.
//   - codeOf: Returns the full product code of a row.
//   - requested: The parent code asked for.
//   - mode: Selects the parser or, for senza_separatore, the prefix test.
//
// RETURNS:
//   - The group in source order, without a main row. Code is the parser's
//     spelling of the parent from the first match, or the request uppercased
//     when nothing matched. An empty Variants slice means not found.
func Scan(rows []types.Row, codeOf func(types.Row) string, requested string, mode types.Mode) Group {
	requested = strings.TrimSpace(requested)
	group := Group{Code: strings.ToUpper(requested)}
	if requested == "" {
		return group
	}

	if mode == types.ModeSenzaSeparatore {
		for _, row := range rows {
			full := strings.TrimSpace(codeOf(row))
			if suffix, ok := codeparser.MatchPrefix(full, requested); ok {
				group.Variants = append(group.Variants, Variant{Row: row, Code: full, Suffix: suffix})
			}
		}
		return group
	}

	parser := codeparser.ForMode(mode)
	for _, row := range rows {
		full := strings.TrimSpace(codeOf(row))
		if full == "" {
			continue
		}
		parent, suffix := parser.Split(full)
		if parent == "" || !strings.EqualFold(parent, requested) {
			continue
		}
		if len(group.Variants) == 0 {
			group.Code = strings.ToUpper(parent)
		}
		group.Variants = append(group.Variants, Variant{Row: row, Code: full, Suffix: suffix})
	}

	return group
}
