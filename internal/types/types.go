// =============================================================================
// Catalog Builder - Shared Types
// =============================================================================
//
// This package contains the types shared by the parsing, grouping and model
// packages. Keeping them here avoids import cycles between:
//   - csvparser
//   - columns
//   - grouping
//   - model
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// SOURCE ROWS
// =============================================================================

// Row is one record of a source table, keyed by the raw header string.
// Rows are never mutated after parsing.
type Row map[string]string

// Record is one flattened output record, keyed by export schema key.
type Record map[string]string

// =============================================================================
// MODES
// =============================================================================

// Mode selects the code parser, the grouping algorithm and the output schema.
type Mode string

const (
	// ModeClassic splits codes on whitespace/underscore and resolves finishes.
	ModeClassic Mode = "classic"

	// ModeMorsetti splits codes on the first "/".
	ModeMorsetti Mode = "morsetti"

	// ModeTubi splits codes on the first "-".
	ModeTubi Mode = "tubi"

	// ModeSenzaSeparatore matches codes by case-insensitive prefix.
	ModeSenzaSeparatore Mode = "senza_separatore"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeClassic, ModeMorsetti, ModeTubi, ModeSenzaSeparatore}

// ParseMode converts a user supplied mode name. Matching ignores case and
// accepts "-" in place of "_".
func ParseMode(name string) (Mode, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return ModeClassic, nil
	}
	for _, mode := range Modes {
		if string(mode) == normalized {
			return mode, nil
		}
	}
	if normalized == "senzaseparatore" {
		return ModeSenzaSeparatore, nil
	}
	return "", fmt.Errorf("unknown mode %q", name)
}

// Dynamic reports whether the mode uses the variable-width slot schema.
func (m Mode) Dynamic() bool {
	return m == ModeMorsetti || m == ModeTubi
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}
