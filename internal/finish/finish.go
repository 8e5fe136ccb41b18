// =============================================================================
// Catalog Builder - Finish Resolver
// =============================================================================
//
// Classic product codes end with a finish abbreviation ("PB261 CR" is the
// PB261 handle in Cromo Lucido). This module owns the finish vocabulary and
// the file names of derived assets (product image, technical sheet, finish
// swatch).
//
// =============================================================================

package finish

import (
	"path"
	"regexp"
	"strings"
)

// =============================================================================
// VOCABULARY
// =============================================================================

// Entry pairs a finish label with its code.
type Entry struct {
	Label string
	Code  string
}

// vocabulary is a bijection: no two entries share a label or a code.
var vocabulary = []Entry{
	{"Oro Satinato Antichizzato", "AO"},
	{"Cromo Lucido", "CR"},
	{"Cromo Satinato", "CS"},
	{"Cromo Opaco", "CO"},
	{"Cromo Perla", "CP"},
	{"Grigio Argento", "GA"},
	{"Inox Lucido", "IL"},
	{"Inox Satinato", "IX"},
	{"Effetto Inox Satinato", "EIX"},
	{"Nero Opaco", "NO"},
	{"Nichel Lucido", "NL"},
	{"Nichel Satinato", "NS"},
	{"Nichelato Opaco", "NP"},
	{"Alluminio Anodizzato", "AN"},
	{"Brillantato", "BA"},
	{"Ottone Lucido", "OLC"},
	{"Ottone Cromo Lucido", "OCL"},
	{"Ottone Cromo Satinato", "OCO"},
	{"Ottone Bronzato", "OBZ"},
	{"Ottone Spazzolato", "OSP"},
	{"Zincato", "ZN"},
}

var (
	labelByCode = make(map[string]string, len(vocabulary))
	codeByLabel = make(map[string]string, len(vocabulary))
)

func init() {
	for _, e := range vocabulary {
		labelByCode[e.Code] = e.Label
		codeByLabel[strings.ToLower(e.Label)] = e.Code
	}
}

// Entries returns the vocabulary in display order.
func Entries() []Entry {
	out := make([]Entry, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// LabelByCode returns the label for a finish code, or "".
func LabelByCode(code string) string {
	return labelByCode[strings.ToUpper(strings.TrimSpace(code))]
}

// CodeByLabel returns the code for a finish label, ignoring case, or "".
func CodeByLabel(label string) string {
	return codeByLabel[strings.ToLower(strings.TrimSpace(label))]
}

var leadingSeparators = regexp.MustCompile(`^[\s\-_]+`)

// CodeFromVariant extracts the finish code from a full variant code.
//
// PROCESS:
//  1. Drop the parent prefix when the code starts with it (any case)
//  2. Drop leading spaces, dashes and underscores
//  3. Take the last whitespace separated token, uppercased
//  4. Keep it only if it is a known finish code
//
// RETURNS:
//   - The finish code, or "" when unresolved or either input is blank.
func CodeFromVariant(parent, fullCode string) string {
	parent = strings.TrimSpace(parent)
	full := strings.TrimSpace(fullCode)
	if parent == "" || full == "" {
		return ""
	}

	rest := full
	if len(full) >= len(parent) && strings.EqualFold(full[:len(parent)], parent) {
		rest = strings.TrimSpace(full[len(parent):])
	}
	rest = leadingSeparators.ReplaceAllString(rest, "")

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}

	code := strings.ToUpper(fields[len(fields)-1])
	if _, ok := labelByCode[code]; !ok {
		return ""
	}
	return code
}

// =============================================================================
// ASSET NAMES
// =============================================================================

var nonAlnumRun = regexp.MustCompile(`[^A-Z0-9]+`)

// AssetFileName turns a product code into the base name of its assets:
// uppercase, runs of other characters collapsed to "_", no leading or
// trailing "_".
func AssetFileName(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = nonAlnumRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Assets holds the directories used in asset paths.
type Assets struct {
	ImageDir  string
	ImageExt  string
	PDFDir    string
	FinishDir string
}

// DefaultAssets returns the directory layout of the catalog site.
func DefaultAssets() Assets {
	return Assets{
		ImageDir:  "singoli-componenti/ALLimages",
		ImageExt:  ".jpg",
		PDFDir:    "singoli-componenti/ALLpdf",
		FinishDir: "finiture",
	}
}

// ImagePath is the product image of code.
func (a Assets) ImagePath(code string) string {
	return path.Join(a.ImageDir, AssetFileName(code)+a.ImageExt)
}

// SheetPath is the technical sheet PDF of code.
func (a Assets) SheetPath(code string) string {
	return path.Join(a.PDFDir, AssetFileName(code)+".pdf")
}

// SwatchPath is the image of a finish code, or "" for no finish.
func (a Assets) SwatchPath(finishCode string) string {
	if finishCode == "" {
		return ""
	}
	return path.Join(a.FinishDir, strings.ToUpper(finishCode)+".jpg")
}
