// =============================================================================
// Catalog Builder - Model Row Builder
// =============================================================================
//
// This module turns a product group into one row of the final catalog model.
//
// SCHEMAS:
//   fixed    (classic, senza_separatore): five variant slots, each with code,
//            price, finish label and finish swatch image
//   dynamic  (morsetti, tubi): one slot per variant, each with code, price
//            and the raw variant suffix
//
// Slots are kept as a slice of Slot values; the cod1/Prezzo_cod1/fin1 keys
// only exist once a row is flattened with Record.
//
// =============================================================================

package model

import (
	"github.com/rs/zerolog"

	"github.com/glasscom/catalog-builder/internal/columns"
	"github.com/glasscom/catalog-builder/internal/finish"
	"github.com/glasscom/catalog-builder/internal/grouping"
	"github.com/glasscom/catalog-builder/internal/metrics"
	"github.com/glasscom/catalog-builder/internal/price"
	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// ROW STRUCTURE
// =============================================================================

// Slot is one variant position of a model row.
type Slot struct {
	Code  string
	Price string

	// Finish and FinishImage are used by the fixed schema.
	Finish      string
	FinishImage string

	// Variant is the raw suffix, used by the dynamic schema.
	Variant string
}

// Row is one product of the catalog model.
type Row struct {
	Mode types.Mode

	Product  string
	Category string
	Image    string
	Sheet    string
	Title    string
	Subtitle string
	Code     string

	Slots []Slot

	Dimension string
	Glass     string
	Material  string
	UM        string
	TechSheet string

	// NotFound marks a placeholder row for a requested code with no group.
	NotFound bool
}

// Ghost returns the placeholder row for a code that matched nothing.
func Ghost(code string, mode types.Mode) Row {
	return Row{Mode: mode, Code: code, NotFound: true}
}

// BuildInfo reports what Build had to leave out.
type BuildInfo struct {
	// Dropped is the number of variants past the last fixed slot.
	Dropped int
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder builds model rows. The zero value is not usable; see NewBuilder.
type Builder struct {
	assets  finish.Assets
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewBuilder creates a builder. m may be nil.
func NewBuilder(assets finish.Assets, logger zerolog.Logger, m *metrics.Metrics) *Builder {
	return &Builder{assets: assets, logger: logger, metrics: m}
}

// Build converts a group into a model row.
//
// PARAMETERS:
//   - group: The parent code, optional main row and ordered variants.
//   - mode: Selects the schema.
//   - cmap: Reads the descriptive columns and prices of source rows.
//
// RETURNS:
//   - The row. Building the same group twice yields equal rows.
//   - BuildInfo with the number of dropped variants.
func (b *Builder) Build(group grouping.Group, mode types.Mode, cmap columns.Map) (Row, BuildInfo) {
	row := Row{
		Mode:  mode,
		Code:  group.Code,
		Image: b.assets.ImagePath(group.Code),
		Sheet: b.assets.SheetPath(group.Code),
	}
	row.TechSheet = row.Sheet

	if group.HasMain() {
		row.Category = cmap.Get(group.Main, columns.RoleCat)
		row.Title = cmap.Get(group.Main, columns.RoleTitle)
		row.Dimension = cmap.Get(group.Main, columns.RoleDim)
		row.Glass = cmap.Get(group.Main, columns.RoleGlass)
		row.Material = cmap.Get(group.Main, columns.RoleMat)
		row.UM = cmap.Get(group.Main, columns.RoleUM)
	} else {
		row.Category = mostCommonRole(group.Variants, cmap, columns.RoleCat)
		row.UM = mostCommonRole(group.Variants, cmap, columns.RoleUM)
		if len(group.Variants) > 0 {
			row.Title = cmap.Get(group.Variants[0].Row, columns.RoleTitle)
		}
	}

	var info BuildInfo
	if mode.Dynamic() {
		row.Slots = b.dynamicSlots(group, cmap)
	} else {
		row.Slots, info.Dropped = b.fixedSlots(group, cmap)
	}

	if info.Dropped > 0 {
		b.logger.Warn().
			Str("code", group.Code).
			Str("mode", mode.String()).
			Int("variants", len(group.Variants)).
			Int("dropped", info.Dropped).
			Msg("variants beyond the last slot were dropped")
	}
	if b.metrics != nil {
		b.metrics.GroupsBuilt.WithLabelValues(mode.String()).Inc()
		if info.Dropped > 0 {
			b.metrics.VariantOverflow.WithLabelValues(mode.String()).Add(float64(info.Dropped))
		}
	}

	return row, info
}

func (b *Builder) fixedSlots(group grouping.Group, cmap columns.Map) ([]Slot, int) {
	variants := group.Variants
	dropped := 0
	if len(variants) > MaxFixedSlots {
		dropped = len(variants) - MaxFixedSlots
		variants = variants[:MaxFixedSlots]
	}

	slots := make([]Slot, 0, len(variants))
	for _, v := range variants {
		code := finish.CodeFromVariant(group.Code, v.Code)
		slots = append(slots, Slot{
			Code:        v.Code,
			Price:       price.Normalize(cmap.Get(v.Row, columns.RolePrice)),
			Finish:      finish.LabelByCode(code),
			FinishImage: b.assets.SwatchPath(code),
		})
	}
	return slots, dropped
}

func (b *Builder) dynamicSlots(group grouping.Group, cmap columns.Map) []Slot {
	if len(group.Variants) == 0 {
		return []Slot{{}}
	}
	slots := make([]Slot, 0, len(group.Variants))
	for _, v := range group.Variants {
		slots = append(slots, Slot{
			Code:    v.Code,
			Price:   price.Normalize(cmap.Get(v.Row, columns.RolePrice)),
			Variant: v.Suffix,
		})
	}
	return slots
}

func mostCommonRole(variants []grouping.Variant, cmap columns.Map, role columns.Role) string {
	values := make([]string, len(variants))
	for i, v := range variants {
		values[i] = cmap.Get(v.Row, role)
	}
	return MostCommon(values)
}
