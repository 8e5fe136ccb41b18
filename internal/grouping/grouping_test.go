package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasscom/catalog-builder/internal/codeparser"
	"github.com/glasscom/catalog-builder/internal/columns"
	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/types"
)

var lookupHeaders = []string{"sku", "parent_sku", "post_title", "regular_price", "finitura"}

func lookupTable(t *testing.T, records [][]string) (*csvparser.Table, columns.Map) {
	t.Helper()
	table, err := csvparser.NewTable("test", lookupHeaders, records)
	require.NoError(t, err)
	return table, columns.Resolve(table.Headers, columns.DefaultCandidates())
}

func skus(g Group) []string {
	out := make([]string, len(g.Variants))
	for i, v := range g.Variants {
		out[i] = v.Code
	}
	return out
}

func TestLookup_ScenarioA(t *testing.T) {
	table, cmap := lookupTable(t, [][]string{
		{"PARENT1", "", "Maniglia", "", ""},
		{"VAR1", "PARENT1", "", "1234,56", "Finitura base"},
		{"VAR2", "PARENT1", "", "1.234,56", ""},
		{"PARENT2", "nan", "Pomolo", "", ""},
		{"VAR3", "PARENT2", "", "5", ""},
	})

	for _, code := range []string{"VAR1", "var2", "PARENT1"} {
		t.Run(code, func(t *testing.T) {
			g, err := Lookup(table, cmap, code, types.ModeClassic)
			require.NoError(t, err)

			assert.Equal(t, "PARENT1", g.Code)
			require.True(t, g.HasMain())
			assert.Equal(t, "Maniglia", g.Main["post_title"])
			assert.Equal(t, []string{"VAR1", "VAR2"}, skus(g))
		})
	}
}

func TestLookup_PlaceholderParentsEndBlocks(t *testing.T) {
	for _, placeholder := range []string{"", "NaN", "none", "NULL", "na", "  "} {
		t.Run(placeholder, func(t *testing.T) {
			table, cmap := lookupTable(t, [][]string{
				{"P1", "", "", "", ""},
				{"V1", "P1", "", "", ""},
				{"P2", placeholder, "", "", ""},
				{"V2", "P2", "", "", ""},
			})

			g, err := Lookup(table, cmap, "V1", types.ModeClassic)
			require.NoError(t, err)
			assert.Equal(t, []string{"V1"}, skus(g))
		})
	}
}

func TestLookup_NotFound(t *testing.T) {
	table, cmap := lookupTable(t, [][]string{
		{"V0", "P0", "", "", ""},
		{"P1", "", "", "", ""},
		{"V1", "P1", "", "", ""},
	})

	tests := []struct {
		name string
		code string
	}{
		{"absent code", "NOPE"},
		{"orphaned variant", "V0"},
		{"blank code", " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lookup(table, cmap, tt.code, types.ModeClassic)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}

	_, err := Lookup(nil, cmap, "P1", types.ModeClassic)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_ParentWithoutVariants(t *testing.T) {
	table, cmap := lookupTable(t, [][]string{
		{"P1", "", "", "", ""},
		{"P2", "", "", "", ""},
	})

	g, err := Lookup(table, cmap, "P1", types.ModeClassic)
	require.NoError(t, err)
	assert.Equal(t, "P1", g.Code)
	assert.Empty(t, g.Variants)
}

func TestLookup_SuffixFollowsMode(t *testing.T) {
	table, cmap := lookupTable(t, [][]string{
		{"MB2", "", "", "", ""},
		{"MB2/17.52", "MB2", "", "", ""},
		{"MB2/21", "MB2", "", "", ""},
	})

	g, err := Lookup(table, cmap, "MB2/21", types.ModeMorsetti)
	require.NoError(t, err)
	require.Len(t, g.Variants, 2)
	assert.Equal(t, "17.52", g.Variants[0].Suffix)
	assert.Equal(t, "21", g.Variants[1].Suffix)
}

func TestLookup_SenzaSeparatoreScansWholeTable(t *testing.T) {
	table, cmap := lookupTable(t, [][]string{
		{"CERN40CR", "X", "", "", ""},
		{"OTHER", "", "", "", ""},
		{"cern40 cs", "Y", "", "", ""},
	})

	g, err := Lookup(table, cmap, "cern40", types.ModeSenzaSeparatore)
	require.NoError(t, err)

	assert.Equal(t, "CERN40", g.Code)
	assert.False(t, g.HasMain())
	assert.Equal(t, []string{"CERN40CR", "cern40 cs"}, skus(g))
	assert.Equal(t, "CS", g.Variants[1].Suffix)

	_, err = Lookup(table, cmap, "ZZZ", types.ModeSenzaSeparatore)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScan_DerivedParent(t *testing.T) {
	rows := []types.Row{
		{"code": "pb261 cr"},
		{"code": ""},
		{"code": "PB2610 CR"},
		{"code": "PB261_CS"},
		{"code": "MA12 DX CR"},
	}
	codeOf := func(r types.Row) string { return r["code"] }

	g := Scan(rows, codeOf, "Pb261", types.ModeClassic)
	assert.Equal(t, "PB261", g.Code)
	assert.Equal(t, []string{"pb261 cr", "PB261_CS"}, skus(g))
	assert.Equal(t, []string{"CR", "CS"}, []string{g.Variants[0].Suffix, g.Variants[1].Suffix})

	handed := Scan(rows, codeOf, "ma12dx", types.ModeClassic)
	assert.Equal(t, "MA12DX", handed.Code)
	assert.Len(t, handed.Variants, 1)

	missing := Scan(rows, codeOf, "nope", types.ModeClassic)
	assert.Equal(t, "NOPE", missing.Code)
	assert.Empty(t, missing.Variants)
}

func TestScan_Tubi(t *testing.T) {
	rows := []types.Row{
		{"code": "TUCO-10"},
		{"code": "TUCOX-1"},
		{"code": "tuco-2"},
		{"code": "TUCO"},
	}

	g := Scan(rows, func(r types.Row) string { return r["code"] }, "TUCO", types.ModeTubi)
	assert.Equal(t, []string{"TUCO-10", "tuco-2", "TUCO"}, skus(g))

	SortVariants(&g)
	assert.Equal(t, []string{"TUCO", "tuco-2", "TUCO-10"}, skus(g))
}

func TestContiguous_CustomParser(t *testing.T) {
	rows := []types.Row{{"sku": "P", "parent": ""}, {"sku": "P:1", "parent": "P"}}
	cmap := columns.Map{columns.RoleSKU: "sku", columns.RoleParent: "parent"}
	parser := codeparser.ParserFunc(func(code string) (string, string) { return "P", code[2:] })

	g, err := Contiguous(rows, cmap, "P", parser)
	require.NoError(t, err)
	assert.Equal(t, "1", g.Variants[0].Suffix)
}
