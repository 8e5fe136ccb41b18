package finish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyIsBijection(t *testing.T) {
	entries := Entries()
	require.Len(t, entries, 21)

	for _, e := range entries {
		assert.Equal(t, e.Label, LabelByCode(e.Code))
		assert.Equal(t, e.Code, CodeByLabel(e.Label))
	}
	assert.Len(t, labelByCode, len(entries))
	assert.Len(t, codeByLabel, len(entries))
}

func TestLabelByCode(t *testing.T) {
	assert.Equal(t, "Cromo Lucido", LabelByCode("cr"))
	assert.Equal(t, "Effetto Inox Satinato", LabelByCode(" EIX "))
	assert.Equal(t, "", LabelByCode("XX"))
	assert.Equal(t, "", LabelByCode(""))
}

func TestCodeFromVariant(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		full   string
		want   string
	}{
		{"suffix after space", "PB261", "PB261 CR", "CR"},
		{"lower case", "pb261", "PB261 cs", "CS"},
		{"dash separator", "PB261", "PB261-OLC", "OLC"},
		{"last token wins", "PB261", "PB261 40 NO", "NO"},
		{"no parent prefix", "MA12DX", "MA12 DX CR", "CR"},
		{"unknown finish", "PB261", "PB261 ZZ", ""},
		{"nothing after parent", "PB261", "PB261", ""},
		{"blank parent", "", "PB261 CR", ""},
		{"blank code", "PB261", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeFromVariant(tt.parent, tt.full))
		})
	}
}

func TestAssetFileName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"PB261", "PB261"},
		{"mb2/17.52", "MB2_17_52"},
		{"  --TUCO 01.304-- ", "TUCO_01_304"},
		{"A__B", "A_B"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, AssetFileName(tt.code))
		})
	}
}

func TestAssetsPaths(t *testing.T) {
	a := DefaultAssets()

	assert.Equal(t, "singoli-componenti/ALLimages/MB2_17.jpg", a.ImagePath("MB2/17"))
	assert.Equal(t, "singoli-componenti/ALLpdf/MB2_17.pdf", a.SheetPath("MB2/17"))
	assert.Equal(t, "finiture/CR.jpg", a.SwatchPath("cr"))
	assert.Equal(t, "", a.SwatchPath(""))
}
