package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glasscom/catalog-builder/internal/types"
)

func TestMaxVariantIndex(t *testing.T) {
	assert.Equal(t, 0, MaxVariantIndex(types.Record{"Codice Articolo": "P"}))
	assert.Equal(t, 12, MaxVariantIndex(types.Record{"cod1": "a", "cod12": "b", "cod13": " ", "Prezzo_cod20": "1"}))
}

func TestHasZeroPrice(t *testing.T) {
	tests := []struct {
		name   string
		record types.Record
		want   bool
	}{
		{"zero with comma", types.Record{"cod1": "A", "Prezzo_cod1": "0,00"}, true},
		{"zero in later slot", types.Record{"cod1": "A", "Prezzo_cod1": "3", "cod2": "B", "Prezzo_cod2": "0"}, true},
		{"blank price ignored", types.Record{"cod1": "A", "Prezzo_cod1": ""}, false},
		{"empty slot ignored", types.Record{"cod1": "", "Prezzo_cod1": "0", "cod2": "B", "Prezzo_cod2": "5"}, false},
		{"no slots", types.Record{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasZeroPrice(tt.record))
		})
	}
}

func TestCountFinishes(t *testing.T) {
	assert.Equal(t, 2, CountFinishes(types.Record{"cod1": "A", "cod2": "", "cod3": "C", "fin1": "Cromo Lucido"}))
	assert.Equal(t, 0, CountFinishes(types.Record{}))
}

func TestExtractCategory(t *testing.T) {
	tests := []struct {
		category, subtitle string
		cat, sub           string
	}{
		{"Maniglie > Pomoli", "", "MANIGLIE", "POMOLI"},
		{"maniglie|pomoli|ottone", "", "MANIGLIE", "POMOLI|OTTONE"},
		{"Cerniere / Vetro", "ignored", "CERNIERE", "VETRO"},
		{"Cerniere", "per box", "CERNIERE", "PER BOX"},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			cat, sub := ExtractCategory(tt.category, tt.subtitle)
			assert.Equal(t, tt.cat, cat)
			assert.Equal(t, tt.sub, sub)
		})
	}
}

func TestMostCommon(t *testing.T) {
	assert.Equal(t, "b", MostCommon([]string{"a", "b", " b ", ""}))
	assert.Equal(t, "a", MostCommon([]string{"a", "b", "b", "a"}))
	assert.Equal(t, "", MostCommon([]string{"", " "}))
	assert.Equal(t, "", MostCommon(nil))
}
