package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glasscom/catalog-builder/internal/types"
)

func TestFixedKeys(t *testing.T) {
	keys := FixedKeys()

	assert.Len(t, keys, 32)
	assert.Equal(t, []string{"Prodotto", "Categoria", "@image_01", "@image_scheda", "Nome Articolo", "Sottotitolo", "Codice Articolo"}, keys[:7])
	assert.Equal(t, []string{"cod1", "Prezzo_cod1", "fin1", "@image_fin1"}, keys[7:11])
	assert.Equal(t, []string{"Dimensione", "Per Vetro", "Materiale", "UM", "@image_SchedeTecniche"}, keys[27:])
}

func TestDynamicKeys(t *testing.T) {
	assert.Equal(t, DynamicKeys(1), DynamicKeys(0))
	keys := DynamicKeys(2)
	assert.Len(t, keys, 7+6+5)
	assert.Equal(t, []string{"cod1", "Prezzo_cod1", "var1", "cod2", "Prezzo_cod2", "var2"}, keys[7:13])
}

func TestExportKeys(t *testing.T) {
	records := []types.Record{
		{"cod1": "A/1", "cod2": "A/2"},
		{"cod1": "B/1", "cod2": "B/2", "cod3": "B/3", "cod4": " "},
		{"cod7": ""},
	}

	assert.Equal(t, DynamicKeys(3), ExportKeys(types.ModeTubi, records))
	assert.Equal(t, DynamicKeys(1), ExportKeys(types.ModeMorsetti, nil))
	assert.Equal(t, FixedKeys(), ExportKeys(types.ModeSenzaSeparatore, records))
}

func TestFromRecord_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"fixed", Row{
			Mode: types.ModeClassic, Code: "PB261", Title: "Pomolo", Category: "Maniglie",
			Slots: []Slot{
				{Code: "PB261 CR", Price: "12.50", Finish: "Cromo Lucido", FinishImage: "finiture/CR.jpg"},
				{Code: "PB261 CS", Price: "13.00", Finish: "Cromo Satinato", FinishImage: "finiture/CS.jpg"},
			},
		}},
		{"dynamic", Row{
			Mode: types.ModeTubi, Code: "TUCO", UM: "MT",
			Slots: []Slot{{Code: "TUCO-1", Price: "1.00", Variant: "1"}, {Code: "TUCO-2", Variant: "2"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.row, FromRecord(tt.row.Record(), tt.row.Mode))
		})
	}
}

func TestFromRecord_CapsFixedSlots(t *testing.T) {
	record := types.Record{"Codice Articolo": "P", "cod1": "P 1", "cod6": "P 6"}

	row := FromRecord(record, types.ModeClassic)

	assert.Len(t, row.Slots, MaxFixedSlots)
	assert.Equal(t, "P 1", row.Slots[0].Code)
	assert.Equal(t, "", row.Slots[4].Code)
}
