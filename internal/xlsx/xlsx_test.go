package xlsx

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/types"
)

func mkXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestRead(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{},
		{"Codice", "Descrizione", "Listino"},
		{"PB261 CR", " Pomolo ", "12,5"},
		{"", "", ""},
		{"PB261 CS", "Pomolo", "13"},
	})

	table, err := Read(bytes.NewReader(blob), "stan.xlsx", ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Codice", "Descrizione", "Listino"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Pomolo", table.Rows[0]["Descrizione"])
	assert.Equal(t, "PB261 CS", table.Rows[1]["Codice"])
	assert.Equal(t, "stan.xlsx", table.SourceFile)
}

func TestRead_KeepSpaces(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"Codice Articolo", "Nome Articolo"},
		{"PB261", "  Glasscom Pomolo "},
	})

	table, err := Read(bytes.NewReader(blob), "modello.xlsx", ReadOptions{KeepSpaces: true})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "  Glasscom Pomolo ", table.Rows[0]["Nome Articolo"])
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		kind csvparser.LoadErrorKind
	}{
		{"not a workbook", []byte("sku;parent\n"), csvparser.KindUnparseable},
		{"header only", mkXLSX(t, [][]any{{"sku", "parent"}}), csvparser.KindEmpty},
		{"empty sheet", mkXLSX(t, nil), csvparser.KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.blob), "in.xlsx", ReadOptions{})

			var loadErr *csvparser.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.kind, loadErr.Kind)
		})
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "modello.xlsx")
	keys := []string{"Codice Articolo", "cod1", "Prezzo_cod1"}
	records := []types.Record{
		{"Codice Articolo": "PB261", "cod1": "PB261 CR", "Prezzo_cod1": "12.50"},
		{"Codice Articolo": "NOPE"},
	}

	require.NoError(t, WriteFile(path, keys, records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, keys, rows[0])
	assert.Equal(t, []string{"PB261", "PB261 CR", "12.50"}, rows[1])
	assert.Equal(t, "NOPE", rows[2][0])
}
