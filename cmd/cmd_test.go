package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasscom/catalog-builder/internal/config"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/source"
	"github.com/glasscom/catalog-builder/internal/storage"
	"github.com/glasscom/catalog-builder/internal/types"
)

func withConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = config.Default()
	cfg.Output.Dir = t.TempDir()
	t.Cleanup(func() { cfg = prev })
}

func TestResolveMode(t *testing.T) {
	withConfig(t)

	mode, err := resolveMode("")
	require.NoError(t, err)
	assert.Equal(t, types.ModeClassic, mode)

	mode, err = resolveMode("senza-separatore")
	require.NoError(t, err)
	assert.Equal(t, types.ModeSenzaSeparatore, mode)

	_, err = resolveMode("spirale")
	assert.Error(t, err)
}

func TestSessionModeFor(t *testing.T) {
	withConfig(t)
	t.Cleanup(func() { sessionMode = "" })

	tests := []struct {
		name    string
		flag    string
		current types.Mode
		rows    int
		want    types.Mode
		wantErr bool
	}{
		{"empty session uses default", "", "", 0, types.ModeClassic, false},
		{"session keeps its mode", "", types.ModeTubi, 3, types.ModeTubi, false},
		{"same mode asked", "tubi", types.ModeTubi, 3, types.ModeTubi, false},
		{"other mode on filled session", "classic", types.ModeTubi, 3, "", true},
		{"other mode on cleared session", "classic", types.ModeTubi, 0, types.ModeClassic, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionMode = tt.flag
			got, err := sessionModeFor(tt.current, tt.rows)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemovalOrder(t *testing.T) {
	indexes, err := removalOrder([]string{"2", "5", "2", " 1", "5"})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 0}, indexes)

	_, err = removalOrder([]string{"1", "due"})
	assert.Error(t, err)
}

func TestExportMode(t *testing.T) {
	mode, err := exportMode([]storage.SavedRecord{{Mode: types.ModeTubi}, {Mode: types.ModeTubi}})
	require.NoError(t, err)
	assert.Equal(t, types.ModeTubi, mode)

	_, err = exportMode([]storage.SavedRecord{{Mode: types.ModeTubi}, {Mode: types.ModeClassic}})
	assert.Error(t, err)
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "modello.csv")
	keys := []string{model.KeyCode, model.KeyTitle}
	records := []types.Record{{model.KeyCode: "PB261", model.KeyTitle: "Pomolo; blocco"}}

	xlsxPath, err := writeExport(out, keys, records, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "modello.xlsx"), xlsxPath)
	assert.FileExists(t, xlsxPath)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Codice Articolo;Nome Articolo\nPB261;\"Pomolo; blocco\"\n", string(data))

	xlsxPath, err = writeExport(filepath.Join(dir, "plain.csv"), keys, nil, false)
	require.NoError(t, err)
	assert.Empty(t, xlsxPath)
}

func TestImportSettings_ReadExportBack(t *testing.T) {
	dir := t.TempDir()
	keys := []string{model.KeyCode, model.KeyTitle}
	records := []types.Record{
		{model.KeyCode: "PB261", model.KeyTitle: "  Glasscom Pomolo "},
		{model.KeyCode: "MA20", model.KeyTitle: "Maniglia; ottone "},
	}

	out := filepath.Join(dir, "modello.csv")
	xlsxPath, err := writeExport(out, keys, records, true)
	require.NoError(t, err)

	for _, path := range []string{out, xlsxPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			table, err := source.LoadPath(path, importSettings)
			require.NoError(t, err)
			assert.Equal(t, records, table.Records())
		})
	}
}
