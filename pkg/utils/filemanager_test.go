package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 30, 22, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		ext    string
		want   string
	}{
		{"default format", "modello_finale_{mode}_{timestamp}.csv", ".csv", "modello_finale_classic_20261019_143022.csv"},
		{"date and time", "{date}-{time}", ".csv", "20261019-143022.csv"},
		{"extension swapped", "modello_{mode}.csv", ".xlsx", "modello_classic.xlsx"},
		{"no extension wanted", "modello_{mode}", "", "modello_classic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateOutputFileName(tt.format, tt.ext, map[string]string{"mode": "classic"}, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateOutputFileName_UUID(t *testing.T) {
	got := GenerateOutputFileName("export_{uuid}", ".csv", nil)

	assert.Regexp(t, regexp.MustCompile(`^export_[0-9a-f-]{36}\.csv$`), got)
}

func TestWithExt(t *testing.T) {
	assert.Equal(t, "out/a.xlsx", WithExt("out/a.csv", ".xlsx"))
	assert.Equal(t, "out/a.xlsx", WithExt("out/a", ".xlsx"))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "stan.csv")

	n, err := WriteFileAtomic(path, strings.NewReader("sku;parent\n"))
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	_, err = WriteFileAtomic(path, strings.NewReader("replaced\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestCacheIsFresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	modTime := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, modTime, modTime))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	now := time.Now()
	assert.True(t, CacheIsFresh(path, 24*time.Hour, now))
	assert.False(t, CacheIsFresh(path, time.Hour, now))
	assert.False(t, CacheIsFresh(path, 0, now))
	assert.False(t, CacheIsFresh(empty, 24*time.Hour, now))
	assert.False(t, CacheIsFresh(filepath.Join(dir, "missing.csv"), 24*time.Hour, now))
}

func TestReadCodes(t *testing.T) {
	codes, err := ReadCodes(strings.NewReader("\ufeffPB261\n\n  # comment\n TUCO \r\nMA12DX\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"PB261", "TUCO", "MA12DX"}, codes)
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

	path, err := WriteSummaryLog(BuildSummary{
		StartTime:  start,
		EndTime:    start.Add(3 * time.Second),
		Mode:       "classic",
		Source:     "stan.csv",
		Requested:  3,
		Built:      2,
		NotFound:   []string{"NOPE"},
		OutputFile: "output/modello.csv",
	}, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "build_summary_20261019_140003.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Duration:    3s")
	assert.Contains(t, content, "Not Found:   1")
	assert.Contains(t, content, "  NOPE\n")
	assert.Contains(t, content, "  output/modello.csv\n")
}
