package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasscom/catalog-builder/internal/config"
)

func TestBuild_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    zerolog.Level
	}{
		{"default", "", false, zerolog.InfoLevel},
		{"warn", "warn", false, zerolog.WarnLevel},
		{"garbage", "loud", false, zerolog.InfoLevel},
		{"verbose wins", "error", true, zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, closer, err := build(&bytes.Buffer{}, config.LoggingConfig{Level: tt.level, Format: "json"}, tt.verbose)
			require.NoError(t, err)
			defer closer()
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestBuild_JSONAndFile(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "catalog.log")

	logger, closer, err := build(&buf, config.LoggingConfig{Level: "info", Format: "json", File: logFile}, false)
	require.NoError(t, err)

	logger.Info().Str("code", "PB261").Msg("group built")
	require.NoError(t, closer())

	assert.Contains(t, buf.String(), `"code":"PB261"`)

	written, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(written), "group built")
}
