// =============================================================================
// Catalog Builder - Logging
// =============================================================================
//
// Builds the zerolog logger used by every command. Console output is human
// readable; an optional log file always receives JSON lines.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/glasscom/catalog-builder/internal/config"
)

// New creates the application logger.
//
// PARAMETERS:
//   - cfg: The logging section of the configuration.
//   - verbose: Forces debug level when true.
//
// RETURNS:
//   - The logger.
//   - A close function for the log file (a no-op when there is none).
//   - An error if the log file cannot be opened.
func New(cfg config.LoggingConfig, verbose bool) (zerolog.Logger, func() error, error) {
	return build(os.Stderr, cfg, verbose)
}

func build(stderr io.Writer, cfg config.LoggingConfig, verbose bool) (zerolog.Logger, func() error, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	var output io.Writer = stderr
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}
	}

	closer := func() error { return nil }
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to open log file: %w", err)
		}
		output = zerolog.MultiLevelWriter(output, file)
		closer = file.Close
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", "catalog").Logger()
	return logger, closer, nil
}
