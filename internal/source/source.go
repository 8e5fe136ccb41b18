// =============================================================================
// Catalog Builder - Table Loader
// =============================================================================
//
// Finds and loads the source catalog table. The catalog export lives on the
// company web server and changes a few times a week, so it is downloaded
// once and kept in a local cache file.
//
// RESOLUTION ORDER:
//   1. source.path, when configured: a local .csv or .xlsx file
//   2. The cache file, when it is younger than source.cache_hours
//   3. A fresh download of source.url (one attempt, bounded by a timeout)
//   4. The stale cache file, when the download failed
//
// A download is only accepted with status 200 and a non-empty body. The
// cache is replaced through a temp file and rename, so a failed download
// never leaves a truncated cache behind.
//
// =============================================================================

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/glasscom/catalog-builder/internal/config"
	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/xlsx"
	"github.com/glasscom/catalog-builder/pkg/utils"
)

// Origin tells where a loaded table came from.
type Origin string

const (
	OriginFile       Origin = "file"
	OriginCache      Origin = "cache"
	OriginRemote     Origin = "remote"
	OriginStaleCache Origin = "stale_cache"
)

// FetchError is returned when the remote export could not be downloaded.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// errEmptyBody is the cause of a FetchError for a 200 with no content.
var errEmptyBody = errors.New("empty response body")

// =============================================================================
// LOADER
// =============================================================================

// Loader resolves and reads the source table.
type Loader struct {
	cfg    config.SourceConfig
	client *http.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewLoader creates a loader. The HTTP client timeout comes from
// cfg.TimeoutSeconds.
func NewLoader(cfg config.SourceConfig, logger zerolog.Logger) *Loader {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the source table and where it came from.
//
// RETURNS:
//   - The table and its origin.
//   - A *csvparser.LoadError when the selected file cannot be read, or a
//     *FetchError when the download failed and there is no cache to fall
//     back to.
func (l *Loader) Load(ctx context.Context) (*csvparser.Table, Origin, error) {
	if l.cfg.Path != "" {
		table, err := LoadPath(l.cfg.Path, l.cfg.CSV)
		return table, OriginFile, err
	}

	maxAge := time.Duration(l.cfg.CacheHours) * time.Hour
	if utils.CacheIsFresh(l.cfg.CacheFile, maxAge, l.now()) {
		l.logger.Debug().Str("cache", l.cfg.CacheFile).Msg("using cached source")
		table, err := LoadPath(l.cfg.CacheFile, l.cfg.CSV)
		return table, OriginCache, err
	}

	fetchErr := l.Fetch(ctx)
	if fetchErr == nil {
		table, err := LoadPath(l.cfg.CacheFile, l.cfg.CSV)
		return table, OriginRemote, err
	}

	if !utils.FileExists(l.cfg.CacheFile) {
		return nil, OriginRemote, fetchErr
	}

	l.logger.Warn().
		Err(fetchErr).
		Str("cache", l.cfg.CacheFile).
		Msg("download failed, using stale cache")

	table, err := LoadPath(l.cfg.CacheFile, l.cfg.CSV)
	return table, OriginStaleCache, err
}

// Fetch downloads the remote export into the cache file.
func (l *Loader) Fetch(ctx context.Context) error {
	if l.cfg.URL == "" {
		return &FetchError{Err: errors.New("no source url configured")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.URL, nil)
	if err != nil {
		return &FetchError{URL: l.cfg.URL, Err: err}
	}
	req.Header.Set("User-Agent", "catalog-builder/1.0")
	req.Header.Set("Accept", "*/*")

	start := l.now()
	resp, err := l.client.Do(req)
	if err != nil {
		return &FetchError{URL: l.cfg.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{URL: l.cfg.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{URL: l.cfg.URL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &FetchError{URL: l.cfg.URL, Err: errEmptyBody}
	}

	written, err := utils.WriteFileAtomic(l.cfg.CacheFile, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to update cache: %w", err)
	}

	l.logger.Info().
		Str("url", l.cfg.URL).
		Str("cache", l.cfg.CacheFile).
		Int64("bytes", written).
		Dur("duration", l.now().Sub(start)).
		Msg("source downloaded")

	return nil
}

// =============================================================================
// LOCAL FILES
// =============================================================================

// LoadPath reads a local table, choosing the reader by extension: .xlsx
// goes through the workbook reader, everything else is parsed as CSV.
// settings.KeepSpaces applies to both.
func LoadPath(path string, settings config.CSVSettings) (*csvparser.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsx.ReadFile(path, xlsx.ReadOptions{KeepSpaces: settings.KeepSpaces})
	}
	return csvparser.ParseFile(path, settings)
}
