// =============================================================================
// Catalog Builder - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings come from three
// layers, later layers winning:
//   1. Built-in defaults (applyDefaults)
//   2. The YAML file passed with --config (a missing file is not an error)
//   3. Environment variables, optionally loaded from a .env file
//
// ENVIRONMENT OVERRIDES:
//   CATALOG_SOURCE_URL   -> source.url
//   CATALOG_SOURCE_PATH  -> source.path
//   CATALOG_DB_PATH      -> storage.db_path
//   CATALOG_OUTPUT_DIR   -> output.dir
//   CATALOG_LOG_LEVEL    -> logging.level
//   CATALOG_MODE         -> build.default_mode
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole application configuration.
type Config struct {
	Source          SourceConfig         `yaml:"source"`
	Columns         ColumnsConfig        `yaml:"columns"`
	Build           BuildConfig          `yaml:"build"`
	Assets          AssetsConfig         `yaml:"assets"`
	Output          OutputConfig         `yaml:"output"`
	Storage         StorageConfig        `yaml:"storage"`
	Logging         LoggingConfig        `yaml:"logging"`
	Metrics         MetricsConfig        `yaml:"metrics"`
	Transformations []TransformationRule `yaml:"transformations"`
}

// SourceConfig describes where the source catalog is read from.
type SourceConfig struct {
	// Path is a local .csv or .xlsx file. When set it is used before any
	// download.
	Path string `yaml:"path"`

	// URL is the remote catalog export.
	// Default: the STAN-DREAM export.
	URL string `yaml:"url"`

	// CacheFile is where the downloaded export is kept.
	// Default: "./cache/stan_cached.csv"
	CacheFile string `yaml:"cache_file"`

	// CacheHours is how long a downloaded export stays fresh.
	// Default: 24
	CacheHours int `yaml:"cache_hours"`

	// TimeoutSeconds bounds the download.
	// Default: 30
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// CSV contains the delimiter and encoding of the source file.
	CSV CSVSettings `yaml:"csv"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the field separator.
	// Common values: ";" (semicolon), "," (comma), "|" (pipe), "\t" (tab)
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file.
	// Common values: "utf-8", "latin-1", "windows-1252"
	// Default: "latin-1"
	Encoding string `yaml:"encoding"`

	// KeepSpaces keeps leading and trailing whitespace in cell values.
	// Default: false (cells are trimmed)
	KeepSpaces bool `yaml:"keep_spaces"`
}

// ColumnsConfig overrides the header candidates used to find each column.
// Keys are role names (sku, parent, title, cat, price, fin, um, mat, dim,
// glass for lookup sources; code, desc, cat, um, price for batch sources).
// Roles that are not listed keep their built-in candidates.
type ColumnsConfig struct {
	Lookup map[string][]string `yaml:"lookup"`
	Batch  map[string][]string `yaml:"batch"`
}

// BuildConfig controls grouping and model construction.
type BuildConfig struct {
	// DefaultMode is used when no --mode flag is given.
	// Valid values: "classic", "morsetti", "tubi", "senza_separatore"
	// Default: "classic"
	DefaultMode string `yaml:"default_mode"`

	// MaxConcurrency bounds the number of parent codes built in parallel.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// IncludeMissing adds a placeholder row for every requested code that
	// matched nothing.
	// Default: true
	IncludeMissing *bool `yaml:"include_missing"`
}

// AssetsConfig defines the directories used in derived asset paths.
type AssetsConfig struct {
	// Default: "singoli-componenti/ALLimages"
	ImageDir string `yaml:"image_dir"`

	// Default: ".jpg"
	ImageExt string `yaml:"image_ext"`

	// Default: "singoli-componenti/ALLpdf"
	PDFDir string `yaml:"pdf_dir"`

	// Default: "finiture"
	FinishDir string `yaml:"finish_dir"`
}

// OutputConfig controls exported files.
type OutputConfig struct {
	// Dir is where exports, error logs and sessions are written.
	// Default: "./output"
	Dir string `yaml:"dir"`

	// FileNameFormat is the export file name.
	// Placeholders: {uuid} {timestamp} {date} {time} {mode}
	// Default: "modello_finale_{mode}_{timestamp}.csv"
	FileNameFormat string `yaml:"file_name_format"`

	// XLSX also writes an .xlsx copy of every export.
	XLSX bool `yaml:"xlsx"`

	// SessionFile holds the working collection between "session" commands.
	// Default: "<dir>/session.json"
	SessionFile string `yaml:"session_file"`
}

// StorageConfig configures the saved-record database.
type StorageConfig struct {
	// Default: "./data/catalog.db"
	DBPath string `yaml:"db_path"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Valid values: "console", "json"
	// Default: "console"
	Format string `yaml:"format"`

	// File additionally receives JSON log lines when set.
	File string `yaml:"file"`
}

// MetricsConfig configures the Prometheus text file export.
type MetricsConfig struct {
	// Textfile is written after every command when set.
	Textfile string `yaml:"textfile"`
}

// TransformationRule defines transformations applied to one export field.
type TransformationRule struct {
	// Field is the export schema key (e.g. "Prodotto", "Sottotitolo").
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of:
	//   - "set"            : Replace the value with Value
	//   - "prepend_string" : Add Value to the beginning
	//   - "append_string"  : Add Value to the end
	//   - "uppercase"      : Convert to uppercase
	//   - "lowercase"      : Convert to lowercase
	//   - "trim"           : Remove leading and trailing whitespace
	//   - "replace"        : Replace Find with Value
	//   - "regex_replace"  : Replace matches of the Find pattern with Value
	//   - "lookup"         : Replace using LookupTable
	//   - "subcategory"    : Take the part of Categoria after ">", "|" or "/"
	Type string `yaml:"type"`

	Value string `yaml:"value"`

	Find string `yaml:"find,omitempty"`

	// OnlyIfEmpty skips the action when the field already has a value.
	OnlyIfEmpty bool `yaml:"only_if_empty,omitempty"`

	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration file, applies defaults and environment
// overrides, and validates the result.
//
// PARAMETERS:
//   - configPath: The path to the YAML file. A missing file yields defaults.
//
// RETURNS:
//   - The loaded configuration.
//   - An error if the file cannot be parsed or the result is invalid.
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with only built-in defaults.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Source.URL == "" {
		cfg.Source.URL = "https://www.glasscom.it/Catalogo2026/STAN-DREAM.CSV"
	}
	if cfg.Source.CacheFile == "" {
		cfg.Source.CacheFile = "./cache/stan_cached.csv"
	}
	if cfg.Source.CacheHours == 0 {
		cfg.Source.CacheHours = 24
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 30
	}
	if cfg.Source.CSV.Delimiter == "" {
		cfg.Source.CSV.Delimiter = ";"
	}
	if cfg.Source.CSV.Encoding == "" {
		cfg.Source.CSV.Encoding = "latin-1"
	}

	if cfg.Build.DefaultMode == "" {
		cfg.Build.DefaultMode = "classic"
	}
	if cfg.Build.MaxConcurrency == 0 {
		cfg.Build.MaxConcurrency = 4
	}
	if cfg.Build.IncludeMissing == nil {
		includeMissing := true
		cfg.Build.IncludeMissing = &includeMissing
	}

	if cfg.Assets.ImageDir == "" {
		cfg.Assets.ImageDir = "singoli-componenti/ALLimages"
	}
	if cfg.Assets.ImageExt == "" {
		cfg.Assets.ImageExt = ".jpg"
	}
	if cfg.Assets.PDFDir == "" {
		cfg.Assets.PDFDir = "singoli-componenti/ALLpdf"
	}
	if cfg.Assets.FinishDir == "" {
		cfg.Assets.FinishDir = "finiture"
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Output.FileNameFormat == "" {
		cfg.Output.FileNameFormat = "modello_finale_{mode}_{timestamp}.csv"
	}
	if cfg.Output.SessionFile == "" {
		cfg.Output.SessionFile = strings.TrimRight(cfg.Output.Dir, "/") + "/session.json"
	}

	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = "./data/catalog.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// applyEnvOverrides copies CATALOG_* environment variables over file values.
func applyEnvOverrides(cfg *Config) {
	cfg.Source.URL = getEnv("CATALOG_SOURCE_URL", cfg.Source.URL)
	cfg.Source.Path = getEnv("CATALOG_SOURCE_PATH", cfg.Source.Path)
	cfg.Source.CacheHours = getEnvInt("CATALOG_CACHE_HOURS", cfg.Source.CacheHours)
	cfg.Storage.DBPath = getEnv("CATALOG_DB_PATH", cfg.Storage.DBPath)
	cfg.Output.Dir = getEnv("CATALOG_OUTPUT_DIR", cfg.Output.Dir)
	cfg.Logging.Level = getEnv("CATALOG_LOG_LEVEL", cfg.Logging.Level)
	cfg.Build.DefaultMode = getEnv("CATALOG_MODE", cfg.Build.DefaultMode)
}

// validate checks values that would otherwise fail deep inside a command.
func validate(cfg *Config) error {
	switch strings.ToLower(strings.ReplaceAll(cfg.Build.DefaultMode, "-", "_")) {
	case "classic", "morsetti", "tubi", "senza_separatore":
	default:
		return fmt.Errorf("build.default_mode %q is not a known mode", cfg.Build.DefaultMode)
	}

	if len([]rune(cfg.Source.CSV.Delimiter)) != 1 && !isNamedDelimiter(cfg.Source.CSV.Delimiter) {
		return fmt.Errorf("source.csv.delimiter %q must be a single character", cfg.Source.CSV.Delimiter)
	}

	switch strings.ToLower(cfg.Source.CSV.Encoding) {
	case "utf-8", "utf8", "latin-1", "latin1", "iso-8859-1", "iso8859-1",
		"iso-8859-15", "latin-9", "windows-1252", "cp1252":
	default:
		return fmt.Errorf("source.csv.encoding %q is not supported", cfg.Source.CSV.Encoding)
	}

	if cfg.Source.CacheHours < 0 {
		return fmt.Errorf("source.cache_hours must not be negative")
	}

	if cfg.Build.MaxConcurrency < 1 {
		return fmt.Errorf("build.max_concurrency must be at least 1")
	}

	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", cfg.Logging.Format)
	}

	return nil
}

// IncludeMissingRows reports the effective include_missing setting.
func (c *Config) IncludeMissingRows() bool {
	return c.Build.IncludeMissing == nil || *c.Build.IncludeMissing
}

func isNamedDelimiter(d string) bool {
	switch d {
	case "\\t", "tab", "TAB", "pipe", "PIPE", "semicolon", "comma":
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
