// =============================================================================
// Catalog Builder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it, and it prepares what they all share.
//
// COBRA CLI STRUCTURE:
//   rootCmd (catalog)
//   ├── buildCmd     (catalog build)
//   ├── sessionCmd   (catalog session add|remove|clear|list|export)
//   ├── fetchCmd     (catalog fetch)
//   ├── templateCmd  (catalog template)
//   ├── savedCmd     (catalog saved list|export|delete)
//   └── versionCmd   (catalog version)
//
// SHARED STATE:
//   PersistentPreRunE loads the configuration, builds the logger and creates
//   the metrics registry. PersistentPostRunE writes the metrics text file and
//   closes the log file.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/glasscom/catalog-builder/internal/catalog"
	"github.com/glasscom/catalog-builder/internal/columns"
	"github.com/glasscom/catalog-builder/internal/config"
	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/finish"
	"github.com/glasscom/catalog-builder/internal/logging"
	"github.com/glasscom/catalog-builder/internal/metrics"
	"github.com/glasscom/catalog-builder/internal/source"
	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

var (
	cfg      *config.Config
	logger   = zerolog.Nop()
	met      *metrics.Metrics
	closeLog = func() error { return nil }
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog Builder - Turn the article export into product model rows",
	Long: `Catalog Builder reads the article export of the catalog (CSV or XLSX, local
or downloaded) and groups variant articles under their parent code. Each group
becomes one product model row with up to five variant slots, or as many as the
widest group for the morsetti and tubi modes.

Modes:
  classic           PB261 CR -> parent PB261, finish CR
  morsetti          MB2/17.52 -> parent MB2, variant 17.52
  tubi              TUCO-01.304 -> parent TUCO, variant 01.304
  senza_separatore  CERN40XY belongs to CERN40 by code prefix

Example Usage:
  catalog build PB261 MA20 --mode classic --xlsx
  catalog build --codes-file codes.txt --mode tubi --save
  catalog session add PB261
  catalog saved list --category maniglie --sort code`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		l, closer, err := logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger = l
		closeLog = closer
		met = metrics.New()

		logger.Debug().Str("config", cfgFile).Str("command", cmd.Name()).Msg("configuration loaded")
		return nil
	},

	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer closeLog()
		if met == nil {
			return nil
		}
		return met.WriteTextfile(cfg.Metrics.Textfile)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main(). An interrupt
// cancels the command context, which stops a running batch build.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// resolveMode returns the --mode flag value, or the configured default.
func resolveMode(flag string) (types.Mode, error) {
	if strings.TrimSpace(flag) == "" {
		flag = cfg.Build.DefaultMode
	}
	return types.ParseMode(flag)
}

// loadTable loads the source table. path replaces the configured source path
// when set.
func loadTable(ctx context.Context, path string) (*csvparser.Table, error) {
	srcCfg := cfg.Source
	if path != "" {
		srcCfg.Path = path
	}

	table, origin, err := source.NewLoader(srcCfg, logger).Load(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("source", table.SourceFile).
		Str("origin", string(origin)).
		Int("rows", len(table.Rows)).
		Msg("source loaded")
	return table, nil
}

// newTransformer compiles the configured transformations.
func newTransformer() (*catalog.Transformer, error) {
	if len(cfg.Transformations) == 0 {
		return nil, nil
	}
	t, err := catalog.NewTransformer(cfg.Transformations)
	if err != nil {
		return nil, fmt.Errorf("invalid transformations: %w", err)
	}
	return t, nil
}

// openSession loads the source and prepares a catalog session configured
// from the loaded configuration.
func openSession(ctx context.Context, path string, includeMissing bool) (*catalog.Session, error) {
	table, err := loadTable(ctx, path)
	if err != nil {
		return nil, err
	}

	transformer, err := newTransformer()
	if err != nil {
		return nil, err
	}

	assets := finish.Assets{
		ImageDir:  cfg.Assets.ImageDir,
		ImageExt:  cfg.Assets.ImageExt,
		PDFDir:    cfg.Assets.PDFDir,
		FinishDir: cfg.Assets.FinishDir,
	}

	return catalog.NewSession(table, catalog.Options{
		Candidates:     columns.WithOverrides(columns.DefaultCandidates(), cfg.Columns.Lookup),
		BatchRules:     columns.BatchRulesWithOverrides(cfg.Columns.Batch),
		Assets:         &assets,
		MaxConcurrency: cfg.Build.MaxConcurrency,
		IncludeMissing: includeMissing,
		Transformer:    transformer,
		Logger:         logger,
		Metrics:        met,
	}), nil
}
