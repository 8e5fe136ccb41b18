// =============================================================================
// Catalog Builder - Fetch Command
// =============================================================================
//
// This file defines the 'fetch' command, which downloads the remote export
// into the cache file regardless of the cache age, then parses it once so a
// broken download is reported right away.
//
// COMMAND USAGE:
//   catalog fetch
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glasscom/catalog-builder/internal/source"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh the cached copy of the remote source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := source.NewLoader(cfg.Source, logger).Fetch(cmd.Context()); err != nil {
			return err
		}

		table, err := source.LoadPath(cfg.Source.CacheFile, cfg.Source.CSV)
		if err != nil {
			return fmt.Errorf("downloaded file is not usable: %w", err)
		}

		fmt.Printf("Cached %s\n", cfg.Source.CacheFile)
		fmt.Printf("Rows:    %d\n", len(table.Rows))
		fmt.Printf("Columns: %d\n", len(table.Headers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
