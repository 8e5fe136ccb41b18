// =============================================================================
// Catalog Builder - Session Commands
// =============================================================================
//
// This file defines the 'session' command group: the lookup-by-code workflow.
// Rows are added one code at a time to an output collection that lives in a
// JSON file (output.session_file) between runs, then exported together.
//
// COMMAND USAGE:
//   catalog session add <codes...> [--mode] [--source]
//   catalog session remove <index...>
//   catalog session clear
//   catalog session list
//   catalog session export [--out] [--xlsx]
//
// A session holds rows of one mode. Adding codes in another mode requires a
// clear first, because the export schema depends on the mode.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glasscom/catalog-builder/internal/catalog"
	"github.com/glasscom/catalog-builder/internal/collection"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/storage"
	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	sessionMode   string
	sessionSource string
	sessionOut    string
	sessionXLSX   bool
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Build an export one code at a time",
}

var sessionAddCmd = &cobra.Command{
	Use:   "add <codes...>",
	Short: "Look up codes and add their rows to the session",
	Long: `Looks up every code with the parser of the session mode. A code may be a
parent code or the code of any of its variants. Codes that match nothing or
whose row is already in the session are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSessionAdd,
}

var sessionRemoveCmd = &cobra.Command{
	Use:   "remove <index...>",
	Short: "Remove rows by their position in 'session list'",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSessionRemove,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every row from the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := storage.SaveSession(cfg.Output.SessionFile, "", nil); err != nil {
			return err
		}
		fmt.Println("Session cleared.")
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rows in the session",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the session rows",
	Args:  cobra.NoArgs,
	RunE:  runSessionExport,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionAddCmd, sessionRemoveCmd, sessionClearCmd, sessionListCmd, sessionExportCmd)

	sessionAddCmd.Flags().StringVar(&sessionMode, "mode", "", "Lookup mode (default: the session mode, then build.default_mode)")
	sessionAddCmd.Flags().StringVar(&sessionSource, "source", "", "Local .csv or .xlsx source file")

	sessionExportCmd.Flags().StringVar(&sessionOut, "out", "", "Export file path")
	sessionExportCmd.Flags().BoolVar(&sessionXLSX, "xlsx", false, "Also write an .xlsx copy of the export")
}

// =============================================================================
// COMMAND FUNCTIONS
// =============================================================================

func runSessionAdd(cmd *cobra.Command, args []string) error {
	current, rows, err := storage.LoadSession(cfg.Output.SessionFile)
	if err != nil {
		return err
	}

	mode, err := sessionModeFor(current, len(rows))
	if err != nil {
		return err
	}

	session, err := openSession(cmd.Context(), sessionSource, false)
	if err != nil {
		return err
	}
	if err := session.CheckLookupColumns(mode); err != nil {
		return err
	}
	session.Restore(rows)

	added := 0
	for _, code := range args {
		row, info, err := session.AddByCode(code, mode)
		if err != nil {
			fmt.Printf("  ✗ %v\n", err)
			continue
		}
		added++
		line := fmt.Sprintf("  ✓ %s (%d variants)", row.Code, len(row.Slots))
		if info.Dropped > 0 {
			line += fmt.Sprintf(", %d dropped", info.Dropped)
		}
		fmt.Println(line)
	}

	if err := storage.SaveSession(cfg.Output.SessionFile, mode, session.Collection().Rows()); err != nil {
		return err
	}
	fmt.Printf("Added %d of %d code(s); the session holds %d row(s).\n", added, len(args), session.Collection().Len())
	return nil
}

// sessionModeFor picks the mode for new rows. A non-empty session keeps its
// mode; asking for another one is an error.
func sessionModeFor(current types.Mode, rowCount int) (types.Mode, error) {
	if sessionMode == "" && current != "" {
		return current, nil
	}
	mode, err := resolveMode(sessionMode)
	if err != nil {
		return "", err
	}
	if rowCount > 0 && current != "" && mode != current {
		return "", fmt.Errorf("the session holds %s rows; run 'catalog session clear' before adding %s rows", current, mode)
	}
	return mode, nil
}

func runSessionRemove(cmd *cobra.Command, args []string) error {
	mode, rows, err := storage.LoadSession(cfg.Output.SessionFile)
	if err != nil {
		return err
	}
	c := restoreCollection(rows)

	indexes, err := removalOrder(args)
	if err != nil {
		return err
	}

	for _, i := range indexes {
		removed, err := c.Remove(i)
		if errors.Is(err, collection.ErrIndex) {
			fmt.Printf("  ✗ no row at %d\n", i+1)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("  - %s\n", removed.Code)
	}

	return storage.SaveSession(cfg.Output.SessionFile, mode, c.Rows())
}

// removalOrder turns 1-based positions into 0-based indexes, highest first
// so earlier removals do not shift later ones. A position given twice is
// removed once.
func removalOrder(args []string) ([]int, error) {
	indexes := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", arg)
		}
		indexes = append(indexes, n-1)
	}
	slices.Sort(indexes)
	indexes = slices.Compact(indexes)
	slices.Reverse(indexes)
	return indexes, nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	mode, rows, err := storage.LoadSession(cfg.Output.SessionFile)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("The session is empty.")
		return nil
	}

	fmt.Printf("Mode: %s\n", mode)
	for i, row := range rows {
		if row.NotFound {
			fmt.Printf("%3d  %-20s  (not found)\n", i+1, row.Code)
			continue
		}
		fmt.Printf("%3d  %-20s  %-40s  %d variant(s)\n", i+1, row.Code, row.Title, len(row.Slots))
	}
	return nil
}

func runSessionExport(cmd *cobra.Command, args []string) error {
	mode, rows, err := storage.LoadSession(cfg.Output.SessionFile)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("the session is empty")
	}

	transformer, err := newTransformer()
	if err != nil {
		return err
	}

	records := catalog.Records(rows, transformer)
	keys := model.ExportKeys(mode, records)

	outPath := sessionOut
	if outPath == "" {
		outPath = defaultOutPath(mode)
	}
	xlsxPath, err := writeExport(outPath, keys, records, sessionXLSX || cfg.Output.XLSX)
	if err != nil {
		return err
	}

	logger.Info().Str("file", outPath).Int("rows", len(rows)).Str("mode", mode.String()).Msg("session exported")
	fmt.Printf("Export: %s\n", outPath)
	if xlsxPath != "" {
		fmt.Printf("XLSX:   %s\n", xlsxPath)
	}
	return nil
}

// restoreCollection rebuilds the output collection from saved rows.
func restoreCollection(rows []model.Row) *collection.Collection {
	c := collection.New()
	for _, row := range rows {
		if err := c.Add(row); err != nil {
			logger.Warn().Err(err).Str("code", row.Code).Msg("skipped saved row")
		}
	}
	return c
}
