// =============================================================================
// Catalog Builder - Build Command
// =============================================================================
//
// This file defines the 'build' command, which turns a list of parent codes
// into one model row each and exports them.
//
// COMMAND USAGE:
//   catalog build [codes...] [flags]
//
// FLAGS:
//   --codes-file       : File with one parent code per line (# comments allowed)
//   --mode             : classic, morsetti, tubi or senza_separatore
//   --source           : Local .csv or .xlsx file used instead of the download
//   --out              : Export path (default: output.dir + output.file_name_format)
//   --xlsx             : Also write an .xlsx copy next to the export
//   --save             : Store the built rows in the saved-record database
//   --include-missing  : Add placeholder rows for codes that matched nothing
//
// BUILD PIPELINE:
//   1. Collect the requested codes
//   2. Load the source table (local file, cache or download)
//   3. Build every code concurrently, keeping the request order
//   4. Write the CSV export (and the XLSX copy)
//   5. Validate the rows and write the error log
//   6. Save the rows when asked
//   7. Write the build summary
//
// =============================================================================

package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/storage"
	"github.com/glasscom/catalog-builder/internal/types"
	"github.com/glasscom/catalog-builder/internal/validation"
	"github.com/glasscom/catalog-builder/internal/xlsx"
	"github.com/glasscom/catalog-builder/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	buildCodesFile      string
	buildMode           string
	buildSource         string
	buildOut            string
	buildXLSX           bool
	buildSave           bool
	buildIncludeMissing bool
)

// =============================================================================
// BUILD COMMAND DEFINITION
// =============================================================================

var buildCmd = &cobra.Command{
	Use:   "build [codes...]",
	Short: "Build model rows for a list of parent codes",
	Long: `The build command scans the source for every requested parent code, groups
the matching variant rows in natural code order and writes one model row per
code to a semicolon separated export.

Codes that match nothing never stop the build. They are listed in the build
summary and, unless --include-missing=false, exported as placeholder rows that
carry only the code.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildCodesFile, "codes-file", "", "File with one parent code per line")
	buildCmd.Flags().StringVar(&buildMode, "mode", "", "Build mode (default from build.default_mode)")
	buildCmd.Flags().StringVar(&buildSource, "source", "", "Local .csv or .xlsx source file")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "Export file path")
	buildCmd.Flags().BoolVar(&buildXLSX, "xlsx", false, "Also write an .xlsx copy of the export")
	buildCmd.Flags().BoolVar(&buildSave, "save", false, "Save the built rows to the database")
	buildCmd.Flags().BoolVar(&buildIncludeMissing, "include-missing", true, "Export placeholder rows for missing codes")
}

// =============================================================================
// MAIN BUILD FUNCTION
// =============================================================================

func runBuild(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	ctx := cmd.Context()

	// =========================================================================
	// STEP 1: REQUESTED CODES
	// =========================================================================

	codes := append([]string(nil), args...)
	if buildCodesFile != "" {
		fromFile, err := utils.ReadCodesFile(buildCodesFile)
		if err != nil {
			return err
		}
		codes = append(codes, fromFile...)
	}
	if len(codes) == 0 {
		return fmt.Errorf("no codes given: pass codes as arguments or use --codes-file")
	}

	mode, err := resolveMode(buildMode)
	if err != nil {
		return err
	}

	includeMissing := cfg.IncludeMissingRows()
	if cmd.Flags().Changed("include-missing") {
		includeMissing = buildIncludeMissing
	}

	// =========================================================================
	// STEP 2: SOURCE AND SESSION
	// =========================================================================

	session, err := openSession(ctx, buildSource, includeMissing)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: BUILD
	// =========================================================================

	result, err := session.BuildBatch(ctx, codes, mode)
	if err != nil {
		return fmt.Errorf("build interrupted: %w", err)
	}

	rows := session.BatchRows(result)
	records := session.Records(rows)
	keys := model.ExportKeys(mode, records)

	// =========================================================================
	// STEP 4: EXPORT
	// =========================================================================

	outPath := buildOut
	if outPath == "" {
		outPath = defaultOutPath(mode)
	}

	xlsxPath, err := writeExport(outPath, keys, records, buildXLSX || cfg.Output.XLSX)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 5: VALIDATION
	// =========================================================================

	items := make([]validation.Item, len(result.Items))
	for i, item := range result.Items {
		items[i] = validation.Item{Row: item.Row, Dropped: item.Info.Dropped}
	}
	report := validation.NewValidator(validation.Options{}).Validate(items)

	errorLog, err := validation.WriteErrorLog(report, cfg.Output.Dir, time.Now())
	if err != nil {
		logger.Warn().Err(err).Msg("could not write error log")
	}

	// =========================================================================
	// STEP 6: SAVE
	// =========================================================================

	if buildSave {
		db, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		saved, err := db.Save(ctx, rows)
		if err != nil {
			return err
		}
		fmt.Printf("Saved:           %d new, %d updated, %d skipped\n", saved.Inserted, saved.Updated, saved.Skipped)
	}

	// =========================================================================
	// STEP 7: SUMMARY
	// =========================================================================

	summary := utils.BuildSummary{
		StartTime:  startTime,
		EndTime:    time.Now(),
		Mode:       mode.String(),
		Source:     buildSource,
		Requested:  len(result.Items),
		Built:      len(result.Items) - len(result.NotFound),
		NotFound:   result.NotFound,
		Issues:     len(report.Issues),
		OutputFile: outPath,
		XLSXFile:   xlsxPath,
		ErrorLog:   errorLog,
	}
	if summary.Source == "" {
		summary.Source = cfg.Source.URL
		if cfg.Source.Path != "" {
			summary.Source = cfg.Source.Path
		}
	}
	summaryPath, err := utils.WriteSummaryLog(summary, cfg.Output.Dir)
	if err != nil {
		logger.Warn().Err(err).Msg("could not write build summary")
	}

	fmt.Println("=== Build Complete ===")
	fmt.Printf("Mode:            %s\n", mode)
	fmt.Printf("Requested:       %d\n", summary.Requested)
	fmt.Printf("Built:           %d\n", summary.Built)
	fmt.Printf("Not found:       %d\n", len(result.NotFound))
	for _, code := range result.NotFound {
		fmt.Printf("  ✗ %s\n", code)
	}
	fmt.Printf("Issues:          %d errors, %d warnings\n", report.ErrorCount, report.WarningCount)
	fmt.Printf("Export:          %s\n", outPath)
	if xlsxPath != "" {
		fmt.Printf("XLSX:            %s\n", xlsxPath)
	}
	if errorLog != "" {
		fmt.Printf("Error log:       %s\n", errorLog)
	}
	if summaryPath != "" {
		fmt.Printf("Summary:         %s\n", summaryPath)
	}
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	return nil
}

// writeExport writes the CSV export atomically and, when withXLSX is set, an
// .xlsx copy next to it.
//
// RETURNS:
//   - The path of the .xlsx copy, or "".
//   - An error if either file cannot be written.
func writeExport(outPath string, keys []string, records []types.Record, withXLSX bool) (string, error) {
	var buf bytes.Buffer
	if err := csvparser.WriteRecords(&buf, keys, records); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if _, err := utils.WriteFileAtomic(outPath, &buf); err != nil {
		return "", err
	}

	if !withXLSX {
		return "", nil
	}
	xlsxPath := utils.WithExt(outPath, ".xlsx")
	if err := xlsx.WriteFile(xlsxPath, keys, records); err != nil {
		return "", err
	}
	return xlsxPath, nil
}

// defaultOutPath names an export in the output directory.
func defaultOutPath(mode types.Mode) string {
	name := utils.GenerateOutputFileName(cfg.Output.FileNameFormat, ".csv", map[string]string{"mode": mode.String()})
	return filepath.Join(cfg.Output.Dir, name)
}
