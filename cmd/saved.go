// =============================================================================
// Catalog Builder - Saved Record Commands
// =============================================================================
//
// This file defines the 'saved' command group over the saved-record database
// (storage.db_path). Rows get there through 'catalog build --save'.
//
// COMMAND USAGE:
//   catalog saved list       [filters] [--sort] [--desc]
//   catalog saved export     [filters] [--sort] [--desc] [--out] [--xlsx]
//   catalog saved delete     <id...>
//   catalog saved categories
//   catalog saved history    <code>
//   catalog saved import     <file> --mode
//
// FILTERS:
//   --category  : Category (the part of Categoria before ">", "|" or "/")
//   --sub       : Subcategory (the part after it)
//   --query     : Substring of the code or the title
//   --mode      : Build mode
//
// =============================================================================

package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glasscom/catalog-builder/internal/catalog"
	"github.com/glasscom/catalog-builder/internal/config"
	"github.com/glasscom/catalog-builder/internal/grouping"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/source"
	"github.com/glasscom/catalog-builder/internal/storage"
	"github.com/glasscom/catalog-builder/internal/types"
	"github.com/glasscom/catalog-builder/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	savedCategory string
	savedSub      string
	savedQuery    string
	savedMode     string
	savedSort     string
	savedDesc     bool
	savedOut      string
	savedXLSX     bool
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Browse, export and delete saved model rows",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved rows",
	Args:  cobra.NoArgs,
	RunE:  runSavedList,
}

var savedExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved rows",
	Long: `Exports the saved rows that match the filters. All exported rows must share
one mode; use --mode when the database holds several. Dynamic schemas are
sized to the widest exported row.`,
	Args: cobra.NoArgs,
	RunE: runSavedExport,
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete <id...>",
	Short: "Delete saved rows by id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSavedDelete,
}

var savedCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List saved categories and their subcategories",
	Args:  cobra.NoArgs,
	RunE:  runSavedCategories,
}

var savedHistoryCmd = &cobra.Command{
	Use:   "history <code>",
	Short: "Show the replaced versions of a saved row",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavedHistory,
}

var savedImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Save the rows of an exported model file",
	Long: `Reads a model file written by build or export (.csv or .xlsx) and saves
every row under its Codice Articolo. Rows already saved are replaced and the
old version kept in the history.`,
	Args: cobra.ExactArgs(1),
	RunE: runSavedImport,
}

func init() {
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(savedListCmd, savedExportCmd, savedDeleteCmd, savedCategoriesCmd, savedHistoryCmd, savedImportCmd)

	savedImportCmd.Flags().StringVar(&savedMode, "mode", "", "Mode the file was built in (default from build.default_mode)")

	for _, c := range []*cobra.Command{savedListCmd, savedExportCmd} {
		c.Flags().StringVar(&savedCategory, "category", "", "Filter by category")
		c.Flags().StringVar(&savedSub, "sub", "", "Filter by subcategory")
		c.Flags().StringVar(&savedQuery, "query", "", "Filter by code or title substring")
		c.Flags().StringVar(&savedMode, "mode", "", "Filter by build mode")
		c.Flags().StringVar(&savedSort, "sort", "id", "Sort by id, code, category, title, finishes or updated")
		c.Flags().BoolVar(&savedDesc, "desc", false, "Sort in descending order")
	}

	savedExportCmd.Flags().StringVar(&savedOut, "out", "", "Export file path")
	savedExportCmd.Flags().BoolVar(&savedXLSX, "xlsx", false, "Also write an .xlsx copy of the export")
}

// =============================================================================
// COMMAND FUNCTIONS
// =============================================================================

// openDB opens the saved-record database.
func openDB() (*storage.DB, error) {
	db, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// savedListOptions turns the filter flags into list options.
func savedListOptions() (storage.ListOptions, error) {
	sortField, err := storage.ParseSortField(savedSort)
	if err != nil {
		return storage.ListOptions{}, err
	}

	var mode types.Mode
	if savedMode != "" {
		if mode, err = types.ParseMode(savedMode); err != nil {
			return storage.ListOptions{}, err
		}
	}

	return storage.ListOptions{
		Category:    savedCategory,
		Subcategory: savedSub,
		Query:       savedQuery,
		Mode:        mode,
		Sort:        sortField,
		Desc:        savedDesc,
	}, nil
}

func runSavedList(cmd *cobra.Command, args []string) error {
	opts, err := savedListOptions()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.List(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No saved rows match.")
		return nil
	}

	fmt.Printf("%5s  %-16s  %-16s  %-28s  %-40s  %8s  %s\n", "ID", "CODE", "MODE", "CATEGORY", "TITLE", "FINISHES", "NOTE")
	for _, r := range records {
		category := r.Category
		if r.Subcategory != "" {
			category += " > " + r.Subcategory
		}
		note := ""
		if model.HasZeroPrice(r.Record) {
			note = "zero price"
		}
		fmt.Printf("%5d  %-16s  %-16s  %-28s  %-40s  %8d  %s\n", r.ID, r.ParentSKU, r.Mode, category, r.Title, r.Finishes, note)
	}
	fmt.Printf("%d row(s)\n", len(records))
	return nil
}

func runSavedExport(cmd *cobra.Command, args []string) error {
	opts, err := savedListOptions()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.List(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no saved rows match")
	}

	mode, err := exportMode(records)
	if err != nil {
		return err
	}

	rows := make([]model.Row, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}

	transformer, err := newTransformer()
	if err != nil {
		return err
	}
	flat := catalog.Records(rows, transformer)
	keys := model.ExportKeys(mode, flat)

	outPath := savedOut
	if outPath == "" {
		outPath = defaultOutPath(mode)
	}
	xlsxPath, err := writeExport(outPath, keys, flat, savedXLSX || cfg.Output.XLSX)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d row(s) to %s\n", len(rows), outPath)
	if xlsxPath != "" {
		fmt.Printf("XLSX: %s\n", xlsxPath)
	}
	return nil
}

// importSettings reads model files written by WriteRecords.
var importSettings = config.CSVSettings{Delimiter: ";", Encoding: "utf-8", KeepSpaces: true}

// exportMode is the one mode shared by every record.
func exportMode(records []storage.SavedRecord) (types.Mode, error) {
	mode := records[0].Mode
	for _, r := range records[1:] {
		if r.Mode != mode {
			return "", fmt.Errorf("saved rows mix %s and %s; narrow the export with --mode", mode, r.Mode)
		}
	}
	return mode, nil
}

func runSavedDelete(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Delete(cmd.Context(), ids)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d of %d row(s).\n", n, len(ids))
	return nil
}

func runSavedCategories(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cats, err := db.Categories(cmd.Context())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	slices.SortFunc(names, grouping.NaturalCompare)

	for _, name := range names {
		fmt.Println(name)
		for _, sub := range cats[name] {
			fmt.Printf("  %s\n", sub)
		}
	}
	return nil
}

func runSavedHistory(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	current, err := db.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	history, err := db.History(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  current  %s  %s\n", current.ParentSKU, current.UpdatedAt.Local().Format("2006-01-02 15:04"), current.Title)
	for _, h := range history {
		fmt.Printf("%s  replaced %s  %s\n", h.ParentSKU, h.ArchivedAt.Local().Format("2006-01-02 15:04"), h.Record[model.KeyTitle])
	}
	return nil
}

func runSavedImport(cmd *cobra.Command, args []string) error {
	mode, err := resolveMode(savedMode)
	if err != nil {
		return err
	}

	// exports are always UTF-8 with ";" separators, whatever the source uses,
	// and their values are saved exactly as written
	table, err := source.LoadPath(args[0], importSettings)
	if err != nil {
		return err
	}
	if !table.HasHeader(model.KeyCode) {
		return fmt.Errorf("%s is not a model file: no %q column", args[0], model.KeyCode)
	}

	records := table.Records()
	rows := make([]model.Row, len(records))
	for i, record := range records {
		rows[i] = model.FromRecord(record, mode)
		// placeholder rows of missing codes carry nothing but the code
		rows[i].NotFound = rows[i].Title == "" && len(rows[i].Slots) == 0
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.Save(cmd.Context(), rows)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %s: %d new, %d updated, %d skipped\n", args[0], res.Inserted, res.Updated, res.Skipped)

	items := make([]validation.Item, 0, len(rows))
	for _, row := range rows {
		if !row.NotFound {
			items = append(items, validation.Item{Row: row})
		}
	}
	report := validation.NewValidator(validation.Options{}).Validate(items)
	counts := validation.CountByRule(report.Issues)
	rules := make([]string, 0, len(counts))
	for rule := range counts {
		rules = append(rules, string(rule))
	}
	slices.Sort(rules)
	for _, rule := range rules {
		fmt.Printf("  %-18s %d\n", rule, counts[validation.Rule(rule)])
	}
	return nil
}
