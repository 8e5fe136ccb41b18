// =============================================================================
// Catalog Builder - Template Command
// =============================================================================
//
// This file defines the 'template' command, which writes an empty model file
// (header row only) for filling in by hand.
//
// COMMAND USAGE:
//   catalog template [--mode] [--slots] [--out] [--xlsx]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glasscom/catalog-builder/internal/model"
)

var (
	templateMode  string
	templateSlots int
	templateOut   string
	templateXLSX  bool
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an empty model file with only the header row",
	Long: `Writes the header row of the model schema for a mode. Fixed modes always
have five variant slots; for morsetti and tubi --slots sets how many
variant columns the template carries.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := resolveMode(templateMode)
		if err != nil {
			return err
		}
		if templateSlots < 1 {
			return fmt.Errorf("--slots must be at least 1")
		}

		keys := model.FixedKeys()
		if mode.Dynamic() {
			keys = model.DynamicKeys(templateSlots)
		}

		outPath := templateOut
		if outPath == "" {
			outPath = filepath.Join(cfg.Output.Dir, "modello_vuoto_"+mode.String()+".csv")
		}

		xlsxPath, err := writeExport(outPath, keys, nil, templateXLSX)
		if err != nil {
			return err
		}

		fmt.Printf("Template: %s (%d columns)\n", outPath, len(keys))
		if xlsxPath != "" {
			fmt.Printf("XLSX:     %s\n", xlsxPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVar(&templateMode, "mode", "", "Schema mode (default from build.default_mode)")
	templateCmd.Flags().IntVar(&templateSlots, "slots", 1, "Variant slots for morsetti and tubi")
	templateCmd.Flags().StringVar(&templateOut, "out", "", "Template file path")
	templateCmd.Flags().BoolVar(&templateXLSX, "xlsx", false, "Also write an .xlsx copy")
}
