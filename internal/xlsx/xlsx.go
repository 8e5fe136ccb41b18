// =============================================================================
// Catalog Builder - XLSX Reader and Writer
// =============================================================================
//
// Some catalog sources arrive as spreadsheets instead of CSV exports, and the
// finished model is handed to the layout team as a workbook next to the CSV.
// This module covers both directions.
//
// READING:
//   The first sheet (or a named one) is read with its first non-blank row as
//   the header. The result goes through csvparser.NewTable, so header
//   cleaning, blank-row skipping and load errors match CSV sources exactly.
//
// WRITING:
//   One sheet, header row in bold, one row per record in key order. Prices
//   stay text so "1234.56" is not reformatted by the spreadsheet.
//
// =============================================================================

package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/types"
)

// DefaultSheet is the name of the sheet written by WriteFile.
const DefaultSheet = "Modello"

// =============================================================================
// READER
// =============================================================================

// ReadOptions selects the sheet to read and how cells are cleaned.
type ReadOptions struct {
	// Sheet is the sheet to read; "" selects the first sheet.
	Sheet string

	// KeepSpaces keeps leading and trailing whitespace in cell values.
	KeepSpaces bool
}

// ReadFile loads a source table from an XLSX file.
//
// PARAMETERS:
//   - path: The workbook path.
//   - opts: The sheet and cell cleaning options.
//
// RETURNS:
//   - The table.
//   - A *csvparser.LoadError when the file is unreadable, not a workbook,
//     or has no data rows.
func ReadFile(path string, opts ReadOptions) (*csvparser.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &csvparser.LoadError{Source: path, Kind: csvparser.KindUnreadable, Err: err}
	}
	return Read(bytes.NewReader(content), path, opts)
}

// Read loads a source table from workbook bytes.
func Read(r io.Reader, source string, opts ReadOptions) (*csvparser.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &csvparser.LoadError{Source: source, Kind: csvparser.KindUnparseable, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, &csvparser.LoadError{Source: source, Kind: csvparser.KindEmpty, Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &csvparser.LoadError{Source: source, Kind: csvparser.KindUnparseable, Err: fmt.Errorf("failed to read sheet %s: %w", sheet, err)}
	}

	headerIndex := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, &csvparser.LoadError{Source: source, Kind: csvparser.KindEmpty, Err: errors.New("sheet is empty")}
	}

	if opts.KeepSpaces {
		return csvparser.NewUntrimmedTable(source, rows[headerIndex], rows[headerIndex+1:])
	}
	return csvparser.NewTable(source, rows[headerIndex], rows[headerIndex+1:])
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// WRITER
// =============================================================================

// Write renders records as a single-sheet workbook.
//
// PARAMETERS:
//   - w: Destination of the workbook bytes.
//   - keys: Column order; also the header row.
//   - records: One row each. Missing keys are left blank.
func Write(w io.Writer, keys []string, records []types.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, DefaultSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet = DefaultSheet

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(keys))
	for i, key := range keys {
		header[i] = key
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(keys) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(keys), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, record := range records {
		values := make([]any, len(keys))
		for j, key := range keys {
			values[j] = record[key]
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile writes the workbook to path, creating its directory.
func WriteFile(path string, keys []string, records []types.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, keys, records); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
