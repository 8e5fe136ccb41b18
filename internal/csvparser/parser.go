// =============================================================================
// Catalog Builder - CSV Parser Module
// =============================================================================
//
// This module reads the source catalog tables. Source files come from the
// catalog export (semicolon separated, usually Latin-1 encoded) and are turned
// into an ordered slice of header -> value rows.
//
// FEATURES:
//   - Configurable delimiter (semicolon by default)
//   - Charset decoding for legacy encodings (Latin-1, Windows-1252)
//   - UTF-8 byte order mark removal on the first header
//   - Rows where every cell is blank are skipped
//   - Typed load errors so callers can tell "empty" from "unreadable"
//
// ROW ORDER:
//   The order of Table.Rows is the order of the file. Grouping relies on it
//   (a variant belongs to the nearest parent row above it), so nothing in this
//   package may reorder rows.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glasscom/catalog-builder/internal/config"
	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table represents a parsed source file.
type Table struct {
	// Headers contains the column headers in file order.
	// Blank headers are replaced with "Column_N" so positions stay stable.
	Headers []string

	// Rows contains the data rows as header -> value maps, in file order.
	Rows []types.Row

	// SourceFile is the path or label the table was read from.
	SourceFile string

	// RowCount is the number of data rows (excluding the header).
	RowCount int

	// ColumnCount is the number of columns in the header.
	ColumnCount int
}

// NewTable builds a table from already split rows. It is used by the XLSX
// reader and by tests. Cell values are trimmed.
func NewTable(source string, headers []string, records [][]string) (*Table, error) {
	return newTable(source, headers, records, true)
}

// NewUntrimmedTable is NewTable without cell trimming. Headers are still
// cleaned. Model files read back for import use it so titles keep their
// spaces.
func NewUntrimmedTable(source string, headers []string, records [][]string) (*Table, error) {
	return newTable(source, headers, records, false)
}

func newTable(source string, headers []string, records [][]string, trim bool) (*Table, error) {
	if len(headers) == 0 {
		return nil, &LoadError{Source: source, Kind: KindEmpty, Err: errors.New("no header row")}
	}

	cleaned := cleanHeaders(headers)
	rows := extractDataRows(records, cleaned, trim)
	if len(rows) == 0 {
		return nil, &LoadError{Source: source, Kind: KindEmpty, Err: errors.New("no data rows")}
	}

	return &Table{
		Headers:     cleaned,
		Rows:        rows,
		SourceFile:  source,
		RowCount:    len(rows),
		ColumnCount: len(cleaned),
	}, nil
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a CSV file from disk.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding of the file.
//
// RETURNS:
//   - The parsed table.
//   - A *LoadError if the file is missing, unreadable or has no data rows.
func ParseFile(filePath string, settings config.CSVSettings) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, &LoadError{Source: filePath, Kind: KindUnreadable, Err: err}
	}
	defer file.Close()

	return Parse(file, filePath, settings)
}

// Parse reads a CSV table from a reader.
//
// PARSING PROCESS:
//  1. Read the whole input (tables are small and decoding needs to sniff it)
//  2. Decode from the configured charset to UTF-8
//  3. Split records with encoding/csv using the configured delimiter
//  4. Strip the BOM from the first header and clean all headers
//  5. Convert every non-blank record into a header -> value row, trimming
//     cells unless settings.KeepSpaces is set
func Parse(r io.Reader, source string, settings config.CSVSettings) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Kind: KindUnreadable, Err: err}
	}

	decoded, err := decode(raw, settings.Encoding)
	if err != nil {
		return nil, &LoadError{Source: source, Kind: KindUnparseable, Err: err}
	}

	csvReader := csv.NewReader(bytes.NewReader(decoded))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, &LoadError{Source: source, Kind: KindUnparseable, Err: fmt.Errorf("failed to read CSV: %w", err)}
	}

	if len(allRows) == 0 {
		return nil, &LoadError{Source: source, Kind: KindEmpty, Err: errors.New("file is empty")}
	}

	headers := allRows[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	return newTable(source, headers, allRows[1:], !settings.KeepSpaces)
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = delimiterRune(settings.Delimiter)

	// The catalog export is not strict about column counts or quoting.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = !settings.KeepSpaces
}

// delimiterRune maps a configured delimiter name to the rune used by the reader.
func delimiterRune(delimiter string) rune {
	switch delimiter {
	case "\\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ",", "comma":
		return ','
	case "", ";", "semicolon":
		return ';'
	default:
		return []rune(delimiter)[0]
	}
}

// cleanHeaders trims header values and names blank headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts records to rows, skipping rows with no content.
// Missing trailing cells become empty strings.
func extractDataRows(records [][]string, headers []string, trim bool) []types.Row {
	rows := make([]types.Row, 0, len(records))

	for _, record := range records {
		if isRowEmpty(record) {
			continue
		}

		row := make(types.Row, len(headers))
		for colIndex, header := range headers {
			switch {
			case colIndex >= len(record):
				row[header] = ""
			case trim:
				row[header] = strings.TrimSpace(record[colIndex])
			default:
				row[header] = record[colIndex]
			}
		}

		rows = append(rows, row)
	}

	return rows
}

// isRowEmpty checks if a record contains only blank values.
func isRowEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// LOOKUP HELPERS
// =============================================================================

// HasHeader reports whether the table has a column with exactly this name.
func (t *Table) HasHeader(header string) bool {
	for _, h := range t.Headers {
		if h == header {
			return true
		}
	}
	return false
}

// Records converts the rows into flat records keyed by header.
// It is used when a previously exported model file is read back.
func (t *Table) Records() []types.Record {
	records := make([]types.Record, len(t.Rows))
	for i, row := range t.Rows {
		record := make(types.Record, len(row))
		for k, v := range row {
			record[k] = v
		}
		records[i] = record
	}
	return records
}
