package csvparser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// EXPORT
// =============================================================================

// WriteRecords writes a semicolon separated table: one header line with the
// keys, then one line per record. Values are looked up by key and default to
// the empty string. Lines end with "\n".
func WriteRecords(w io.Writer, keys []string, records []types.Record) error {
	bw := bufio.NewWriter(w)

	if err := writeLine(bw, keys); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	line := make([]string, len(keys))
	for i, record := range records {
		for j, key := range keys {
			line[j] = record[key]
		}
		if err := writeLine(bw, line); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}

	return bw.Flush()
}

// writeLine joins quoted fields with ";".
func writeLine(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(';'); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(QuoteField(field)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// QuoteField escapes one value. Values containing ";", a double quote, a
// line break, or leading or trailing whitespace are wrapped in double quotes
// with inner quotes doubled.
func QuoteField(value string) string {
	if !needsQuotes(value) {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func needsQuotes(value string) bool {
	if value == "" {
		return false
	}
	if strings.ContainsAny(value, ";\"\r\n") {
		return true
	}
	first, _ := utf8.DecodeRuneInString(value)
	last, _ := utf8.DecodeLastRuneInString(value)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}
