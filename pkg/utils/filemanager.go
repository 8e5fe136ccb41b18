// =============================================================================
// Catalog Builder - File Manager Utility
// =============================================================================
//
// This module provides the small file helpers shared by the commands:
//   - Directory creation for cache, output and database paths
//   - Output file naming with placeholders
//   - Atomic writes (temp file + rename) for the cache and session file
//   - Cache freshness checks
//   - Parent code lists read from text files
//   - The build summary written next to each export
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates every non-empty directory in dirs.
//
// RETURNS:
//   - An error if any directory cannot be created.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name (placeholders below).
//   - ext: The extension the name must end with, e.g. ".csv".
//   - params: Extra placeholder values.
//
// PLACEHOLDERS:
//
//	{uuid}      - A random UUID
//	{timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//	{date}      - Current date (YYYYMMDD)
//	{time}      - Current time (HHMMSS)
//	{mode}      - Build mode (passed in params)
//
// EXAMPLE:
//
//	format: "modello_finale_{mode}_{timestamp}.csv"
//	params: {"mode": "classic"}
//	output: "modello_finale_classic_20261019_143022.csv"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	return generateOutputFileName(format, ext, params, time.Now())
}

func generateOutputFileName(format, ext string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result = strings.TrimSuffix(result, filepath.Ext(result)) + ext
	}
	return result
}

// WithExt returns path with its extension replaced by ext.
func WithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes the content of r to path through a temp file in the
// same directory, so readers never see a partial file.
//
// RETURNS:
//   - The number of bytes written.
//   - An error if any step fails; the temp file is removed.
func WriteFileAtomic(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return written, nil
}

// =============================================================================
// FILE INFO
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// CacheIsFresh reports whether path exists, is not empty and was modified
// less than maxAge before now. A maxAge of zero means never fresh.
func CacheIsFresh(path string, maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	return now.Sub(info.ModTime()) < maxAge
}

// =============================================================================
// CODE LISTS
// =============================================================================

// ReadCodes reads parent codes, one per line. Blank lines and lines starting
// with "#" are skipped; cells are trimmed.
func ReadCodes(r io.Reader) ([]string, error) {
	var codes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read codes: %w", err)
	}
	return codes, nil
}

// ReadCodesFile reads a code list from disk.
func ReadCodesFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open codes file: %w", err)
	}
	defer file.Close()
	return ReadCodes(file)
}

// =============================================================================
// BUILD SUMMARY
// =============================================================================

// BuildSummary describes one build run.
type BuildSummary struct {
	StartTime  time.Time
	EndTime    time.Time
	Mode       string
	Source     string
	Requested  int
	Built      int
	NotFound   []string
	Issues     int
	OutputFile string
	XLSXFile   string
	ErrorLog   string
}

// WriteSummaryLog writes a build summary next to the export.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary BuildSummary, outputDir string) (string, error) {
	if err := EnsureDirectories(outputDir); err != nil {
		return "", err
	}

	summaryFileName := fmt.Sprintf("build_summary_%s.txt", summary.EndTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Catalog Builder - Build Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:  %s\n"+
		"  End Time:    %s\n"+
		"  Duration:    %s\n"+
		"  Mode:        %s\n"+
		"  Source:      %s\n\n"+
		"Statistics:\n"+
		"  Requested:   %d\n"+
		"  Built:       %d\n"+
		"  Not Found:   %d\n"+
		"  Issues:      %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.Mode,
		summary.Source,
		summary.Requested,
		summary.Built,
		len(summary.NotFound),
		summary.Issues)

	writer.WriteString("Output Files:\n")
	for _, path := range []string{summary.OutputFile, summary.XLSXFile, summary.ErrorLog} {
		if path != "" {
			fmt.Fprintf(writer, "  %s\n", path)
		}
	}
	writer.WriteString("\n")

	if len(summary.NotFound) > 0 {
		writer.WriteString("Codes Not Found:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, code := range summary.NotFound {
			fmt.Fprintf(writer, "  %s\n", code)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
