// =============================================================================
// Catalog Builder - Validation Engine
// =============================================================================
//
// Checks finished model rows before they are handed over. Nothing here stops
// an export: the layout team prefers a complete file plus a list of what to
// fix by hand over a build that refuses to run.
//
// CHECKS:
//   not_found          Requested code matched no rows (placeholder row)
//   truncated          Variants were dropped past the last fixed slot
//   missing_title      Row has no Nome Articolo
//   blank_price        A filled slot has no price
//   zero_price         A filled slot has a price of zero
//   unresolved_finish  A fixed-schema slot has no finish label
//   unknown_finish     A finish label is not in the finish vocabulary
//
// SEVERITY:
//   truncated is an error (data is missing from the file); everything else is
//   a warning. Issues are collected, never returned as Go errors.
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glasscom/catalog-builder/internal/finish"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/price"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Severity of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule names the check that produced an issue.
type Rule string

const (
	RuleNotFound         Rule = "not_found"
	RuleTruncated        Rule = "truncated"
	RuleMissingTitle     Rule = "missing_title"
	RuleBlankPrice       Rule = "blank_price"
	RuleZeroPrice        Rule = "zero_price"
	RuleUnresolvedFinish Rule = "unresolved_finish"
	RuleUnknownFinish    Rule = "unknown_finish"
)

// Issue is one finding on one row.
type Issue struct {
	Severity Severity
	Rule     Rule

	// Code is the Codice Articolo of the row.
	Code string

	// Slot is the 1-based variant slot, or 0 for row-level issues.
	Slot int

	// Value is the offending value, when there is one.
	Value string

	Message string
}

// String renders the issue on one line.
func (i Issue) String() string {
	where := i.Code
	if i.Slot > 0 {
		where = fmt.Sprintf("%s slot %d", i.Code, i.Slot)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(i.Severity)), where, i.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the issues of a validation run.
type Result struct {
	// IsValid is true when there are no errors (and, with
	// TreatWarningsAsErrors, no warnings).
	IsValid bool

	Issues       []Issue
	ErrorCount   int
	WarningCount int

	RowsValidated int
}

// Item is a row together with what its builder reported.
type Item struct {
	Row model.Row

	// Dropped is the number of variants that did not fit the schema.
	Dropped int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// TreatWarningsAsErrors makes any warning invalidate the result.
	// Default: false
	TreatWarningsAsErrors bool

	// SkipFinishCheck disables unresolved_finish, for catalogs whose codes
	// carry no finish suffix.
	// Default: false
	SkipFinishCheck bool
}

// Validator checks model rows.
type Validator struct {
	options Options
}

// NewValidator creates a Validator.
func NewValidator(options Options) *Validator {
	return &Validator{options: options}
}

// Validate checks every item and returns the collected issues in row order.
func (v *Validator) Validate(items []Item) Result {
	result := Result{IsValid: true, RowsValidated: len(items)}

	for _, item := range items {
		for _, issue := range v.ValidateRow(item) {
			result.Issues = append(result.Issues, issue)

			if issue.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false
				continue
			}
			result.WarningCount++
			if v.options.TreatWarningsAsErrors {
				result.IsValid = false
			}
		}
	}

	return result
}

// ValidateRow checks one item.
func (v *Validator) ValidateRow(item Item) []Issue {
	row := item.Row
	if row.NotFound {
		return []Issue{{
			Severity: SeverityWarning,
			Rule:     RuleNotFound,
			Code:     row.Code,
			Message:  "code not found in source",
		}}
	}

	var issues []Issue

	if item.Dropped > 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Rule:     RuleTruncated,
			Code:     row.Code,
			Value:    fmt.Sprintf("%d", item.Dropped),
			Message:  fmt.Sprintf("%d variants beyond slot %d were dropped", item.Dropped, model.MaxFixedSlots),
		})
	}

	if strings.TrimSpace(row.Title) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Rule:     RuleMissingTitle,
			Code:     row.Code,
			Message:  "row has no title",
		})
	}

	for i, slot := range row.Slots {
		if strings.TrimSpace(slot.Code) == "" {
			continue
		}
		n := i + 1

		switch {
		case strings.TrimSpace(slot.Price) == "":
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     RuleBlankPrice,
				Code:     row.Code,
				Slot:     n,
				Value:    slot.Code,
				Message:  fmt.Sprintf("variant %s has no price", slot.Code),
			})
		case price.IsZero(slot.Price):
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     RuleZeroPrice,
				Code:     row.Code,
				Slot:     n,
				Value:    slot.Price,
				Message:  fmt.Sprintf("variant %s has a zero price", slot.Code),
			})
		}

		if v.options.SkipFinishCheck || row.Mode.Dynamic() {
			continue
		}
		switch label := strings.TrimSpace(slot.Finish); {
		case label == "":
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     RuleUnresolvedFinish,
				Code:     row.Code,
				Slot:     n,
				Value:    slot.Code,
				Message:  fmt.Sprintf("no finish found for variant %s", slot.Code),
			})
		case finish.CodeByLabel(label) == "":
			// only hand-edited rows get here; built rows take labels from the vocabulary
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     RuleUnknownFinish,
				Code:     row.Code,
				Slot:     n,
				Value:    label,
				Message:  fmt.Sprintf("finish %q of variant %s is not a known finish", label, slot.Code),
			})
		}
	}

	return issues
}

// =============================================================================
// ERROR LOG
// =============================================================================

// WriteErrorLog writes the issues to a text file in outputDir.
//
// RETURNS:
//   - The path to the log file, or "" when there is nothing to write.
//   - An error if writing fails.
func WriteErrorLog(result Result, outputDir string, now time.Time) (string, error) {
	if len(result.Issues) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Catalog Builder - Error Log\n"+
		"Generated: %s\n"+
		"Rows Checked: %d\n"+
		"Errors: %d\n"+
		"Warnings: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		result.RowsValidated,
		result.ErrorCount,
		result.WarningCount)

	for i, issue := range result.Issues {
		fmt.Fprintf(writer, "Issue #%d\n"+
			"  Severity:   %s\n"+
			"  Rule:       %s\n"+
			"  Code:       %s\n",
			i+1, issue.Severity, issue.Rule, issue.Code)
		if issue.Slot > 0 {
			fmt.Fprintf(writer, "  Slot:       %d\n", issue.Slot)
		}
		if issue.Value != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", issue.Value)
		}
		fmt.Fprintf(writer, "  Message:    %s\n\n", issue.Message)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// CountByRule tallies issues per rule, for summaries.
func CountByRule(issues []Issue) map[Rule]int {
	counts := make(map[Rule]int)
	for _, issue := range issues {
		counts[issue.Rule]++
	}
	return counts
}
