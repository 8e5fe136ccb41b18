package csvparser

import "fmt"

// LoadErrorKind classifies why a source table could not be loaded.
type LoadErrorKind string

const (
	// KindUnreadable means the source could not be opened or read.
	KindUnreadable LoadErrorKind = "unreadable"

	// KindUnparseable means the bytes were read but are not a valid table.
	KindUnparseable LoadErrorKind = "unparseable"

	// KindEmpty means the table has no header or no data rows.
	KindEmpty LoadErrorKind = "empty"

	// KindMissingColumn means an essential column could not be resolved.
	KindMissingColumn LoadErrorKind = "missing_column"
)

// LoadError is returned for every failed table load. A load either yields a
// table with at least one row or a *LoadError, never an empty table.
type LoadError struct {
	Source string
	Kind   LoadErrorKind
	Err    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Source, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}
