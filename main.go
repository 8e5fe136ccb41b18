// =============================================================================
// Catalog Builder - Main Entry Point
// =============================================================================
//
// USAGE:
//   catalog build       - Build model rows for a list of parent codes
//   catalog session     - Build an export one code at a time
//   catalog saved       - Browse and export saved model rows
//   catalog fetch       - Refresh the cached source export
//   catalog template    - Write an empty model file
//   catalog version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : Cobra command definitions
//   - internal/  : Parsing, grouping, model building, storage
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/glasscom/catalog-builder/cmd"
)

func main() {
	cmd.Execute()
}
