// =============================================================================
// Sales Analytics - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Sales Analytics CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   salesreport analyze   - Analyze, enrich and report on the sales data file
//   salesreport validate  - Check the sales data file without writing outputs
//   salesreport version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, validation, analytics, enrichment and output
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-analytics/cmd"
)

func main() {
	cmd.Execute()
}
