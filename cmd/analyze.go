// =============================================================================
// Sales Analytics - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, the main command of the tool. It
// runs the whole pipeline and prints a short summary.
//
// COMMAND USAGE:
//   salesreport analyze [flags]
//
// FLAGS:
//   --input       : Sales data file (overrides input_file)
//   --region      : Region filter
//   --min-amount  : Minimum transaction amount
//   --max-amount  : Maximum transaction amount
//   --offline     : Skip the catalog request
//   --enriched    : Enriched data output file
//   --report      : Report output file
//   --workbook    : Also write an Excel workbook to this path
//   --reject-log  : Also write skipped and invalid lines to this path
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/pipeline"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var analyzeInput inputFlags

var (
	offline       bool
	enrichedPath  string
	reportPath    string
	workbookPath  string
	rejectLogPath string
)

// =============================================================================
// ANALYZE COMMAND DEFINITION
// =============================================================================

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze sales data and write the enriched file and report",
	Long: `The analyze command reads the sales data file, validates and filters the
transactions, enriches them with product catalog data and writes:

  - the enriched data file (pipe-delimited)
  - the sales report
  - optionally an Excel workbook and a reject log

A missing input file or an unreachable catalog does not stop the run; the
outputs are still written with whatever data is available.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeInput.register(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&offline, "offline", false, "Skip the product catalog request")
	analyzeCmd.Flags().StringVar(&enrichedPath, "enriched", "", "Path of the enriched data file")
	analyzeCmd.Flags().StringVar(&reportPath, "report", "", "Path of the report file")
	analyzeCmd.Flags().StringVar(&workbookPath, "workbook", "", "Also write an Excel workbook to this path")
	analyzeCmd.Flags().StringVar(&rejectLogPath, "reject-log", "", "Also write skipped and invalid lines to this path")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runAnalyze(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		analyzeInput.apply(cmd, cfg)
		if cmd.Flags().Changed("offline") {
			cfg.Offline = offline
		}
		if cmd.Flags().Changed("enriched") {
			cfg.EnrichedOutputFile = enrichedPath
		}
		if cmd.Flags().Changed("report") {
			cfg.ReportFile = reportPath
		}
		if cmd.Flags().Changed("workbook") {
			cfg.WorkbookFile = workbookPath
		}
		if cmd.Flags().Changed("reject-log") {
			cfg.RejectLogFile = rejectLogPath
		}
	})
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, pipeline.WithLogger(newLogger(cfg)))
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	result := p.Run(ctx)
	if result.Error != nil {
		return fmt.Errorf("run %s failed: %w", result.RunID, result.Error)
	}

	printRunSummary(cmd.OutOrStdout(), cfg, result)
	return nil
}

func printRunSummary(w io.Writer, cfg *config.Config, result pipeline.Result) {
	s := result.Stats

	fmt.Fprintln(w, "=== Sales Analytics ===")
	fmt.Fprintf(w, "Run ID:              %s\n", result.RunID)
	fmt.Fprintf(w, "Lines read:          %d\n", s.LinesRead)
	fmt.Fprintf(w, "Parsed:              %d\n", s.Parsed)
	fmt.Fprintf(w, "Skipped (malformed): %d\n", s.Skipped)
	fmt.Fprintf(w, "Invalid:             %d\n", s.Invalid)
	fmt.Fprintf(w, "Filtered by region:  %d\n", s.FilteredByRegion)
	fmt.Fprintf(w, "Filtered by amount:  %d\n", s.FilteredByAmount)
	fmt.Fprintf(w, "Valid:               %d\n", s.Valid)
	fmt.Fprintf(w, "Total revenue:       %s\n", formatMoney(cfg, s.TotalRevenue))
	fmt.Fprintf(w, "Enriched:            %d/%d (%.2f%%)\n", s.Matched, s.Matched+s.Unmatched, result.Enrichment.SuccessRate)
	fmt.Fprintf(w, "Enriched data:       %s\n", result.Outputs.EnrichedFile)
	fmt.Fprintf(w, "Report:              %s\n", result.Outputs.ReportFile)
	if result.Outputs.WorkbookFile != "" {
		fmt.Fprintf(w, "Workbook:            %s\n", result.Outputs.WorkbookFile)
	}
	if result.Outputs.RejectLogFile != "" {
		fmt.Fprintf(w, "Reject log:          %s\n", result.Outputs.RejectLogFile)
	}
	fmt.Fprintf(w, "Time elapsed:        %s\n", s.ProcessingTime)
}
