// =============================================================================
// Sales Analytics - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It reads, parses and validates
// the sales file and prints what would be kept, without contacting the
// catalog or writing any output.
//
// COMMAND USAGE:
//   salesreport validate [--input file] [--region R] [--min-amount X] [--max-amount Y]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/csvparser"
	"github.com/ginjaninja78/sales-analytics/internal/pipeline"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
)

var validateInput inputFlags

// showErrors prints every invalid record.
var showErrors bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a sales file without writing outputs",
	Long: `The validate command parses and validates the sales data file and prints
the parse and filter summaries. Nothing is fetched and nothing is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, func(cfg *config.Config) {
			validateInput.apply(cmd, cfg)
			cfg.Offline = true
		})
		if err != nil {
			return err
		}

		p, err := pipeline.New(cfg, pipeline.WithLogger(newLogger(cfg)))
		if err != nil {
			return err
		}

		result := p.Check()
		if result.Error != nil {
			return result.Error
		}

		printCheckSummary(cmd.OutOrStdout(), cfg, result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateInput.register(validateCmd)
	validateCmd.Flags().BoolVar(&showErrors, "show-errors", false, "List every invalid record")
}

func printCheckSummary(w io.Writer, cfg *config.Config, result pipeline.Result) {
	parsed := result.Parse
	summary := result.Validation.Summary

	fmt.Fprintln(w, "=== Validation Summary ===")
	fmt.Fprintf(w, "Input file:          %s\n", result.InputFile)
	if result.Encoding != "" {
		fmt.Fprintf(w, "Encoding:            %s\n", result.Encoding)
	}
	fmt.Fprintf(w, "Lines read:          %d\n", result.Stats.LinesRead)
	fmt.Fprintf(w, "Parsed:              %d\n", parsed.Kept())
	fmt.Fprintf(w, "Skipped (malformed): %d (field count: %d, quantity: %d, unit price: %d)\n",
		parsed.Skipped(),
		parsed.SkippedBy(csvparser.ReasonFieldCount),
		parsed.SkippedBy(csvparser.ReasonBadQuantity),
		parsed.SkippedBy(csvparser.ReasonBadUnitPrice))
	fmt.Fprintf(w, "Available regions:   %v\n", validation.AvailableRegions(parsed.Transactions))
	if low, high, ok := validation.AmountRange(parsed.Transactions); ok {
		fmt.Fprintf(w, "Amount range:        %s - %s\n", formatMoney(cfg, low), formatMoney(cfg, high))
	}
	fmt.Fprintf(w, "Total input:         %d\n", summary.TotalInput)
	fmt.Fprintf(w, "Invalid:             %d\n", summary.Invalid)
	fmt.Fprintf(w, "Filtered by region:  %d\n", summary.FilteredByRegion)
	fmt.Fprintf(w, "Filtered by amount:  %d\n", summary.FilteredByAmount)
	fmt.Fprintf(w, "Final count:         %d\n", summary.FinalCount)

	if showErrors {
		fmt.Fprintln(w)
		fmt.Fprint(w, validation.FormatErrors(result.Validation.Errors))
	}
}
