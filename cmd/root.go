// =============================================================================
// Sales Analytics - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesreport)
//   ├── analyzeCmd  (salesreport analyze)
//   ├── validateCmd (salesreport validate)
//   └── versionCmd  (salesreport version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration (file, .env, environment)
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// When empty, config.yaml in the working directory is used if present.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "Sales Analytics - Analyze, enrich and report on sales transactions",
	Long: `Sales Analytics reads a pipe-delimited sales transaction file, validates
and filters the records, enriches them with product data from an online
catalog, and writes an enriched data file plus a formatted sales report.

Key Features:
  - Tolerant input reading (utf-8, latin-1 and cp1252 files)
  - Region and amount filters
  - Revenue, region, product, customer and daily trend analysis
  - Best-effort catalog enrichment (the run continues when offline)
  - Optional Excel workbook and reject log

Example Usage:
  salesreport analyze                          # Run with config.yaml or defaults
  salesreport analyze --region North --offline # Filter and skip the catalog
  salesreport validate --input data/sales.txt  # Check a file without writing outputs`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is config.yaml if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// inputFlags are accepted by every command that reads sales data.
type inputFlags struct {
	input     string
	region    string
	minAmount float64
	maxAmount float64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", "", "Path to the sales data file")
	cmd.Flags().StringVar(&f.region, "region", "", "Only keep transactions from this region")
	cmd.Flags().Float64Var(&f.minAmount, "min-amount", 0, "Only keep transactions with an amount of at least this value")
	cmd.Flags().Float64Var(&f.maxAmount, "max-amount", 0, "Only keep transactions with an amount of at most this value")
}

// apply copies explicitly set flags over the loaded configuration.
func (f *inputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("input") {
		cfg.InputFile = f.input
	}
	if cmd.Flags().Changed("region") {
		cfg.Filters.Region = f.region
	}
	if cmd.Flags().Changed("min-amount") {
		minAmount := f.minAmount
		cfg.Filters.MinAmount = &minAmount
	}
	if cmd.Flags().Changed("max-amount") {
		maxAmount := f.maxAmount
		cfg.Filters.MaxAmount = &maxAmount
	}
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(cmd *cobra.Command, overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	for _, override := range overrides {
		override(cfg)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the console logger for a command.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(cfg.LogLevel)
}

func formatMoney(cfg *config.Config, d decimal.Decimal) string {
	return cfg.Report.Currency + d.StringFixed(2)
}
