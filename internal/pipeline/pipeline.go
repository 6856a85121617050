// =============================================================================
// Sales Analytics - Pipeline Module
// =============================================================================
//
// This module orchestrates one analytics run, from the raw sales file to the
// report.
//
// PIPELINE:
//   1. Read the input file (encoding fallback, header dropped)
//   2. Parse lines into transactions (malformed lines skipped)
//   3. Validate and filter transactions
//   4. Compute headline metrics for the log
//   5. Fetch the product catalog (skipped when offline)
//   6. Build the product mapping and enrich valid transactions
//   7. Write the enriched data file
//   8. Write the optional workbook and reject log
//   9. Write the report
//
// ERROR POLICY:
//   - Missing or undecodable input: zero records, warning, run continues
//   - Catalog failure: empty catalog, warning, run continues
//   - Output write failure: the run fails and the error is returned
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/catalog"
	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/csvparser"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/export"
	"github.com/ginjaninja78/sales-analytics/internal/logger"
	"github.com/ginjaninja78/sales-analytics/internal/report"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/ginjaninja78/sales-analytics/internal/xlsxexport"
	"github.com/ginjaninja78/sales-analytics/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// RunID identifies the run in logs, the report and file names.
	RunID string

	InputFile string

	// Encoding that decoded the input, empty if nothing was read.
	Encoding string

	Parse      *csvparser.ParseResult
	Validation *validation.Result
	Enriched   []types.EnrichedTransaction
	Enrichment enrichment.Stats

	Outputs Outputs

	// Success indicates whether every requested output was written.
	Success bool

	// Error contains the error if the run failed.
	Error error

	Stats ProcessingStats
}

// Outputs lists the files written by the run. Empty means not written.
type Outputs struct {
	EnrichedFile  string
	ReportFile    string
	WorkbookFile  string
	RejectLogFile string
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	LinesRead        int
	Parsed           int
	Skipped          int
	Invalid          int
	FilteredByRegion int
	FilteredByAmount int
	Valid            int

	CatalogProducts int
	Matched         int
	Unmatched       int

	TotalRevenue decimal.Decimal

	ProcessingTime time.Duration
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs the analytics steps for one configuration.
type Pipeline struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *catalog.Client
	now    func() time.Time
	runID  func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards all output.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithCatalogClient sets the catalog client instead of building one from
// the configuration.
func WithCatalogClient(client *catalog.Client) Option {
	return func(p *Pipeline) { p.client = client }
}

// WithClock sets the time source used for the report and file names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID fixes the run identifier.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = func() string { return id } }
}

// New creates a Pipeline.
//
// PARAMETERS:
//   - cfg: The loaded configuration.
//   - opts: Optional overrides.
//
// RETURNS:
//   - The Pipeline, or an error if the catalog client cannot be built.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:   cfg,
		log:   zerolog.Nop(),
		now:   time.Now,
		runID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil && !cfg.Offline {
		client, err := catalog.NewClient(cfg.CatalogClientConfig(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog client: %w", err)
		}
		p.client = client
	}

	return p, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the full pipeline.
func (p *Pipeline) Run(ctx context.Context) Result {
	startTime := p.now()
	result := p.prepare()
	log := p.runLogger(result)
	ctx = logger.WithContext(ctx, log)

	// =========================================================================
	// STEPS 1-3: READ, PARSE, VALIDATE
	// =========================================================================

	if err := p.load(&result, log); err != nil {
		result.Error = err
		return result
	}
	valid := result.Validation.Valid

	// =========================================================================
	// STEP 4: HEADLINE METRICS
	// =========================================================================

	result.Stats.TotalRevenue = analytics.TotalRevenue(valid)
	event := log.Info().Str("total_revenue", result.Stats.TotalRevenue.StringFixed(2))
	if peak, err := analytics.PeakDay(valid); err == nil {
		event = event.Str("peak_day", peak.Date).Str("peak_revenue", peak.Revenue.StringFixed(2))
	} else if errors.Is(err, analytics.ErrNoData) {
		event = event.Bool("no_data", true)
	}
	event.Msg("Computed sales metrics")

	// =========================================================================
	// STEPS 5-6: CATALOG AND ENRICHMENT
	// =========================================================================

	products := []catalog.Product{}
	if p.client != nil && !p.cfg.Offline {
		products = catalog.FetchCatalog(ctx, p.client)
	} else {
		log.Info().Msg("Offline mode, skipping catalog request")
	}
	mapping := catalog.BuildProductMapping(products)
	result.Stats.CatalogProducts = mapping.Len()

	result.Enriched = enrichment.Enrich(valid, mapping)
	result.Enrichment = enrichment.Summarize(result.Enriched)
	result.Stats.Matched = result.Enrichment.Matched
	result.Stats.Unmatched = result.Enrichment.Unmatched
	log.Info().
		Int("matched", result.Enrichment.Matched).
		Int("unmatched", result.Enrichment.Unmatched).
		Float64("success_rate", result.Enrichment.SuccessRate).
		Msg("Enriched transactions")

	// =========================================================================
	// STEPS 7-9: OUTPUTS
	// =========================================================================

	if err := p.writeOutputs(&result, startTime, log); err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	result.Stats.ProcessingTime = p.now().Sub(startTime)
	log.Info().
		Str("report", result.Outputs.ReportFile).
		Str("enriched", result.Outputs.EnrichedFile).
		Dur("duration", result.Stats.ProcessingTime).
		Msg("Run complete")

	return result
}

// Check reads, parses and validates the input without contacting the
// catalog or writing any file.
func (p *Pipeline) Check() Result {
	startTime := p.now()
	result := p.prepare()
	log := p.runLogger(result)

	if err := p.load(&result, log); err != nil {
		result.Error = err
		return result
	}

	result.Stats.TotalRevenue = analytics.TotalRevenue(result.Validation.Valid)
	result.Success = true
	result.Stats.ProcessingTime = p.now().Sub(startTime)
	return result
}

func (p *Pipeline) prepare() Result {
	return Result{
		RunID:     p.runID(),
		InputFile: p.cfg.InputFile,
	}
}

// runLogger tags every entry of one run.
func (p *Pipeline) runLogger(result Result) zerolog.Logger {
	return logger.WithFields(p.log, map[string]interface{}{
		"run_id": result.RunID,
		"input":  result.InputFile,
	})
}

// load runs the read, parse and validate steps.
func (p *Pipeline) load(result *Result, log zerolog.Logger) error {
	input, err := csvparser.ReadLines(p.cfg.InputFile)
	switch {
	case err == nil:
	case errors.Is(err, csvparser.ErrInputNotFound), errors.Is(err, csvparser.ErrUndecodable):
		log.Warn().Err(err).Msg("No input records, continuing with an empty data set")
	default:
		return err
	}
	result.Encoding = input.Encoding
	result.Stats.LinesRead = len(input.Lines)

	result.Parse = csvparser.Parse(input.Lines)
	result.Stats.Parsed = result.Parse.Kept()
	result.Stats.Skipped = result.Parse.Skipped()
	log.Info().
		Str("file", p.cfg.InputFile).
		Str("encoding", input.Encoding).
		Int("lines", len(input.Lines)).
		Int("parsed", result.Parse.Kept()).
		Int("skipped", result.Parse.Skipped()).
		Msg("Parsed input")

	records := result.Parse.Transactions
	event := log.Info().Strs("regions", validation.AvailableRegions(records))
	if low, high, ok := validation.AmountRange(records); ok {
		event = event.Str("min_amount", low.StringFixed(2)).Str("max_amount", high.StringFixed(2))
	}
	event.Msg("Available regions and amount range")

	result.Validation = validation.Validate(records, p.cfg.FilterOptions())
	summary := result.Validation.Summary
	result.Stats.Invalid = summary.Invalid
	result.Stats.FilteredByRegion = summary.FilteredByRegion
	result.Stats.FilteredByAmount = summary.FilteredByAmount
	result.Stats.Valid = summary.FinalCount
	log.Info().
		Int("total_input", summary.TotalInput).
		Int("invalid", summary.Invalid).
		Int("filtered_by_region", summary.FilteredByRegion).
		Int("filtered_by_amount", summary.FilteredByAmount).
		Int("final_count", summary.FinalCount).
		Msg("Validated transactions")

	return nil
}

func (p *Pipeline) writeOutputs(result *Result, startTime time.Time, log zerolog.Logger) error {
	cfg := p.cfg
	enrichedPath := utils.ExpandFileName(cfg.EnrichedOutputFile, result.RunID, startTime)
	reportPath := utils.ExpandFileName(cfg.ReportFile, result.RunID, startTime)
	workbookPath := utils.ExpandFileName(cfg.WorkbookFile, result.RunID, startTime)
	rejectPath := utils.ExpandFileName(cfg.RejectLogFile, result.RunID, startTime)

	if err := utils.NewFileManager(enrichedPath, reportPath, workbookPath, rejectPath).EnsureDirectories(); err != nil {
		return err
	}

	if err := export.WriteEnrichedFile(enrichedPath, result.Enriched); err != nil {
		return fmt.Errorf("failed to save enriched data: %w", err)
	}
	result.Outputs.EnrichedFile = enrichedPath
	log.Info().Str("file", enrichedPath).Int("records", len(result.Enriched)).Msg("Saved enriched data")

	valid := result.Validation.Valid

	if workbookPath != "" {
		wb := xlsxexport.Workbook{
			Enriched:  result.Enriched,
			Regions:   analytics.RegionSummary(valid),
			Products:  analytics.TopProducts(valid, cfg.Analysis.TopProducts),
			Customers: analytics.CustomerAnalysis(valid),
			Daily:     analytics.DailyTrend(valid),
		}
		if err := xlsxexport.Write(workbookPath, wb); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}
		result.Outputs.WorkbookFile = workbookPath
		log.Info().Str("file", workbookPath).Msg("Saved workbook")
	}

	if rejectPath != "" {
		written, err := utils.WriteRejectLog(RejectEntries(result.Parse, result.Validation), rejectPath, startTime)
		if err != nil {
			return fmt.Errorf("failed to save reject log: %w", err)
		}
		result.Outputs.RejectLogFile = written
		if written != "" {
			log.Info().Str("file", written).Msg("Saved reject log")
		}
	}

	opts := report.Options{
		Now:                   startTime,
		RunID:                 result.RunID,
		TopProducts:           cfg.Analysis.TopProducts,
		TopCustomers:          cfg.Analysis.TopCustomers,
		LowPerformerThreshold: cfg.Analysis.LowPerformerThreshold,
		Currency:              cfg.Report.Currency,
	}
	if err := report.WriteFile(reportPath, valid, result.Enriched, opts); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	result.Outputs.ReportFile = reportPath

	return nil
}

// RejectEntries converts skipped lines and invalid records into reject log
// entries, skipped lines first.
func RejectEntries(parsed *csvparser.ParseResult, validated *validation.Result) []utils.RejectEntry {
	var entries []utils.RejectEntry
	var keptLines []int

	if parsed != nil {
		for _, outcome := range parsed.Outcomes {
			if outcome.Status == csvparser.StatusKept {
				keptLines = append(keptLines, outcome.Line.Number)
			}
		}
		for _, outcome := range parsed.SkippedOutcomes() {
			entries = append(entries, utils.RejectEntry{
				Kind:       utils.RejectSkipped,
				LineNumber: outcome.Line.Number,
				Reason:     string(outcome.Reason),
				Message:    outcome.Detail,
				FieldValue: outcome.Line.Text,
			})
		}
	}

	if validated != nil {
		for _, verr := range validated.Errors {
			lineNumber := 0
			if verr.RecordIndex < len(keptLines) {
				lineNumber = keptLines[verr.RecordIndex]
			}
			entries = append(entries, utils.RejectEntry{
				Kind:          utils.RejectInvalid,
				LineNumber:    lineNumber,
				Reason:        verr.Rule,
				Message:       verr.Message,
				TransactionID: verr.TransactionID,
				FieldName:     verr.Field,
				FieldValue:    verr.Value,
			})
		}
	}

	return entries
}
