// =============================================================================
// Sales Analytics - Report Generator
// =============================================================================
//
// This module renders the human-readable sales report.
//
// SECTIONS (in order):
//   1. Header              - generation time, run id, records processed
//   2. Overall summary     - revenue, transaction count, average order
//                            value, date range
//   3. Region-wise performance
//   4. Top products        - by quantity
//   5. Top customers       - by total spent
//   6. Daily sales trend
//   7. Product performance - low performers
//   8. API enrichment summary
//
// FORMATTING:
//   - Money has 2 decimal places and thousands separators ("₹12,345.67")
//   - Percentages have 2 decimal places
//
// =============================================================================

package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// DefaultCurrency is prefixed to every money value.
const DefaultCurrency = "₹"

const timestampLayout = "2006-01-02 15:04:05"

var (
	heavyRule = strings.Repeat("=", 40)
	lightRule = strings.Repeat("-", 40)
)

// Options controls report rendering.
type Options struct {
	// Now is the generation time printed in the header.
	// Zero means time.Now().
	Now time.Time

	// RunID is printed in the header when set.
	RunID string

	TopProducts           int
	TopCustomers          int
	LowPerformerThreshold int

	// Currency symbol. Empty means DefaultCurrency.
	Currency string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TopProducts:           analytics.DefaultTopN,
		TopCustomers:          analytics.DefaultTopN,
		LowPerformerThreshold: analytics.DefaultLowPerformerThreshold,
		Currency:              DefaultCurrency,
	}
}

// renderer carries the output writer and formatting state.
type renderer struct {
	w       *bufio.Writer
	printer *message.Printer
	opts    Options
}

// WriteFile renders the report to filePath, creating parent directories.
func WriteFile(filePath string, valid []types.Transaction, enriched []types.EnrichedTransaction, opts Options) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := Generate(file, valid, enriched, opts); err != nil {
		return err
	}
	return file.Close()
}

// Generate renders the report to w.
//
// PARAMETERS:
//   - w: Destination.
//   - valid: Validated and filtered transactions.
//   - enriched: The enriched form of valid.
//   - opts: Rendering options. Zero-valued counts fall back to defaults.
//
// RETURNS:
//   - An error if writing fails.
func Generate(w io.Writer, valid []types.Transaction, enriched []types.EnrichedTransaction, opts Options) error {
	opts = withDefaults(opts)
	r := &renderer{
		w:       bufio.NewWriter(w),
		printer: message.NewPrinter(language.English),
		opts:    opts,
	}

	r.header(len(valid))
	r.overallSummary(valid)
	r.regions(valid)
	r.topProducts(valid)
	r.topCustomers(valid)
	r.dailyTrend(valid)
	r.lowPerformers(valid)
	r.enrichmentSummary(enriched)

	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func withDefaults(opts Options) Options {
	defaults := DefaultOptions()
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = defaults.TopProducts
	}
	if opts.TopCustomers <= 0 {
		opts.TopCustomers = defaults.TopCustomers
	}
	if opts.LowPerformerThreshold <= 0 {
		opts.LowPerformerThreshold = defaults.LowPerformerThreshold
	}
	if opts.Currency == "" {
		opts.Currency = defaults.Currency
	}
	return opts
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func (r *renderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) section(title string) {
	r.printf("%s\n%s\n", title, lightRule)
}

// money formats d with the currency symbol, grouping and 2 decimals.
func (r *renderer) money(d decimal.Decimal) string {
	return r.opts.Currency + r.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// =============================================================================
// SECTIONS
// =============================================================================

func (r *renderer) header(records int) {
	r.printf("SALES ANALYTICS REPORT\n%s\n", heavyRule)
	r.printf("Generated: %s\n", r.opts.Now.Format(timestampLayout))
	if r.opts.RunID != "" {
		r.printf("Run ID: %s\n", r.opts.RunID)
	}
	r.printf("Records Processed: %d\n%s\n\n", records, heavyRule)
}

func (r *renderer) overallSummary(valid []types.Transaction) {
	overview := analytics.Summarize(valid)

	dateRange := "n/a"
	if overview.TransactionCount > 0 {
		dateRange = overview.FirstDate + " to " + overview.LastDate
	}

	r.section("OVERALL SUMMARY")
	r.printf("Total Revenue      : %s\n", r.money(overview.TotalRevenue))
	r.printf("Total Transactions : %d\n", overview.TransactionCount)
	r.printf("Average Order Value: %s\n", r.money(overview.AvgOrderValue))
	r.printf("Date Range         : %s\n\n", dateRange)
}

func (r *renderer) regions(valid []types.Transaction) {
	r.section("REGION-WISE PERFORMANCE")
	r.printf("%-10s%15s%15s%10s\n", "Region", "Sales", "% of Total", "Txns")
	for _, region := range analytics.RegionSummary(valid) {
		r.printf("%-10s%15s%14s%%%10d\n",
			region.Region,
			r.money(region.TotalSales),
			region.Percentage.StringFixed(2),
			region.TransactionCount)
	}
	r.printf("\n")
}

func (r *renderer) topProducts(valid []types.Transaction) {
	r.section(fmt.Sprintf("TOP %d PRODUCTS", r.opts.TopProducts))
	r.printf("%-5s%-20s%6s%12s\n", "Rank", "Product", "Qty", "Revenue")
	for i, product := range analytics.TopProducts(valid, r.opts.TopProducts) {
		r.printf("%-5d%-20s%6d%12s\n", i+1, product.Name, product.TotalQuantity, r.money(product.TotalRevenue))
	}
	r.printf("\n")
}

func (r *renderer) topCustomers(valid []types.Transaction) {
	customers := analytics.CustomerAnalysis(valid)
	if len(customers) > r.opts.TopCustomers {
		customers = customers[:r.opts.TopCustomers]
	}

	r.section(fmt.Sprintf("TOP %d CUSTOMERS", r.opts.TopCustomers))
	r.printf("%-5s%-10s%12s%10s\n", "Rank", "Customer", "Spent", "Orders")
	for i, customer := range customers {
		r.printf("%-5d%-10s%12s%10d\n", i+1, customer.CustomerID, r.money(customer.TotalSpent), customer.PurchaseCount)
	}
	r.printf("\n")
}

func (r *renderer) dailyTrend(valid []types.Transaction) {
	r.section("DAILY SALES TREND")
	r.printf("%-12s%12s%8s%12s\n", "Date", "Revenue", "Txns", "Customers")
	for _, day := range analytics.DailyTrend(valid) {
		r.printf("%-12s%12s%8d%12d\n", day.Date, r.money(day.Revenue), day.TransactionCount, day.UniqueCustomers)
	}

	if peak, err := analytics.PeakDay(valid); err == nil {
		r.printf("Peak Sales Day: %s (%s, %d transactions)\n", peak.Date, r.money(peak.Revenue), peak.TransactionCount)
	}
	r.printf("\n")
}

func (r *renderer) lowPerformers(valid []types.Transaction) {
	r.section("PRODUCT PERFORMANCE ANALYSIS")

	low := analytics.LowPerformers(valid, r.opts.LowPerformerThreshold)
	if len(low) == 0 {
		r.printf("No low-performing products found.\n\n")
		return
	}

	r.printf("Low Performing Products:\n")
	for _, product := range low {
		r.printf("- %s | Qty: %d | Revenue: %s\n", product.Name, product.TotalQuantity, r.money(product.TotalRevenue))
	}
	r.printf("\n")
}

func (r *renderer) enrichmentSummary(enriched []types.EnrichedTransaction) {
	stats := enrichment.Summarize(enriched)

	r.section("API ENRICHMENT SUMMARY")
	r.printf("Total Enriched Records : %d\n", stats.Total)
	r.printf("Successfully Enriched  : %d\n", stats.Matched)
	r.printf("Failed Enrichment      : %d\n", stats.Unmatched)
	r.printf("Success Rate           : %.2f%%\n\n", stats.SuccessRate)

	if len(stats.UnmatchedProducts) == 0 {
		return
	}
	r.printf("Products Not Enriched:\n")
	for _, product := range stats.UnmatchedProducts {
		r.printf("- %s (%s)\n", product.ProductID, product.ProductName)
	}
}
