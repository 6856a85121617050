// =============================================================================
// Sales Analytics - Aggregation Module
// =============================================================================
//
// This module computes the business metrics shown in the sales report.
// Every function is a pure function of its input slice.
//
// MONEY HANDLING:
//   - Amounts are decimal.Decimal and are summed at full precision
//   - Values are rounded to 2 decimal places only when returned
//   - Sort keys use the unrounded sums
//
// ORDERING:
//   - Groups are collected in first-appearance order (map + order slice)
//   - Sorting is stable, so ties keep first-appearance order
//
// =============================================================================

package analytics

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// MoneyPlaces is the number of decimal places of returned money values.
const MoneyPlaces = 2

// Defaults used when callers do not supply their own parameters.
const (
	DefaultTopN                  = 5
	DefaultLowPerformerThreshold = 10
)

// ErrNoData is returned by aggregations that have no meaningful value for an
// empty input, such as the peak sales day.
var ErrNoData = errors.New("no data")

var hundred = decimal.NewFromInt(100)

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// divide returns num/den, or zero when den is zero.
func divide(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// =============================================================================
// REVENUE
// =============================================================================

// TotalRevenue returns the sum of line amounts rounded to 2 places.
func TotalRevenue(records []types.Transaction) decimal.Decimal {
	return round(sumAmounts(records))
}

func sumAmounts(records []types.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range records {
		total = total.Add(txn.LineAmount())
	}
	return total
}

// Overview holds the headline figures of the report.
type Overview struct {
	TotalRevenue     decimal.Decimal
	TransactionCount int
	AvgOrderValue    decimal.Decimal

	// FirstDate and LastDate are empty when there are no records.
	FirstDate string
	LastDate  string
}

// Summarize computes the overall summary. AvgOrderValue is zero when there
// are no records.
func Summarize(records []types.Transaction) Overview {
	total := sumAmounts(records)
	overview := Overview{
		TotalRevenue:     round(total),
		TransactionCount: len(records),
		AvgOrderValue:    round(divide(total, decimal.NewFromInt(int64(len(records))))),
	}

	for i, txn := range records {
		if i == 0 || txn.Date < overview.FirstDate {
			overview.FirstDate = txn.Date
		}
		if i == 0 || txn.Date > overview.LastDate {
			overview.LastDate = txn.Date
		}
	}

	return overview
}

// =============================================================================
// REGIONS
// =============================================================================

// RegionStats is one row of the region summary.
type RegionStats struct {
	Region           string
	TotalSales       decimal.Decimal
	TransactionCount int

	// Percentage of overall sales, 0..100, rounded to 2 places.
	Percentage decimal.Decimal
}

// RegionSummary groups sales by region, sorted by total sales descending.
// Percentages are 0 when total sales are 0.
func RegionSummary(records []types.Transaction) []RegionStats {
	type bucket struct {
		sales decimal.Decimal
		count int
	}

	groups := make(map[string]*bucket)
	var groupOrder []string
	grandTotal := decimal.Zero

	for _, txn := range records {
		amount := txn.LineAmount()
		grandTotal = grandTotal.Add(amount)

		b, ok := groups[txn.Region]
		if !ok {
			b = &bucket{sales: decimal.Zero}
			groups[txn.Region] = b
			groupOrder = append(groupOrder, txn.Region)
		}
		b.sales = b.sales.Add(amount)
		b.count++
	}

	sort.SliceStable(groupOrder, func(i, j int) bool {
		return groups[groupOrder[i]].sales.GreaterThan(groups[groupOrder[j]].sales)
	})

	stats := make([]RegionStats, 0, len(groupOrder))
	for _, region := range groupOrder {
		b := groups[region]
		stats = append(stats, RegionStats{
			Region:           region,
			TotalSales:       round(b.sales),
			TransactionCount: b.count,
			Percentage:       round(divide(b.sales, grandTotal).Mul(hundred)),
		})
	}

	return stats
}
