package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// DailyStats is one row of the daily trend.
type DailyStats struct {
	Date             string
	Revenue          decimal.Decimal
	TransactionCount int
	UniqueCustomers  int
}

// DayStats describes the peak sales day.
type DayStats struct {
	Date             string
	Revenue          decimal.Decimal
	TransactionCount int
}

type dayBucket struct {
	revenue   decimal.Decimal
	count     int
	customers map[string]struct{}
}

// groupByDate returns per-date buckets and the dates sorted ascending.
// Dates are compared as text.
func groupByDate(records []types.Transaction) (map[string]*dayBucket, []string) {
	days := make(map[string]*dayBucket)
	var dates []string

	for _, txn := range records {
		b, ok := days[txn.Date]
		if !ok {
			b = &dayBucket{revenue: decimal.Zero, customers: make(map[string]struct{})}
			days[txn.Date] = b
			dates = append(dates, txn.Date)
		}
		b.revenue = b.revenue.Add(txn.LineAmount())
		b.count++
		b.customers[txn.CustomerID] = struct{}{}
	}

	sort.Strings(dates)
	return days, dates
}

// DailyTrend returns revenue, transaction count and distinct customers per
// date, in ascending date order.
func DailyTrend(records []types.Transaction) []DailyStats {
	days, dates := groupByDate(records)

	trend := make([]DailyStats, 0, len(dates))
	for _, date := range dates {
		b := days[date]
		trend = append(trend, DailyStats{
			Date:             date,
			Revenue:          round(b.revenue),
			TransactionCount: b.count,
			UniqueCustomers:  len(b.customers),
		})
	}
	return trend
}

// PeakDay returns the date with the highest revenue. When several dates share
// the highest revenue, the earliest date wins. It returns ErrNoData for an
// empty input.
func PeakDay(records []types.Transaction) (DayStats, error) {
	days, dates := groupByDate(records)
	if len(dates) == 0 {
		return DayStats{}, ErrNoData
	}

	peak := dates[0]
	for _, date := range dates[1:] {
		if days[date].revenue.GreaterThan(days[peak].revenue) {
			peak = date
		}
	}

	return DayStats{
		Date:             peak,
		Revenue:          round(days[peak].revenue),
		TransactionCount: days[peak].count,
	}, nil
}
