package validation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// AvailableRegions returns the distinct non-empty regions in records, sorted.
// It is informational and does not affect validation.
func AvailableRegions(records []types.Transaction) []string {
	seen := make(map[string]struct{})
	regions := make([]string, 0)

	for _, txn := range records {
		if txn.Region == "" {
			continue
		}
		if _, ok := seen[txn.Region]; ok {
			continue
		}
		seen[txn.Region] = struct{}{}
		regions = append(regions, txn.Region)
	}

	sort.Strings(regions)
	return regions
}

// AmountRange returns the smallest and largest line amount in records.
// ok is false when records is empty.
func AmountRange(records []types.Transaction) (low, high decimal.Decimal, ok bool) {
	if len(records) == 0 {
		return decimal.Zero, decimal.Zero, false
	}

	low = records[0].LineAmount()
	high = low
	for _, txn := range records[1:] {
		amount := txn.LineAmount()
		if amount.LessThan(low) {
			low = amount
		}
		if amount.GreaterThan(high) {
			high = amount
		}
	}

	return low, high, true
}
