package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// CustomerStats summarizes the purchases of one customer.
type CustomerStats struct {
	CustomerID    string
	TotalSpent    decimal.Decimal
	PurchaseCount int
	AvgOrderValue decimal.Decimal

	// ProductsBought is the sorted set of distinct product names.
	ProductsBought []string
}

// CustomerAnalysis groups records by customer, sorted by total spent
// descending.
func CustomerAnalysis(records []types.Transaction) []CustomerStats {
	type bucket struct {
		spent    decimal.Decimal
		count    int
		products map[string]struct{}
	}

	groups := make(map[string]*bucket)
	var groupOrder []string

	for _, txn := range records {
		b, ok := groups[txn.CustomerID]
		if !ok {
			b = &bucket{spent: decimal.Zero, products: make(map[string]struct{})}
			groups[txn.CustomerID] = b
			groupOrder = append(groupOrder, txn.CustomerID)
		}
		b.spent = b.spent.Add(txn.LineAmount())
		b.count++
		b.products[txn.ProductName] = struct{}{}
	}

	sort.SliceStable(groupOrder, func(i, j int) bool {
		return groups[groupOrder[i]].spent.GreaterThan(groups[groupOrder[j]].spent)
	})

	stats := make([]CustomerStats, 0, len(groupOrder))
	for _, customer := range groupOrder {
		b := groups[customer]

		products := make([]string, 0, len(b.products))
		for name := range b.products {
			products = append(products, name)
		}
		sort.Strings(products)

		stats = append(stats, CustomerStats{
			CustomerID:     customer,
			TotalSpent:     round(b.spent),
			PurchaseCount:  b.count,
			AvgOrderValue:  round(divide(b.spent, decimal.NewFromInt(int64(b.count)))),
			ProductsBought: products,
		})
	}

	return stats
}
