package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// ProductStats aggregates all sales of one product name.
type ProductStats struct {
	Name          string
	TotalQuantity int
	TotalRevenue  decimal.Decimal
}

// aggregateProducts groups records by product name in first-appearance
// order. Revenue is left unrounded.
func aggregateProducts(records []types.Transaction) []ProductStats {
	index := make(map[string]int)
	var products []ProductStats

	for _, txn := range records {
		i, ok := index[txn.ProductName]
		if !ok {
			i = len(products)
			index[txn.ProductName] = i
			products = append(products, ProductStats{Name: txn.ProductName, TotalRevenue: decimal.Zero})
		}
		products[i].TotalQuantity += txn.Quantity
		products[i].TotalRevenue = products[i].TotalRevenue.Add(txn.LineAmount())
	}

	return products
}

// TopProducts returns the n products with the highest total quantity,
// quantity descending. n <= 0 yields an empty slice.
func TopProducts(records []types.Transaction, n int) []ProductStats {
	if n <= 0 {
		return []ProductStats{}
	}

	products := aggregateProducts(records)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].TotalQuantity > products[j].TotalQuantity
	})

	if len(products) > n {
		products = products[:n]
	}
	return roundProducts(products)
}

// LowPerformers returns products whose total quantity is below threshold,
// quantity ascending.
func LowPerformers(records []types.Transaction, threshold int) []ProductStats {
	low := make([]ProductStats, 0)
	for _, p := range aggregateProducts(records) {
		if p.TotalQuantity < threshold {
			low = append(low, p)
		}
	}

	sort.SliceStable(low, func(i, j int) bool {
		return low[i].TotalQuantity < low[j].TotalQuantity
	})
	return roundProducts(low)
}

func roundProducts(products []ProductStats) []ProductStats {
	for i := range products {
		products[i].TotalRevenue = round(products[i].TotalRevenue)
	}
	return products
}
