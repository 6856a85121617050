package enrichment

import "github.com/ginjaninja78/sales-analytics/internal/types"

// UnmatchedProduct identifies a product that could not be enriched.
type UnmatchedProduct struct {
	ProductID   string
	ProductName string
}

// Stats summarizes an enrichment pass.
type Stats struct {
	Total     int
	Matched   int
	Unmatched int

	// SuccessRate is Matched/Total*100, or 0 for an empty input.
	SuccessRate float64

	// UnmatchedProducts lists each distinct unmatched product id once,
	// in first-appearance order.
	UnmatchedProducts []UnmatchedProduct
}

// Summarize computes enrichment statistics.
func Summarize(enriched []types.EnrichedTransaction) Stats {
	stats := Stats{Total: len(enriched)}
	seen := make(map[string]struct{})

	for _, e := range enriched {
		if e.APIMatch {
			stats.Matched++
			continue
		}
		stats.Unmatched++
		if _, ok := seen[e.ProductID]; ok {
			continue
		}
		seen[e.ProductID] = struct{}{}
		stats.UnmatchedProducts = append(stats.UnmatchedProducts, UnmatchedProduct{
			ProductID:   e.ProductID,
			ProductName: e.ProductName,
		})
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Matched) / float64(stats.Total) * 100
	}
	return stats
}
