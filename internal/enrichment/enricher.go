// =============================================================================
// Sales Analytics - Enrichment Module
// =============================================================================
//
// This module attaches catalog attributes (category, brand, rating) to each
// valid transaction.
//
// LOOKUP KEY:
//   The first run of digits in ProductID, as an integer.
//   "P101" -> 101, "P5" -> 5, "PX" -> no key.
//
// GUARANTEES:
//   - Output has the same length and order as the input
//   - A record whose key is missing, unparseable or not in the mapping is
//     returned with every attribute absent and APIMatch = false
//   - Enrichment never fails the run
//
// =============================================================================

package enrichment

import (
	"regexp"
	"strconv"

	"github.com/ginjaninja78/sales-analytics/internal/catalog"
	"github.com/ginjaninja78/sales-analytics/internal/types"
)

var digitRun = regexp.MustCompile(`\d+`)

// ProductKey extracts the catalog id from a product id.
// ok is false when there are no digits or the number does not fit an int.
func ProductKey(productID string) (int, bool) {
	digits := digitRun.FindString(productID)
	if digits == "" {
		return 0, false
	}

	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Enrich returns one EnrichedTransaction per record, in order.
func Enrich(records []types.Transaction, mapping catalog.ProductMapping) []types.EnrichedTransaction {
	enriched := make([]types.EnrichedTransaction, len(records))
	for i, txn := range records {
		enriched[i] = EnrichOne(txn, mapping)
	}
	return enriched
}

// EnrichOne enriches a single record.
func EnrichOne(txn types.Transaction, mapping catalog.ProductMapping) types.EnrichedTransaction {
	out := types.EnrichedTransaction{Transaction: txn}

	id, ok := ProductKey(txn.ProductID)
	if !ok {
		return out
	}

	info, found := mapping.Lookup(id)
	if !found {
		return out
	}

	out.APICategory = info.Category
	out.APIBrand = info.Brand
	out.APIRating = info.Rating
	out.APIMatch = true
	return out
}
