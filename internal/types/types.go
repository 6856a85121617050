// =============================================================================
// Sales Analytics - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser   (produces Transaction values)
//   - validation  (checks and filters them)
//   - analytics   (aggregates them)
//   - enrichment  (wraps them as EnrichedTransaction)
//   - export, xlsxexport, report (serialize them)
//
// =============================================================================

package types

import "github.com/shopspring/decimal"

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// Transaction represents a single parsed sales line.
type Transaction struct {
	// TransactionID is expected to start with "T" (checked by validation).
	TransactionID string

	// Date is kept as the raw text from the input file (e.g. "2024-12-01").
	// Daily grouping and ordering compare it lexicographically.
	Date string

	// ProductID is expected to start with "P". Its first digit run is the
	// catalog lookup key.
	ProductID string

	// ProductName has had any commas removed by the parser.
	ProductName string

	Quantity  int
	UnitPrice decimal.Decimal

	// CustomerID is expected to start with "C".
	CustomerID string

	Region string
}

// LineAmount returns Quantity * UnitPrice.
// It is computed on every call and never stored.
func (t Transaction) LineAmount() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// =============================================================================
// ENRICHMENT TYPES
// =============================================================================

// EnrichedTransaction is a Transaction plus the catalog attributes found for
// its product. A nil pointer means the attribute is absent.
type EnrichedTransaction struct {
	Transaction

	APICategory *string
	APIBrand    *string
	APIRating   *float64

	// APIMatch is true only when the product id resolved to a catalog entry.
	APIMatch bool
}
