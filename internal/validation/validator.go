// =============================================================================
// Sales Analytics - Validation and Filter Engine
// =============================================================================
//
// This module splits parsed transactions into valid records and counted
// rejections, then applies the optional user filters to the valid ones.
//
// VALIDATION RULES (a record is invalid if ANY rule fails):
//   - quantity > 0
//   - unit_price > 0
//   - transaction_id starts with "T"
//   - product_id starts with "P"
//   - customer_id starts with "C"
//   - region is non-empty
//
// FILTERS (applied only to records that passed validation):
//   - Region:    exact match on region
//   - MinAmount: line amount must not be below it
//   - MaxAmount: line amount must not be above it
//
// ERROR HANDLING:
//   - Invalid records are counted, never fatal
//   - The first failed rule of each invalid record is kept as a
//     ValidationError for the reject log
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Rule names reported in ValidationError.Rule.
const (
	RulePositiveQuantity  = "positive_quantity"
	RulePositiveUnitPrice = "positive_unit_price"
	RuleTransactionPrefix = "transaction_id_prefix"
	RuleProductPrefix     = "product_id_prefix"
	RuleCustomerPrefix    = "customer_id_prefix"
	RuleRegionRequired    = "region_required"
)

// ValidationError describes why a single record was rejected.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// TransactionID of the rejected record (may itself be the bad value).
	TransactionID string

	// RecordIndex is the 0-based position of the record in the input slice.
	RecordIndex int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("Record %d (%s), Field '%s': %s (value: '%s')",
		e.RecordIndex,
		e.TransactionID,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// FILTER OPTIONS AND RESULT
// =============================================================================

// FilterOptions holds the optional user filters. A nil field means the
// filter is not applied.
type FilterOptions struct {
	Region    *string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// FilterSummary counts how the input was partitioned.
//
// TotalInput == Invalid + FilteredByRegion + FilteredByAmount + FinalCount.
type FilterSummary struct {
	TotalInput       int
	Invalid          int
	FilteredByRegion int
	FilteredByAmount int
	FinalCount       int
}

// Result is returned by Validate.
type Result struct {
	// Valid holds the records that passed validation and every filter,
	// in input order.
	Valid []types.Transaction

	InvalidCount int

	Summary FilterSummary

	// Errors contains one entry per invalid record.
	Errors []*ValidationError
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validate checks every record against the validation rules and applies the
// filters in opts to the records that pass.
//
// PARAMETERS:
//   - records: Parsed transactions, in input order.
//   - opts: Optional filters. The zero value applies none.
//
// RETURNS:
//   - A Result whose Summary partitions the input exactly.
func Validate(records []types.Transaction, opts FilterOptions) *Result {
	result := &Result{
		Valid: make([]types.Transaction, 0, len(records)),
	}
	result.Summary.TotalInput = len(records)

	for i, txn := range records {
		if verr := CheckRecord(txn); verr != nil {
			verr.RecordIndex = i
			result.InvalidCount++
			result.Errors = append(result.Errors, verr)
			continue
		}

		if opts.Region != nil && txn.Region != *opts.Region {
			result.Summary.FilteredByRegion++
			continue
		}

		amount := txn.LineAmount()
		if opts.MinAmount != nil && amount.LessThan(*opts.MinAmount) {
			result.Summary.FilteredByAmount++
			continue
		}
		if opts.MaxAmount != nil && amount.GreaterThan(*opts.MaxAmount) {
			result.Summary.FilteredByAmount++
			continue
		}

		result.Valid = append(result.Valid, txn)
	}

	result.Summary.Invalid = result.InvalidCount
	result.Summary.FinalCount = len(result.Valid)

	return result
}

// CheckRecord applies the validation rules to one record.
// It returns nil if the record is valid, otherwise the first failed rule.
func CheckRecord(txn types.Transaction) *ValidationError {
	fail := func(field, value, rule, message string) *ValidationError {
		return &ValidationError{
			Field:         field,
			Value:         value,
			Rule:          rule,
			Message:       message,
			TransactionID: txn.TransactionID,
		}
	}

	switch {
	case txn.Quantity <= 0:
		return fail("Quantity", fmt.Sprint(txn.Quantity), RulePositiveQuantity, "quantity must be greater than zero")
	case !txn.UnitPrice.IsPositive():
		return fail("UnitPrice", txn.UnitPrice.String(), RulePositiveUnitPrice, "unit price must be greater than zero")
	case !strings.HasPrefix(txn.TransactionID, "T"):
		return fail("TransactionID", txn.TransactionID, RuleTransactionPrefix, "transaction id must start with 'T'")
	case !strings.HasPrefix(txn.ProductID, "P"):
		return fail("ProductID", txn.ProductID, RuleProductPrefix, "product id must start with 'P'")
	case !strings.HasPrefix(txn.CustomerID, "C"):
		return fail("CustomerID", txn.CustomerID, RuleCustomerPrefix, "customer id must start with 'C'")
	case txn.Region == "":
		return fail("Region", txn.Region, RuleRegionRequired, "region is required")
	}

	return nil
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
