// =============================================================================
// Sales Analytics - Transaction Parser Module
// =============================================================================
//
// This module turns raw pipe-delimited lines into Transaction values.
//
// LINE FORMAT:
//   TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
//
// RULES:
//   - Exactly 8 fields are required; any other count skips the line.
//   - Commas are removed from ProductName.
//   - Commas are removed from Quantity and UnitPrice before conversion
//     ("1,200" becomes 1200).
//   - Quantity must convert to an integer and UnitPrice to a decimal,
//     otherwise the line is skipped.
//
// Every line produces a LineOutcome, so callers can count and report
// skipped lines without guessing.
//
// =============================================================================

package csvparser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// FieldCount is the number of pipe-separated fields in a data line.
const FieldCount = 8

// Delimiter separates fields in a data line.
const Delimiter = "|"

// =============================================================================
// PARSE OUTCOMES
// =============================================================================

// Status tells whether a line produced a transaction.
type Status string

const (
	StatusKept    Status = "kept"
	StatusSkipped Status = "skipped"
)

// SkipReason explains why a line was skipped.
type SkipReason string

const (
	ReasonNone         SkipReason = ""
	ReasonFieldCount   SkipReason = "field_count"
	ReasonBadQuantity  SkipReason = "bad_quantity"
	ReasonBadUnitPrice SkipReason = "bad_unit_price"
)

// LineOutcome records what happened to a single input line.
type LineOutcome struct {
	Line   Line
	Status Status
	Reason SkipReason

	// Detail carries the conversion error text for skipped lines.
	Detail string
}

// ParseResult holds the parsed transactions and one outcome per input line.
type ParseResult struct {
	Transactions []types.Transaction
	Outcomes     []LineOutcome
}

// Kept returns the number of lines that produced a transaction.
func (r *ParseResult) Kept() int {
	return len(r.Transactions)
}

// Skipped returns the number of lines that were dropped.
func (r *ParseResult) Skipped() int {
	return len(r.Outcomes) - len(r.Transactions)
}

// SkippedBy returns the number of lines skipped for the given reason.
func (r *ParseResult) SkippedBy(reason SkipReason) int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusSkipped && outcome.Reason == reason {
			count++
		}
	}
	return count
}

// SkippedOutcomes returns only the skipped outcomes, in input order.
func (r *ParseResult) SkippedOutcomes() []LineOutcome {
	var skipped []LineOutcome
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusSkipped {
			skipped = append(skipped, outcome)
		}
	}
	return skipped
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse converts data lines into transactions.
//
// PARAMETERS:
//   - lines: Data lines as returned by ReadLines (header already removed).
//
// RETURNS:
//   - A ParseResult. Parse never fails as a whole; malformed lines are
//     reported as skipped outcomes.
func Parse(lines []Line) *ParseResult {
	result := &ParseResult{
		Transactions: make([]types.Transaction, 0, len(lines)),
		Outcomes:     make([]LineOutcome, 0, len(lines)),
	}

	for _, line := range lines {
		txn, outcome := parseLine(line)
		if outcome.Status == StatusKept {
			result.Transactions = append(result.Transactions, txn)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result
}

// ParseText is a convenience wrapper that parses raw strings.
// Line numbers are assigned from 1 in slice order.
func ParseText(rawLines []string) *ParseResult {
	lines := make([]Line, len(rawLines))
	for i, text := range rawLines {
		lines[i] = Line{Number: i + 1, Text: text}
	}
	return Parse(lines)
}

func parseLine(line Line) (types.Transaction, LineOutcome) {
	outcome := LineOutcome{Line: line, Status: StatusSkipped}

	parts := strings.Split(line.Text, Delimiter)
	if len(parts) != FieldCount {
		outcome.Reason = ReasonFieldCount
		outcome.Detail = "expected " + strconv.Itoa(FieldCount) + " fields, got " + strconv.Itoa(len(parts))
		return types.Transaction{}, outcome
	}

	quantity, err := strconv.Atoi(stripCommas(parts[4]))
	if err != nil {
		outcome.Reason = ReasonBadQuantity
		outcome.Detail = err.Error()
		return types.Transaction{}, outcome
	}

	unitPrice, err := decimal.NewFromString(stripCommas(parts[5]))
	if err != nil {
		outcome.Reason = ReasonBadUnitPrice
		outcome.Detail = err.Error()
		return types.Transaction{}, outcome
	}

	txn := types.Transaction{
		TransactionID: strings.TrimSpace(parts[0]),
		Date:          strings.TrimSpace(parts[1]),
		ProductID:     strings.TrimSpace(parts[2]),
		ProductName:   stripCommas(parts[3]),
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		CustomerID:    strings.TrimSpace(parts[6]),
		Region:        strings.TrimSpace(parts[7]),
	}

	outcome.Status = StatusKept
	return txn, outcome
}

func stripCommas(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
}
