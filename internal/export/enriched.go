// =============================================================================
// Sales Analytics - Enriched Data Export Module
// =============================================================================
//
// This module writes enriched transactions to a pipe-delimited file and can
// read such a file back.
//
// FILE FORMAT:
//   Header:
//     TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region|API_Category|API_Brand|API_Rating|API_Match
//   Rows:
//     - UnitPrice with 2 decimal places
//     - Absent API_Category, API_Brand, API_Rating written as ""
//     - "|" in catalog text written as "/", line breaks as spaces
//     - API_Match written as True or False
//
// =============================================================================

package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// Delimiter separates fields in the enriched file.
const Delimiter = "|"

// Header lists the enriched file columns in order.
var Header = []string{
	"TransactionID", "Date", "ProductID", "ProductName",
	"Quantity", "UnitPrice", "CustomerID", "Region",
	"API_Category", "API_Brand", "API_Rating", "API_Match",
}

// ErrMalformedRow is returned by ReadEnriched for rows it cannot decode.
var ErrMalformedRow = errors.New("malformed enriched row")

// =============================================================================
// WRITER
// =============================================================================

// WriteEnriched writes the header and one row per record to w.
func WriteEnriched(w io.Writer, records []types.EnrichedTransaction) error {
	writer := bufio.NewWriter(w)

	if _, err := writer.WriteString(strings.Join(Header, Delimiter) + "\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		if _, err := writer.WriteString(strings.Join(FormatRow(rec), Delimiter) + "\n"); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return writer.Flush()
}

// WriteEnrichedFile writes records to filePath, creating parent directories.
func WriteEnrichedFile(filePath string, records []types.EnrichedTransaction) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create enriched file: %w", err)
	}
	defer file.Close()

	if err := WriteEnriched(file, records); err != nil {
		return err
	}
	return file.Close()
}

// FormatRow renders one record as the enriched file's field values.
func FormatRow(rec types.EnrichedTransaction) []string {
	return []string{
		rec.TransactionID,
		rec.Date,
		rec.ProductID,
		rec.ProductName,
		strconv.Itoa(rec.Quantity),
		rec.UnitPrice.StringFixed(2),
		rec.CustomerID,
		rec.Region,
		optionalString(rec.APICategory),
		optionalString(rec.APIBrand),
		optionalFloat(rec.APIRating),
		FormatMatch(rec.APIMatch),
	}
}

// FormatMatch renders the API_Match column.
func FormatMatch(match bool) string {
	if match {
		return "True"
	}
	return "False"
}

// fieldSanitizer keeps catalog text on one row with the right field count.
var fieldSanitizer = strings.NewReplacer(Delimiter, "/", "\r\n", " ", "\n", " ", "\r", " ")

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return fieldSanitizer.Replace(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// =============================================================================
// READER
// =============================================================================

// ReadEnrichedFile reads a file produced by WriteEnrichedFile.
func ReadEnrichedFile(filePath string) ([]types.EnrichedTransaction, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open enriched file: %w", err)
	}
	defer file.Close()

	return ReadEnriched(file)
}

// ReadEnriched decodes an enriched file. The first line must be the header.
func ReadEnriched(r io.Reader) ([]types.EnrichedTransaction, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, nil
	}
	if strings.TrimSpace(scanner.Text()) != strings.Join(Header, Delimiter) {
		return nil, fmt.Errorf("%w: unexpected header", ErrMalformedRow)
	}

	var records []types.EnrichedTransaction
	lineNumber := 1
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := parseRow(strings.Split(line, Delimiter))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read enriched file: %w", err)
	}

	return records, nil
}

func parseRow(fields []string) (types.EnrichedTransaction, error) {
	var rec types.EnrichedTransaction

	if len(fields) != len(Header) {
		return rec, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedRow, len(Header), len(fields))
	}

	quantity, err := strconv.Atoi(fields[4])
	if err != nil {
		return rec, fmt.Errorf("%w: quantity: %w", ErrMalformedRow, err)
	}
	unitPrice, err := decimal.NewFromString(fields[5])
	if err != nil {
		return rec, fmt.Errorf("%w: unit price: %w", ErrMalformedRow, err)
	}
	match, err := strconv.ParseBool(fields[11])
	if err != nil {
		return rec, fmt.Errorf("%w: api match: %w", ErrMalformedRow, err)
	}

	rec.Transaction = types.Transaction{
		TransactionID: fields[0],
		Date:          fields[1],
		ProductID:     fields[2],
		ProductName:   fields[3],
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		CustomerID:    fields[6],
		Region:        fields[7],
	}
	rec.APIMatch = match

	if fields[8] != "" {
		rec.APICategory = &fields[8]
	}
	if fields[9] != "" {
		rec.APIBrand = &fields[9]
	}
	if fields[10] != "" {
		rating, err := strconv.ParseFloat(fields[10], 64)
		if err != nil {
			return rec, fmt.Errorf("%w: api rating: %w", ErrMalformedRow, err)
		}
		rec.APIRating = &rating
	}

	return rec, nil
}
