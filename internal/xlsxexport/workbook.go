// =============================================================================
// Sales Analytics - XLSX Workbook Export
// =============================================================================
//
// This module writes an optional Excel workbook next to the text report, for
// users who want to pivot or chart the results.
//
// SHEETS:
//   | Sheet       | Contents                                          |
//   |-------------|---------------------------------------------------|
//   | Enriched    | One row per enriched transaction (same columns as |
//   |             | the enriched text file)                           |
//   | Regions     | Region summary                                    |
//   | TopProducts | Top products by quantity                          |
//   | Customers   | Customer analysis                                 |
//   | DailyTrend  | Daily sales trend                                 |
//
// Money columns are written as numbers so spreadsheet formulas work on them.
// The header row of every sheet is bold.
//
// =============================================================================

package xlsxexport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/export"
	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// Sheet names.
const (
	SheetEnriched    = "Enriched"
	SheetRegions     = "Regions"
	SheetTopProducts = "TopProducts"
	SheetCustomers   = "Customers"
	SheetDailyTrend  = "DailyTrend"
)

// Workbook holds everything written to the workbook.
type Workbook struct {
	Enriched  []types.EnrichedTransaction
	Regions   []analytics.RegionStats
	Products  []analytics.ProductStats
	Customers []analytics.CustomerStats
	Daily     []analytics.DailyStats
}

// sheet is a header plus rows of cell values.
type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

// Write creates the workbook at filePath, replacing any existing file.
//
// PARAMETERS:
//   - filePath: Destination .xlsx path. Parent directories are created.
//   - wb: The data to write.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(filePath string, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []sheet{
		enrichedSheet(wb.Enriched),
		regionSheet(wb.Regions),
		productSheet(wb.Products),
		customerSheet(wb.Customers),
		dailySheet(wb.Daily),
	}

	// A new file starts with a default sheet; rename it to the first one.
	if err := f.SetSheetName(f.GetSheetName(0), sheets[0].name); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}

	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
			}
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return fmt.Errorf("failed to write header of sheet %s: %w", s.name, err)
	}
	if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of sheet %s: %w", s.name, err)
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %s: %w", i+2, s.name, err)
		}
	}
	return nil
}

// =============================================================================
// SHEET BUILDERS
// =============================================================================

func headerCells(names ...string) []interface{} {
	cells := make([]interface{}, len(names))
	for i, name := range names {
		cells[i] = name
	}
	return cells
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func enrichedSheet(records []types.EnrichedTransaction) sheet {
	s := sheet{name: SheetEnriched, header: headerCells(export.Header...)}
	for _, rec := range records {
		var rating interface{} = ""
		if rec.APIRating != nil {
			rating = *rec.APIRating
		}
		row := export.FormatRow(rec)
		s.rows = append(s.rows, []interface{}{
			rec.TransactionID,
			rec.Date,
			rec.ProductID,
			rec.ProductName,
			rec.Quantity,
			number(rec.UnitPrice),
			rec.CustomerID,
			rec.Region,
			row[8],
			row[9],
			rating,
			row[11],
		})
	}
	return s
}

func regionSheet(regions []analytics.RegionStats) sheet {
	s := sheet{name: SheetRegions, header: headerCells("Region", "Sales", "Percentage", "Transactions")}
	for _, r := range regions {
		s.rows = append(s.rows, []interface{}{r.Region, number(r.TotalSales), number(r.Percentage), r.TransactionCount})
	}
	return s
}

func productSheet(products []analytics.ProductStats) sheet {
	s := sheet{name: SheetTopProducts, header: headerCells("Rank", "Product", "Quantity", "Revenue")}
	for i, p := range products {
		s.rows = append(s.rows, []interface{}{i + 1, p.Name, p.TotalQuantity, number(p.TotalRevenue)})
	}
	return s
}

func customerSheet(customers []analytics.CustomerStats) sheet {
	s := sheet{name: SheetCustomers, header: headerCells("Customer", "Total Spent", "Orders", "Avg Order Value", "Products")}
	for _, c := range customers {
		s.rows = append(s.rows, []interface{}{
			c.CustomerID,
			number(c.TotalSpent),
			c.PurchaseCount,
			number(c.AvgOrderValue),
			strings.Join(c.ProductsBought, ", "),
		})
	}
	return s
}

func dailySheet(days []analytics.DailyStats) sheet {
	s := sheet{name: SheetDailyTrend, header: headerCells("Date", "Revenue", "Transactions", "Unique Customers")}
	for _, d := range days {
		s.rows = append(s.rows, []interface{}{d.Date, number(d.Revenue), d.TransactionCount, d.UniqueCustomers})
	}
	return s
}

// =============================================================================
// READER
// =============================================================================

// ReadSheet returns all rows of a sheet as text, header included.
// It is used to inspect workbooks written by Write.
func ReadSheet(filePath, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	return rows, nil
}
