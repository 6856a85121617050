package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-analytics/internal/catalog"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/types"
)

func rec(id, date, product, name string, qty int, price, customer, region string) types.Transaction {
	return types.Transaction{
		TransactionID: id, Date: date, ProductID: product, ProductName: name,
		Quantity: qty, UnitPrice: decimal.RequireFromString(price), CustomerID: customer, Region: region,
	}
}

func fixture() ([]types.Transaction, []types.EnrichedTransaction) {
	valid := []types.Transaction{
		rec("T1", "2024-12-02", "P101", "Laptop", 1, "2495.00", "C1", "North"),
		rec("T2", "2024-12-01", "P102", "Mouse", 12, "19.99", "C2", "South"),
		rec("T3", "2024-12-01", "P999", "Keyboard", 3, "45.50", "C1", "South"),
	}
	id101, id102 := 101, 102
	category := "laptops"
	mapping := catalog.BuildProductMapping([]catalog.Product{{ID: &id101, Category: &category}, {ID: &id102}})
	return valid, enrichment.Enrich(valid, mapping)
}

func render(t *testing.T, valid []types.Transaction, enriched []types.EnrichedTransaction) string {
	t.Helper()
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Now = time.Date(2024, 12, 31, 9, 30, 0, 0, time.UTC)
	opts.RunID = "run-123"
	require.NoError(t, Generate(&buf, valid, enriched, opts))
	return buf.String()
}

func TestGenerate_SectionsInOrder(t *testing.T) {
	valid, enriched := fixture()
	out := render(t, valid, enriched)

	sections := []string{
		"SALES ANALYTICS REPORT",
		"OVERALL SUMMARY",
		"REGION-WISE PERFORMANCE",
		"TOP 5 PRODUCTS",
		"TOP 5 CUSTOMERS",
		"DAILY SALES TREND",
		"PRODUCT PERFORMANCE ANALYSIS",
		"API ENRICHMENT SUMMARY",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(out, section)
		require.GreaterOrEqual(t, idx, 0, section)
		assert.Greater(t, idx, last, section)
		last = idx
	}
}

func TestGenerate_Figures(t *testing.T) {
	valid, enriched := fixture()
	out := render(t, valid, enriched)

	assert.Contains(t, out, "Generated: 2024-12-31 09:30:00")
	assert.Contains(t, out, "Run ID: run-123")
	assert.Contains(t, out, "Records Processed: 3")
	assert.Contains(t, out, "Total Revenue      : ₹2,871.38")
	assert.Contains(t, out, "Average Order Value: ₹957.13")
	assert.Contains(t, out, "Date Range         : 2024-12-01 to 2024-12-02")
	assert.Contains(t, out, "Peak Sales Day: 2024-12-02")
	assert.Contains(t, out, "- Laptop | Qty: 1 | Revenue: ₹2,495.00")
	assert.Contains(t, out, "Successfully Enriched  : 2")
	assert.Contains(t, out, "Success Rate           : 66.67%")
	assert.Contains(t, out, "- P999 (Keyboard)")
}

func TestGenerate_Empty(t *testing.T) {
	out := render(t, nil, nil)

	assert.Contains(t, out, "Records Processed: 0")
	assert.Contains(t, out, "Total Revenue      : ₹0.00")
	assert.Contains(t, out, "Date Range         : n/a")
	assert.Contains(t, out, "No low-performing products found.")
	assert.Contains(t, out, "Success Rate           : 0.00%")
	assert.NotContains(t, out, "Peak Sales Day")
	assert.NotContains(t, out, "Products Not Enriched")
}

func TestWriteFile_CreatesDirectory(t *testing.T) {
	valid, enriched := fixture()
	path := filepath.Join(t.TempDir(), "output", "sales_report.txt")

	require.NoError(t, WriteFile(path, valid, enriched, Options{}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "TOP 5 PRODUCTS")
}
