package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-analytics/internal/catalog"
	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/export"
	"github.com/ginjaninja78/sales-analytics/internal/xlsxexport"
)

const salesData = `TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
T001|2024-12-01|P101|Laptop|2|45,000|C001|North
T002|2024-12-01|P102|Mouse|10|500|C002|South
T003|2024-12-02|P103|Key,board|3|1,500|C001|North
T004|2024-12-02|P104|Monitor|0|12000|C003|East
T005|2024-12-03|P105|Webcam|1|3000|C004
X006|2024-12-03|P101|Laptop|1|45000|C005|West
T007|2024-12-03|P999|Cable|5|200|C002|South
`

const catalogJSON = `{"products":[
	{"id":101,"title":"Laptop","category":"laptops","brand":"Apple","rating":4.7},
	{"id":102,"title":"Mouse","category":"accessories","brand":"Logi","rating":4.2},
	{"id":103,"title":"Keyboard","category":"accessories","rating":3.9}
]}`

var fixedNow = time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, input string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.InputFile = filepath.Join(dir, "data", "sales_data.txt")
	cfg.EnrichedOutputFile = filepath.Join(dir, "data", "enriched_sales_data.txt")
	cfg.ReportFile = filepath.Join(dir, "output", "sales_report.txt")

	if input != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(cfg.InputFile), 0o755))
		require.NoError(t, os.WriteFile(cfg.InputFile, []byte(input), 0o644))
	}
	return cfg
}

func catalogServer(t *testing.T, status int, body string) *catalog.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := catalog.NewClient(catalog.Config{BaseURL: server.URL + "/products"}, server.Client())
	require.NoError(t, err)
	return client
}

func newPipeline(t *testing.T, cfg *config.Config, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithRunID("run-1")}, opts...)
	p, err := New(cfg, opts...)
	require.NoError(t, err)
	return p
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := setup(t, salesData)
	cfg.WorkbookFile = filepath.Join(filepath.Dir(cfg.ReportFile), "sales_{run_id}.xlsx")
	cfg.RejectLogFile = filepath.Join(filepath.Dir(cfg.ReportFile), "rejects.txt")

	result := newPipeline(t, cfg, WithCatalogClient(catalogServer(t, http.StatusOK, catalogJSON))).Run(context.Background())

	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, "run-1", result.RunID)

	assert.Equal(t, 7, result.Stats.LinesRead)
	assert.Equal(t, 6, result.Stats.Parsed)
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.Equal(t, 2, result.Stats.Invalid)
	assert.Equal(t, 4, result.Stats.Valid)
	assert.Equal(t, "100500.00", result.Stats.TotalRevenue.StringFixed(2))

	assert.Equal(t, 3, result.Stats.CatalogProducts)
	assert.Equal(t, 3, result.Stats.Matched)
	assert.Equal(t, 1, result.Stats.Unmatched)

	enriched, err := export.ReadEnrichedFile(result.Outputs.EnrichedFile)
	require.NoError(t, err)
	require.Len(t, enriched, 4)
	assert.Equal(t, "T001", enriched[0].TransactionID)
	assert.Equal(t, "Keyboard", enriched[2].ProductName)
	assert.True(t, enriched[0].APIMatch)
	assert.False(t, enriched[3].APIMatch)

	reportText, err := os.ReadFile(result.Outputs.ReportFile)
	require.NoError(t, err)
	assert.Contains(t, string(reportText), "Run ID: run-1")
	assert.Contains(t, string(reportText), "Records Processed: 4")
	assert.Contains(t, string(reportText), "- P999 (Cable)")

	assert.True(t, strings.HasSuffix(result.Outputs.WorkbookFile, "sales_run-1.xlsx"))
	rows, err := xlsxexport.ReadSheet(result.Outputs.WorkbookFile, xlsxexport.SheetEnriched)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	rejects, err := os.ReadFile(result.Outputs.RejectLogFile)
	require.NoError(t, err)
	assert.Contains(t, string(rejects), "Total Rejects: 3 (skipped: 1, invalid: 2)")
	assert.Contains(t, string(rejects), "Line Number:    5")
}

func TestRun_CatalogFailureStillProducesOutputs(t *testing.T) {
	cfg := setup(t, salesData)

	result := newPipeline(t, cfg, WithCatalogClient(catalogServer(t, http.StatusBadGateway, ""))).Run(context.Background())

	require.NoError(t, result.Error)
	assert.Equal(t, 0, result.Stats.CatalogProducts)
	assert.Equal(t, 0, result.Stats.Matched)
	assert.Equal(t, 4, result.Stats.Unmatched)
	assert.FileExists(t, result.Outputs.EnrichedFile)
	assert.FileExists(t, result.Outputs.ReportFile)
}

func TestRun_MalformedCatalogEntriesAreSkipped(t *testing.T) {
	cfg := setup(t, salesData)
	body := `{"products":[
		{"id":101,"title":"Laptop","category":"laptops","brand":"Apple","rating":4.7},
		{"id":"102","title":"Mouse","category":"accessories"},
		"junk"
	]}`
	var logs bytes.Buffer

	result := newPipeline(t, cfg,
		WithCatalogClient(catalogServer(t, http.StatusOK, body)),
		WithLogger(zerolog.New(&logs)),
	).Run(context.Background())

	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.Stats.CatalogProducts)
	assert.Equal(t, 1, result.Stats.Matched)
	assert.Equal(t, 3, result.Stats.Unmatched)
	assert.Contains(t, logs.String(), "Skipping malformed catalog entry")
	assert.Contains(t, logs.String(), `"run_id":"run-1"`)
}

func TestRun_RegionFilter(t *testing.T) {
	cfg := setup(t, salesData)
	cfg.Offline = true
	cfg.Filters.Region = "North"

	result := newPipeline(t, cfg).Run(context.Background())

	require.NoError(t, result.Error)
	assert.Equal(t, 2, result.Stats.Valid)
	assert.Equal(t, 2, result.Stats.FilteredByRegion)
	assert.Equal(t, 0, result.Stats.Matched)
}

func TestRun_MissingInputIsEmptyRun(t *testing.T) {
	cfg := setup(t, "")
	cfg.Offline = true

	result := newPipeline(t, cfg).Run(context.Background())

	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Stats.Valid)

	reportText, err := os.ReadFile(result.Outputs.ReportFile)
	require.NoError(t, err)
	assert.Contains(t, string(reportText), "Records Processed: 0")
	assert.Contains(t, string(reportText), "Date Range         : n/a")
}

func TestRun_OfflineIgnoresCatalogClient(t *testing.T) {
	cfg := setup(t, salesData)
	cfg.Offline = true

	result := newPipeline(t, cfg, WithCatalogClient(catalogServer(t, http.StatusOK, catalogJSON))).Run(context.Background())

	require.NoError(t, result.Error)
	assert.Equal(t, 0, result.Stats.Matched)
}

func TestCheck_DoesNotWriteOutputs(t *testing.T) {
	cfg := setup(t, salesData)
	cfg.Offline = true

	result := newPipeline(t, cfg).Check()

	require.NoError(t, result.Error)
	assert.Equal(t, 4, result.Validation.Summary.FinalCount)
	assert.NoFileExists(t, cfg.EnrichedOutputFile)
	assert.NoFileExists(t, cfg.ReportFile)
}
