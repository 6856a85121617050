package csvparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region"

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestParse_StripsCommasAndComputesAmount(t *testing.T) {
	result := ParseText([]string{"T1001|2024-12-01|P101|Laptop, Pro|1|2,495.00|C001|North"})

	require.Len(t, result.Transactions, 1)
	txn := result.Transactions[0]
	assert.Equal(t, "T1001", txn.TransactionID)
	assert.Equal(t, "Laptop Pro", txn.ProductName)
	assert.Equal(t, 1, txn.Quantity)
	assert.True(t, txn.UnitPrice.Equal(decimal.RequireFromString("2495.00")))
	assert.Equal(t, "2495.00", txn.LineAmount().StringFixed(2))
	assert.Equal(t, 0, result.Skipped())
}

func TestParse_QuantityWithThousandsSeparator(t *testing.T) {
	result := ParseText([]string{"T1002|2024-12-02|P102|Mouse|1,200|10|C002|South"})

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 1200, result.Transactions[0].Quantity)
}

func TestParse_SkipsWrongFieldCount(t *testing.T) {
	result := ParseText([]string{
		"T1001|2024-12-01|P101|Laptop|1|2495|C001",
		"T1002|2024-12-01|P101|Laptop|1|2495|C001|North|extra",
		"T1003|2024-12-01|P101|Laptop|1|2495|C001|North",
	})

	assert.Equal(t, 1, result.Kept())
	assert.Equal(t, 2, result.Skipped())
	assert.Equal(t, 2, result.SkippedBy(ReasonFieldCount))
	assert.Equal(t, "T1003", result.Transactions[0].TransactionID)
}

func TestParse_SkipsConversionFailures(t *testing.T) {
	result := ParseText([]string{
		"T1001|2024-12-01|P101|Laptop|two|2495|C001|North",
		"T1002|2024-12-01|P101|Laptop|2.5|2495|C001|North",
		"T1003|2024-12-01|P101|Laptop|2|abc|C001|North",
	})

	assert.Empty(t, result.Transactions)
	assert.Equal(t, 2, result.SkippedBy(ReasonBadQuantity))
	assert.Equal(t, 1, result.SkippedBy(ReasonBadUnitPrice))

	skipped := result.SkippedOutcomes()
	require.Len(t, skipped, 3)
	assert.Equal(t, 3, skipped[2].Line.Number)
	assert.NotEmpty(t, skipped[2].Detail)
}

func TestParse_KeepsInvalidButWellFormedLines(t *testing.T) {
	// Business rules are not the parser's concern.
	result := ParseText([]string{"X1|2024-12-01|Q1|Thing|0|-5|Z1|"})

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 0, result.Transactions[0].Quantity)
	assert.Equal(t, "", result.Transactions[0].Region)
}

func TestReadLines_DropsHeaderAndBlankLines(t *testing.T) {
	content := header + "\r\n" +
		"T1001|2024-12-01|P101|Laptop|1|2495|C001|North\r\n" +
		"\r\n" +
		"   \n" +
		"  T1002|2024-12-02|P102|Mouse|2|25|C002|South  \n"
	path := writeTempFile(t, "sales.txt", []byte(content))

	input, err := ReadLines(path)
	require.NoError(t, err)

	assert.Equal(t, "utf-8", input.Encoding)
	require.Len(t, input.Lines, 2)
	assert.Equal(t, Line{Number: 2, Text: "T1001|2024-12-01|P101|Laptop|1|2495|C001|North"}, input.Lines[0])
	assert.Equal(t, Line{Number: 5, Text: "T1002|2024-12-02|P102|Mouse|2|25|C002|South"}, input.Lines[1])
}

func TestReadLines_FallsBackToLatin1(t *testing.T) {
	// 0xE9 is "é" in latin-1 and invalid as a lone UTF-8 byte.
	content := []byte(header + "\nT1001|2024-12-01|P101|Caf\xe9 Mug|1|10|C001|North\n")
	path := writeTempFile(t, "latin1.txt", content)

	input, err := ReadLines(path)
	require.NoError(t, err)

	assert.Equal(t, "latin-1", input.Encoding)
	result := Parse(input.Lines)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "Café Mug", result.Transactions[0].ProductName)
}

func TestReadLines_MissingFile(t *testing.T) {
	input, err := ReadLines(filepath.Join(t.TempDir(), "missing.txt"))

	require.ErrorIs(t, err, ErrInputNotFound)
	require.NotNil(t, input)
	assert.Empty(t, input.Lines)
}

func TestReadLines_HeaderOnly(t *testing.T) {
	path := writeTempFile(t, "empty.txt", []byte(header+"\n"))

	input, err := ReadLines(path)
	require.NoError(t, err)
	assert.Empty(t, input.Lines)
	assert.Empty(t, Parse(input.Lines).Transactions)
}
