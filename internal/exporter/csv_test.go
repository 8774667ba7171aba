package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func TestWriteCSV(t *testing.T) {
	records := []domain.SalesRecord{
		testutil.Record(nil),
		testutil.Record(func(r *domain.SalesRecord) {
			r.OrderDate = testutil.Date(2024, time.April, 1)
			r.CustomerID = "CG-12520"
			r.CustomerName = "Claire Gute"
			r.Product = "Standing Desk"
			r.Sales = 499.99
			r.Quantity = 1
		}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records, false))

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, TableHeaders, rows[0])
	assert.Equal(t, "2024-03-15", rows[1][0])
	assert.Equal(t, "", rows[1][5], "customer columns export blank when the source had none")
	assert.Equal(t, "Ergonomic Chair", rows[1][7])
	assert.Equal(t, "100", rows[1][8])
	assert.Equal(t, "CG-12520", rows[2][5])
	assert.Equal(t, "Claire Gute", rows[2][6])
	assert.Equal(t, "499.99", rows[2][8])
	assert.Equal(t, "1", rows[2][11])
}

func TestWriteCSV_BOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.SalesRecord{testutil.Record(nil)}, true))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, false))

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "headers only")
}

func TestCSVWriter_WriteTable(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "nested", "export.csv")

	writer := NewCSVWriter(logger)
	require.NoError(t, writer.WriteTable(path, []domain.SalesRecord{testutil.Record(nil)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "file exports carry a BOM for Excel")
	assert.Contains(t, string(data), "Ergonomic Chair")
}
