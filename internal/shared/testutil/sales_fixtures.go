package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"salespulse/pkg/contracts/domain"
)

// SalesCSVHeader is the header row the loader expects.
const SalesCSVHeader = "Order Date,Category,Sub-Category,Region,Segment,Product Name,Sales,Profit,Discount,Quantity"

// WriteSalesCSV writes a sales CSV into the test's temp dir and returns its
// path. Rows are raw CSV lines without the header.
func WriteSalesCSV(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := SalesCSVHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// Date builds a UTC midnight date for fixture records.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Record builds a sales record with sensible defaults, overridable via the
// mutator.
func Record(mutate func(*domain.SalesRecord)) domain.SalesRecord {
	r := domain.SalesRecord{
		OrderDate:   Date(2024, time.March, 15),
		Category:    "Furniture",
		SubCategory: "Chairs",
		Region:      "West",
		Segment:     "Consumer",
		Product:     "Ergonomic Chair",
		Sales:       100,
		Profit:      20,
		Discount:    0.1,
		Quantity:    2,
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}
