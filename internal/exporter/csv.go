// Package exporter serializes sales tables for download: CSV for the
// dashboard's export button and xlsx for spreadsheet users. Serialization is
// the trivial inverse of parsing; no cleaning happens here.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"salespulse/pkg/contracts/domain"
)

// TableHeaders is the column order for exported sales tables. It mirrors the
// source file's expected columns so a round trip re-imports cleanly.
var TableHeaders = []string{
	"Order Date", "Category", "Sub-Category", "Region", "Segment",
	"Customer ID", "Customer Name", "Product Name",
	"Sales", "Profit", "Discount", "Quantity",
}

// utf8BOM helps Excel recognize UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RecordRow formats one canonical record as a CSV row.
func RecordRow(r domain.SalesRecord) []string {
	return []string{
		r.OrderDate.Format("2006-01-02"),
		r.Category,
		r.SubCategory,
		r.Region,
		r.Segment,
		r.CustomerID,
		r.CustomerName,
		r.Product,
		strconv.FormatFloat(r.Sales, 'f', -1, 64),
		strconv.FormatFloat(r.Profit, 'f', -1, 64),
		strconv.FormatFloat(r.Discount, 'f', -1, 64),
		strconv.FormatInt(r.Quantity, 10),
	}
}

// WriteCSV streams a sales table as CSV, with a UTF-8 BOM when requested.
func WriteCSV(w io.Writer, records []domain.SalesRecord, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(TableHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, r := range records {
		if err := writer.Write(RecordRow(r)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVWriter writes sales tables to files under the exports directory.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteTable writes a sales table to a CSV file, creating the directory as
// needed. The file always gets a BOM for Excel compatibility.
func (w *CSVWriter) WriteTable(path string, records []domain.SalesRecord) error {
	w.logger.Info("writing CSV export",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return WriteCSV(file, records, true)
}
