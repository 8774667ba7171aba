package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salespulse/pkg/contracts/domain"
)

// sheetName is the sheet exported workbooks carry the table on.
const sheetName = "Sales"

// WriteXLSX streams a sales table as an xlsx workbook.
func WriteXLSX(w io.Writer, records []domain.SalesRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(TableHeaders))
	for i, h := range TableHeaders {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", i, err)
		}
		row := []interface{}{
			r.OrderDate.Format("2006-01-02"),
			r.Category,
			r.SubCategory,
			r.Region,
			r.Segment,
			r.CustomerID,
			r.CustomerName,
			r.Product,
			r.Sales,
			r.Profit,
			r.Discount,
			r.Quantity,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream writer: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// XLSXWriter writes sales tables to xlsx files under the exports directory.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new xlsx writer instance.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With(slog.String("component", "xlsx_writer"))}
}

// WriteTable writes a sales table to an xlsx file, creating the directory as
// needed.
func (w *XLSXWriter) WriteTable(path string, records []domain.SalesRecord) error {
	w.logger.Info("writing xlsx export",
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

	return WriteXLSX(file, records)
}
