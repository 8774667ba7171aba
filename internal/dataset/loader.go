package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// Column names the loader looks for in the header row. Matching is
// case-insensitive and whitespace-tolerant; extra columns are ignored.
const (
	colOrderDate   = "order date"
	colCategory    = "category"
	colSubCategory = "sub-category"
	colRegion      = "region"
	colSegment     = "segment"
	colCustomerID  = "customer id"
	colCustomer    = "customer name"
	colProduct     = "product name"
	colSales       = "sales"
	colProfit      = "profit"
	colDiscount    = "discount"
	colQuantity    = "quantity"
)

// dateLayouts are the accepted Order Date formats, month-first where the
// format is ambiguous.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"2006/01/02",
	time.RFC3339,
}

// Loader reads a raw sales CSV and produces the canonical table.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader with the given logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset_loader"))}
}

// Load opens the source file and cleans it into a Table. It fails with an
// error matching errors.Is(err, ErrSourceUnreadable) when the file cannot be
// opened, has no usable header, or yields zero valid rows after cleaning.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSourceUnreadableError("failed to open sales source", err)
	}
	defer f.Close()

	fp, err := FingerprintOf(path)
	if err != nil {
		return nil, apperrors.NewSourceUnreadableError("failed to stat sales source", err)
	}

	table, err := l.Read(ctx, f, path)
	if err != nil {
		return nil, err
	}
	table.Fingerprint = fp
	return table, nil
}

// Read cleans a raw CSV stream into a Table. Cleaning steps run in a fixed
// order: date parsing, numeric coercion, text trimming, then duplicate
// removal — the duplicate check has to see coerced values so that equivalent
// raw rows compare equal.
func (l *Loader) Read(ctx context.Context, r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewSourceUnreadableError("failed to read header row", err)
	}

	columns := mapColumns(header)
	if _, ok := columns[colOrderDate]; !ok {
		return nil, apperrors.NewSourceUnreadableError("source has no Order Date column", nil)
	}

	var (
		records      []domain.SalesRecord
		seen         = make(map[domain.SalesRecord]struct{})
		droppedDates int
		duplicates   int
		rowNum       = 1
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			// A structurally broken line is treated like any other
			// unusable row: logged and skipped, not fatal.
			l.logger.WarnContext(ctx, "skipping malformed row",
				slog.Int("row", rowNum),
				slog.String("error", err.Error()))
			continue
		}

		orderDate, ok := parseDate(field(row, columns, colOrderDate))
		if !ok {
			droppedDates++
			continue
		}

		record := domain.SalesRecord{
			OrderDate:    orderDate,
			Category:     strings.TrimSpace(field(row, columns, colCategory)),
			SubCategory:  strings.TrimSpace(field(row, columns, colSubCategory)),
			Region:       strings.TrimSpace(field(row, columns, colRegion)),
			Segment:      strings.TrimSpace(field(row, columns, colSegment)),
			CustomerID:   strings.TrimSpace(field(row, columns, colCustomerID)),
			CustomerName: strings.TrimSpace(field(row, columns, colCustomer)),
			Product:      strings.TrimSpace(field(row, columns, colProduct)),
			Sales:        parseFloat(field(row, columns, colSales)),
			Profit:       parseFloat(field(row, columns, colProfit)),
			Discount:     parseFloat(field(row, columns, colDiscount)),
			Quantity:     parseQuantity(field(row, columns, colQuantity)),
		}

		if _, dup := seen[record]; dup {
			duplicates++
			continue
		}
		seen[record] = struct{}{}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, apperrors.NewSourceUnreadableError("no valid rows after cleaning", nil)
	}

	if droppedDates > 0 {
		l.logger.WarnContext(ctx, "dropped rows with unparsable order dates",
			slog.String("source", source),
			slog.Int("dropped", droppedDates))
	}

	l.logger.InfoContext(ctx, "sales source loaded",
		slog.String("source", source),
		slog.Int("rows", len(records)),
		slog.Int("dropped_dates", droppedDates),
		slog.Int("duplicates", duplicates))

	return &Table{
		Records:      records,
		Source:       source,
		LoadedAt:     time.Now(),
		DroppedDates: droppedDates,
		Duplicates:   duplicates,
	}, nil
}

// mapColumns maps known column names to their positions in the header.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		// Tolerate the common "Sub Category" / "Sub_Category" variants.
		key = strings.ReplaceAll(key, "_", " ")
		if key == "sub category" {
			key = colSubCategory
		}
		switch key {
		case colOrderDate, colCategory, colSubCategory, colRegion, colSegment,
			colCustomerID, colCustomer, colProduct, colSales, colProfit,
			colDiscount, colQuantity:
			if _, exists := columns[key]; !exists {
				columns[key] = i
			}
		}
	}
	return columns
}

// field returns the named column's raw value, or "" when the column is
// missing from the header or the row is short.
func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseDate tries each accepted layout in turn.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			// Normalize to a bare calendar date in UTC.
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseFloat coerces a raw numeric value; anything unparsable becomes 0.
// Thousands separators and a leading currency symbol are stripped first.
func parseFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimPrefix(raw, "$")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseQuantity coerces a quantity cell to a non-negative integer.
func parseQuantity(raw string) int64 {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Quantities sometimes arrive as "2.0"; accept the float form.
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0
		}
		v = int64(f)
	}
	if v < 0 {
		return 0
	}
	return v
}
