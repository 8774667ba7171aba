// Package filter narrows the canonical sales table per a user selection and
// derives the KPI summary and chart-ready aggregations from the result.
// Everything here is a pure function of its inputs: the same table and
// selection always produce the same output, and input slices are never
// mutated, so the UI layer can re-evaluate on every interaction.
package filter

import (
	"sort"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Engine evaluates filter selections against a canonical table.
type Engine struct {
	dateFormat  string
	monthFormat string
	topProducts int
}

// Config holds Engine options.
type Config struct {
	// DateFormat is the layout for date keys in views.
	DateFormat string
	// TopProducts is the default N for the product view.
	TopProducts int
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		DateFormat:  "2006-01-02",
		TopProducts: 10,
	}
}

// NewEngine creates a filter engine.
func NewEngine(cfg Config) *Engine {
	if cfg.DateFormat == "" {
		cfg.DateFormat = "2006-01-02"
	}
	if cfg.TopProducts <= 0 {
		cfg.TopProducts = 10
	}
	return &Engine{
		dateFormat:  cfg.DateFormat,
		monthFormat: "2006-01",
		topProducts: cfg.TopProducts,
	}
}

// Result is one filter evaluation: the surviving rows and their KPIs.
type Result struct {
	Rows    []domain.SalesRecord `json:"rows"`
	Summary domain.KPISummary    `json:"summary"`
}

// Apply keeps the rows that satisfy every active restriction in the
// selection and computes their KPI summary. A selection matching zero rows
// yields an empty, zero-valued result, never an error.
func (e *Engine) Apply(records []domain.SalesRecord, sel domain.FilterSelection) Result {
	rows := make([]domain.SalesRecord, 0, len(records))
	for _, r := range records {
		if sel.Matches(r) {
			rows = append(rows, r)
		}
	}
	return Result{
		Rows:    rows,
		Summary: e.Summarize(rows),
	}
}

// Summarize computes the KPI scalars over a set of rows. The averages are 0
// for an empty set. The source carries no order-ID column, so each row counts
// as one order and the average order value is sales per row.
func (e *Engine) Summarize(rows []domain.SalesRecord) domain.KPISummary {
	var s domain.KPISummary
	if len(rows) == 0 {
		return s
	}

	var discountSum float64
	for _, r := range rows {
		s.TotalSales += r.Sales
		s.TotalProfit += r.Profit
		s.TotalQuantity += r.Quantity
		discountSum += r.Discount
	}
	s.AvgDiscount = discountSum / float64(len(rows))
	s.Orders = int64(len(rows))
	s.AvgOrderValue = s.TotalSales / float64(s.Orders)
	return s
}

// SalesByDate groups sales per distinct order date, ascending.
func (e *Engine) SalesByDate(rows []domain.SalesRecord) []domain.DateSales {
	byDate := make(map[time.Time]float64)
	for _, r := range rows {
		byDate[r.OrderDate] += r.Sales
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]domain.DateSales, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.DateSales{
			Date:  d.Format(e.dateFormat),
			Sales: byDate[d],
		})
	}
	return out
}

// SalesByMonth groups sales per calendar month, ascending, with months that
// have no orders between the first and last month filled with zero so the
// trend line has no gaps.
func (e *Engine) SalesByMonth(rows []domain.SalesRecord) []domain.MonthSales {
	if len(rows) == 0 {
		return []domain.MonthSales{}
	}

	byMonth := make(map[time.Time]float64)
	var first, last time.Time
	for i, r := range rows {
		m := time.Date(r.OrderDate.Year(), r.OrderDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[m] += r.Sales
		if i == 0 || m.Before(first) {
			first = m
		}
		if i == 0 || m.After(last) {
			last = m
		}
	}

	var out []domain.MonthSales
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, domain.MonthSales{
			Month: m.Format(e.monthFormat),
			Sales: byMonth[m],
		})
	}
	return out
}

// SalesByProduct groups sales per product label, descending, truncated to
// the top n (the engine default when n <= 0). Ties sort by product name so
// output is deterministic.
func (e *Engine) SalesByProduct(rows []domain.SalesRecord, n int) []domain.ProductSales {
	if n <= 0 {
		n = e.topProducts
	}

	byProduct := make(map[string]float64)
	for _, r := range rows {
		byProduct[r.Product] += r.Sales
	}

	out := make([]domain.ProductSales, 0, len(byProduct))
	for p, sales := range byProduct {
		out = append(out, domain.ProductSales{Product: p, Sales: sales})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].Product < out[j].Product
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SalesByRegion groups sales per region, descending.
func (e *Engine) SalesByRegion(rows []domain.SalesRecord) []domain.RegionSales {
	byRegion := make(map[string]float64)
	for _, r := range rows {
		byRegion[r.Region] += r.Sales
	}

	out := make([]domain.RegionSales, 0, len(byRegion))
	for region, sales := range byRegion {
		out = append(out, domain.RegionSales{Region: region, Sales: sales})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// SalesByCategory groups sales and profit per category, descending by sales,
// with the profit margin the UI annotates each bar with.
func (e *Engine) SalesByCategory(rows []domain.SalesRecord) []domain.CategorySales {
	type agg struct{ sales, profit float64 }
	byCategory := make(map[string]*agg)
	for _, r := range rows {
		a, ok := byCategory[r.Category]
		if !ok {
			a = &agg{}
			byCategory[r.Category] = a
		}
		a.sales += r.Sales
		a.profit += r.Profit
	}

	out := make([]domain.CategorySales, 0, len(byCategory))
	for category, a := range byCategory {
		margin := 0.0
		if a.sales != 0 {
			margin = a.profit / a.sales
		}
		out = append(out, domain.CategorySales{
			Category: category,
			Sales:    a.sales,
			Profit:   a.profit,
			Margin:   margin,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SalesByCustomer groups sales per customer, descending, truncated to the
// top n (the engine default when n <= 0). Rows with no customer identity are
// skipped, so a source without customer columns yields an empty view.
func (e *Engine) SalesByCustomer(rows []domain.SalesRecord, n int) []domain.CustomerSales {
	if n <= 0 {
		n = e.topProducts
	}

	type key struct{ id, name string }
	byCustomer := make(map[key]float64)
	for _, r := range rows {
		if r.CustomerID == "" && r.CustomerName == "" {
			continue
		}
		byCustomer[key{r.CustomerID, r.CustomerName}] += r.Sales
	}

	out := make([]domain.CustomerSales, 0, len(byCustomer))
	for k, sales := range byCustomer {
		out = append(out, domain.CustomerSales{
			CustomerID:   k.id,
			CustomerName: k.name,
			Sales:        sales,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		if out[i].CustomerName != out[j].CustomerName {
			return out[i].CustomerName < out[j].CustomerName
		}
		return out[i].CustomerID < out[j].CustomerID
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RepeatCustomerShare returns the percentage of distinct customers with more
// than one row, 0 when no rows carry a customer ID.
func (e *Engine) RepeatCustomerShare(rows []domain.SalesRecord) float64 {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.CustomerID == "" {
			continue
		}
		counts[r.CustomerID]++
	}
	if len(counts) == 0 {
		return 0
	}

	repeat := 0
	for _, n := range counts {
		if n > 1 {
			repeat++
		}
	}
	return float64(repeat) / float64(len(counts)) * 100
}

// SalesBySegment groups sales per customer segment, descending.
func (e *Engine) SalesBySegment(rows []domain.SalesRecord) []domain.SegmentSales {
	bySegment := make(map[string]float64)
	for _, r := range rows {
		bySegment[r.Segment] += r.Sales
	}

	out := make([]domain.SegmentSales, 0, len(bySegment))
	for segment, sales := range bySegment {
		out = append(out, domain.SegmentSales{Segment: segment, Sales: sales})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}
