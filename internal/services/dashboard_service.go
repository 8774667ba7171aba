// Package services contains the business logic between the HTTP transport
// and the dataset/filter packages. Services own observability: every entry
// point opens a span, records metrics, and logs with the request's trace ID.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"salespulse/internal/dataset"
	"salespulse/internal/filter"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

var (
	filterEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salespulse",
		Subsystem: "dashboard",
		Name:      "filter_evaluations_total",
		Help:      "Number of filter evaluations, by outcome.",
	}, []string{"outcome"})

	filterDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "salespulse",
		Subsystem: "dashboard",
		Name:      "filter_duration_seconds",
		Help:      "Time to evaluate a filter selection against the dataset.",
		Buckets:   prometheus.DefBuckets,
	})

	datasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "salespulse",
		Subsystem: "dataset",
		Name:      "rows",
		Help:      "Row count of the currently cached canonical table.",
	})

	datasetReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "salespulse",
		Subsystem: "dataset",
		Name:      "reloads_total",
		Help:      "Number of times the source file was reloaded.",
	})
)

// DashboardData is the full dashboard payload for one filter selection: the
// KPI summary plus every chart-ready view, computed from the same row set so
// the numbers agree with each other.
type DashboardData struct {
	Summary           domain.KPISummary      `json:"summary"`
	RowCount          int                    `json:"row_count"`
	SalesByDate       []domain.DateSales     `json:"sales_by_date"`
	SalesByMonth      []domain.MonthSales    `json:"sales_by_month"`
	TopProducts       []domain.ProductSales  `json:"top_products"`
	TopCustomers      []domain.CustomerSales `json:"top_customers"`
	RepeatCustomerPct float64                `json:"repeat_customer_pct"`
	SalesByRegion     []domain.RegionSales   `json:"sales_by_region"`
	Categories        []domain.CategorySales `json:"categories"`
	Segments          []domain.SegmentSales  `json:"segments"`
}

// DatasetInfo describes the cached table for the health and version surfaces.
type DatasetInfo struct {
	Source       string    `json:"source"`
	Rows         int       `json:"rows"`
	LoadedAt     time.Time `json:"loaded_at"`
	DroppedDates int       `json:"dropped_dates"`
	Duplicates   int       `json:"duplicates"`
}

// DashboardService answers dashboard queries from the cached dataset.
type DashboardService struct {
	cache  *dataset.Cache
	engine *filter.Engine
	logger *slog.Logger
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(cache *dataset.Cache, engine *filter.Engine, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		cache:  cache,
		engine: engine,
		logger: logger.With(slog.String("service", "dashboard")),
	}
}

// Query evaluates a filter selection and assembles the dashboard payload.
func (s *DashboardService) Query(ctx context.Context, sel domain.FilterSelection) (*DashboardData, error) {
	ctx, span := infrastructure.StartSpan(ctx, "dashboard.query",
		attribute.Bool("unrestricted", sel.IsUnrestricted()))
	defer span.End()

	start := time.Now()

	table, err := s.cache.Get(ctx)
	if err != nil {
		filterEvaluations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	datasetRows.Set(float64(table.Len()))

	result := s.engine.Apply(table.Records, sel)
	data := &DashboardData{
		Summary:           result.Summary,
		RowCount:          len(result.Rows),
		SalesByDate:       s.engine.SalesByDate(result.Rows),
		SalesByMonth:      s.engine.SalesByMonth(result.Rows),
		TopProducts:       s.engine.SalesByProduct(result.Rows, 0),
		TopCustomers:      s.engine.SalesByCustomer(result.Rows, 0),
		RepeatCustomerPct: s.engine.RepeatCustomerShare(result.Rows),
		SalesByRegion:     s.engine.SalesByRegion(result.Rows),
		Categories:        s.engine.SalesByCategory(result.Rows),
		Segments:          s.engine.SalesBySegment(result.Rows),
	}

	filterEvaluations.WithLabelValues("success").Inc()
	filterDuration.Observe(time.Since(start).Seconds())

	s.logger.DebugContext(ctx, "filter evaluated",
		slog.Int("rows_in", table.Len()),
		slog.Int("rows_out", len(result.Rows)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Summarize computes the KPI summary for a filter selection without building
// the chart views.
func (s *DashboardService) Summarize(ctx context.Context, sel domain.FilterSelection) (domain.KPISummary, error) {
	ctx, span := infrastructure.StartSpan(ctx, "dashboard.summarize")
	defer span.End()

	table, err := s.cache.Get(ctx)
	if err != nil {
		return domain.KPISummary{}, fmt.Errorf("failed to load dataset: %w", err)
	}

	result := s.engine.Apply(table.Records, sel)
	return result.Summary, nil
}

// Dimensions returns the distinct filterable values and date span of the
// full dataset. The UI populates its filter widgets from this once per load.
func (s *DashboardService) Dimensions(ctx context.Context) (filter.Dimensions, error) {
	ctx, span := infrastructure.StartSpan(ctx, "dashboard.dimensions")
	defer span.End()

	table, err := s.cache.Get(ctx)
	if err != nil {
		return filter.Dimensions{}, fmt.Errorf("failed to load dataset: %w", err)
	}
	return s.engine.Dimensions(table.Records), nil
}

// Rows returns the rows a selection matches, for export.
func (s *DashboardService) Rows(ctx context.Context, sel domain.FilterSelection) ([]domain.SalesRecord, error) {
	ctx, span := infrastructure.StartSpan(ctx, "dashboard.rows")
	defer span.End()

	table, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	result := s.engine.Apply(table.Records, sel)
	return result.Rows, nil
}

// DatasetInfo describes the currently cached table.
func (s *DashboardService) DatasetInfo(ctx context.Context) (DatasetInfo, error) {
	table, err := s.cache.Get(ctx)
	if err != nil {
		return DatasetInfo{}, err
	}
	return DatasetInfo{
		Source:       table.Source,
		Rows:         table.Len(),
		LoadedAt:     table.LoadedAt,
		DroppedDates: table.DroppedDates,
		Duplicates:   table.Duplicates,
	}, nil
}

// Reload forces a dataset refresh regardless of the file fingerprint.
func (s *DashboardService) Reload(ctx context.Context) (DatasetInfo, error) {
	ctx, span := infrastructure.StartSpan(ctx, "dashboard.reload")
	defer span.End()

	s.cache.Invalidate()
	table, err := s.cache.Get(ctx)
	if err != nil {
		return DatasetInfo{}, fmt.Errorf("failed to reload dataset: %w", err)
	}

	datasetReloads.Inc()
	datasetRows.Set(float64(table.Len()))

	s.logger.InfoContext(ctx, "dataset reloaded on request",
		slog.String("source", table.Source),
		slog.Int("rows", table.Len()))

	return DatasetInfo{
		Source:       table.Source,
		Rows:         table.Len(),
		LoadedAt:     table.LoadedAt,
		DroppedDates: table.DroppedDates,
		Duplicates:   table.Duplicates,
	}, nil
}

// RecordReload updates reload metrics for refreshes triggered by the file
// watcher rather than an API call.
func RecordReload(rows int) {
	datasetReloads.Inc()
	datasetRows.Set(float64(rows))
}
