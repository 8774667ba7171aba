// Package http contains the HTTP transport layer: thin chi handlers that
// decode requests, delegate to services, and render JSON or file downloads.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/filter"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

// dateLayout is the wire format for filter date bounds.
const dateLayout = "2006-01-02"

// DashboardReader is what the dashboard handler needs from the service layer.
type DashboardReader interface {
	Query(ctx context.Context, sel domain.FilterSelection) (*services.DashboardData, error)
	Summarize(ctx context.Context, sel domain.FilterSelection) (domain.KPISummary, error)
	Dimensions(ctx context.Context) (filter.Dimensions, error)
	Rows(ctx context.Context, sel domain.FilterSelection) ([]domain.SalesRecord, error)
	DatasetInfo(ctx context.Context) (services.DatasetInfo, error)
	Reload(ctx context.Context) (services.DatasetInfo, error)
}

// FilterRequest is the wire form of a filter selection. All fields are
// optional; an empty body selects the whole dataset.
type FilterRequest struct {
	Categories     []string `json:"categories" validate:"omitempty,dive,min=1"`
	SubCategories  []string `json:"sub_categories" validate:"omitempty,dive,min=1"`
	Regions        []string `json:"regions" validate:"omitempty,dive,min=1"`
	Segments       []string `json:"segments" validate:"omitempty,dive,min=1"`
	CustomerSearch string   `json:"customer_search" validate:"omitempty,max=200"`
	From           string   `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string   `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Bind implements render.Binder.
func (fr *FilterRequest) Bind(r *http.Request) error {
	return nil
}

// Selection converts the request to a domain filter selection. Date parsing
// cannot fail after validation, but the error paths stay for direct callers.
func (fr *FilterRequest) Selection() (domain.FilterSelection, error) {
	sel := domain.FilterSelection{
		Categories:     trimAll(fr.Categories),
		SubCategories:  trimAll(fr.SubCategories),
		Regions:        trimAll(fr.Regions),
		Segments:       trimAll(fr.Segments),
		CustomerSearch: strings.TrimSpace(fr.CustomerSearch),
	}

	if fr.From != "" {
		t, err := time.Parse(dateLayout, fr.From)
		if err != nil {
			return sel, fmt.Errorf("invalid from date %q: %w", fr.From, err)
		}
		sel.From = &t
	}
	if fr.To != "" {
		t, err := time.Parse(dateLayout, fr.To)
		if err != nil {
			return sel, fmt.Errorf("invalid to date %q: %w", fr.To, err)
		}
		sel.To = &t
	}

	if sel.From != nil && sel.To != nil && sel.To.Before(*sel.From) {
		return sel, fmt.Errorf("date range inverted: %s is after %s", fr.From, fr.To)
	}
	return sel, nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DashboardHandler serves the dashboard API.
type DashboardHandler struct {
	service      DashboardReader
	errorHandler *apierrors.ErrorHandler
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service DashboardReader, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:      service,
		errorHandler: errorHandler,
		validator:    validator.New(),
		logger:       logger.With(slog.String("handler", "dashboard")),
	}
}

// Routes registers the dashboard endpoints.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/filter", h.Filter)
	r.Get("/kpis", h.KPIs)
	r.Post("/kpis", h.KPIsFiltered)
	r.Get("/dimensions", h.Dimensions)
	r.Get("/dataset", h.DatasetInfo)
	r.Post("/reload", h.Reload)
	r.Get("/export", h.ExportAll)
	r.Post("/export", h.ExportFiltered)
	return r
}

// decodeFilter parses and validates the request body into a selection. An
// empty or absent body is the unrestricted selection.
func (h *DashboardHandler) decodeFilter(r *http.Request) (domain.FilterSelection, error) {
	var req FilterRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := render.Bind(r, &req); err != nil {
			return domain.FilterSelection{}, apierrors.ErrValidation("body", "request body must be valid JSON")
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]apierrors.ValidationError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, apierrors.ValidationError{
					Field:   strings.ToLower(fe.Field()),
					Message: "failed " + fe.Tag() + " validation",
				})
			}
			return domain.FilterSelection{}, apierrors.NewValidationErrors(fields)
		}
		return domain.FilterSelection{}, apierrors.ErrValidation("body", err.Error())
	}

	sel, err := req.Selection()
	if err != nil {
		return domain.FilterSelection{}, apierrors.ErrValidation("date_range", err.Error())
	}
	return sel, nil
}

// Filter handles POST /filter: the full dashboard payload for a selection.
func (h *DashboardHandler) Filter(w http.ResponseWriter, r *http.Request) {
	sel, err := h.decodeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.service.Query(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, data)
}

// KPIs handles GET /kpis: the KPI summary of the full dataset.
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context(), domain.FilterSelection{})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// KPIsFiltered handles POST /kpis: the KPI summary for a selection.
func (h *DashboardHandler) KPIsFiltered(w http.ResponseWriter, r *http.Request) {
	sel, err := h.decodeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summarize(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Dimensions handles GET /dimensions.
func (h *DashboardHandler) Dimensions(w http.ResponseWriter, r *http.Request) {
	dims, err := h.service.Dimensions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dims)
}

// DatasetInfo handles GET /dataset.
func (h *DashboardHandler) DatasetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.DatasetInfo(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// Reload handles POST /reload: force a dataset refresh.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// ExportAll handles GET /export: download the full cleaned dataset.
func (h *DashboardHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, domain.FilterSelection{})
}

// ExportFiltered handles POST /export: download the rows a selection matches.
func (h *DashboardHandler) ExportFiltered(w http.ResponseWriter, r *http.Request) {
	sel, err := h.decodeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.export(w, r, sel)
}

func (h *DashboardHandler) export(w http.ResponseWriter, r *http.Request, sel domain.FilterSelection) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.errorHandler.HandleError(w, r,
			apierrors.ErrValidation("format", "format must be csv or xlsx"))
		return
	}

	rows, err := h.service.Rows(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := "sales_" + time.Now().Format("20060102_150405") + "." + format
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("X-Row-Count", strconv.Itoa(len(rows)))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = exporter.WriteCSV(w, rows, true)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = exporter.WriteXLSX(w, rows)
	}

	if err != nil {
		// Headers are gone; all we can do is log.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}
