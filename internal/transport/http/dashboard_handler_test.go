package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataset"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/filter"
	"salespulse/internal/services"
	"salespulse/internal/shared/testutil"
)

func newTestHandler(t *testing.T, source string) *DashboardHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cache := dataset.NewCache(dataset.NewLoader(logger), source, logger)
	engine := filter.NewEngine(filter.DefaultConfig())
	svc := services.NewDashboardService(cache, engine, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return NewDashboardHandler(svc, errorHandler, logger)
}

func fixtureSource(t *testing.T) string {
	t.Helper()
	return testutil.WriteSalesCSV(t,
		"2024-01-10,Furniture,Chairs,West,Consumer,Chair,100,20,0.1,2",
		"2024-01-15,Furniture,Tables,East,Corporate,Table,300,-30,0.3,1",
		"2024-03-05,Technology,Phones,West,Consumer,Phone,900,250,0,1",
	)
}

func doRequest(h *DashboardHandler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestDashboardHandler_Filter(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodPost, "/filter",
		`{"categories":["Furniture"],"from":"2024-01-01","to":"2024-01-31"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var data services.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 2, data.RowCount)
	assert.InDelta(t, 400, data.Summary.TotalSales, 1e-9)
	assert.Len(t, data.SalesByMonth, 1)
}

func TestDashboardHandler_Filter_EmptyBody(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodPost, "/filter", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var data services.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 3, data.RowCount, "empty body selects the whole dataset")
}

func TestDashboardHandler_Filter_CustomerSearch(t *testing.T) {
	_, _ = testutil.NewTestLogger(t)
	source := filepath.Join(t.TempDir(), "sales.csv")
	content := "Order Date,Category,Customer ID,Customer Name,Sales,Quantity\n" +
		"2024-01-10,Furniture,CG-12520,Claire Gute,100,2\n" +
		"2024-01-15,Technology,DV-13045,Darrin Van Huff,400,1\n"
	require.NoError(t, os.WriteFile(source, []byte(content), 0644))
	h := newTestHandler(t, source)

	rec := doRequest(h, http.MethodPost, "/filter", `{"customer_search":"claire"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var data services.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 1, data.RowCount)
	assert.Equal(t, int64(1), data.Summary.Orders)
	assert.InDelta(t, 100, data.Summary.AvgOrderValue, 1e-9)
	require.Len(t, data.TopCustomers, 1)
	assert.Equal(t, "Claire Gute", data.TopCustomers[0].CustomerName)
}

func TestDashboardHandler_Filter_InvalidDate(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	tests := []struct {
		name string
		body string
	}{
		{"bad date format", `{"from":"15/03/2024"}`},
		{"garbage date", `{"from":"soon"}`},
		{"inverted range", `{"from":"2024-03-01","to":"2024-01-01"}`},
		{"broken json", `{"categories":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, "/filter", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, float64(http.StatusBadRequest), problem["status"])
		})
	}
}

func TestDashboardHandler_Filter_SourceUnreadable(t *testing.T) {
	h := newTestHandler(t, "/missing/sales.csv")

	rec := doRequest(h, http.MethodPost, "/filter", `{}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem["type"], "source-unreadable")
}

func TestDashboardHandler_KPIs(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodGet, "/kpis", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.InDelta(t, 1300, summary["total_sales"].(float64), 1e-9)
}

func TestDashboardHandler_KPIsFiltered(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodPost, "/kpis", `{"regions":["West"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.InDelta(t, 1000, summary["total_sales"].(float64), 1e-9)
}

func TestDashboardHandler_Dimensions(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodGet, "/dimensions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dims filter.Dimensions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dims))
	assert.Equal(t, []string{"Furniture", "Technology"}, dims.Categories)
	assert.Equal(t, "2024-01-10", dims.MinDate)
}

func TestDashboardHandler_ExportCSV(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodGet, "/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "3", rec.Header().Get("X-Row-Count"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "Chair")
}

func TestDashboardHandler_ExportDefaultsToCSV(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
}

func TestDashboardHandler_ExportXLSX(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodGet, "/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestDashboardHandler_ExportFiltered(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodPost, "/export?format=csv", `{"categories":["Technology"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Row-Count"))
	assert.Contains(t, rec.Body.String(), "Phone")
	assert.NotContains(t, rec.Body.String(), "Chair")
}

func TestDashboardHandler_ExportUnknownFormat(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodGet, "/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler_DatasetInfoAndReload(t *testing.T) {
	h := newTestHandler(t, fixtureSource(t))

	rec := doRequest(h, http.MethodGet, "/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var info services.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 3, info.Rows)

	rec = doRequest(h, http.MethodPost, "/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
