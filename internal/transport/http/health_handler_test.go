package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataset"
	"salespulse/internal/filter"
	"salespulse/internal/services"
	"salespulse/internal/shared/testutil"
)

func newHealthHandler(t *testing.T, source string) *HealthHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cache := dataset.NewCache(dataset.NewLoader(logger), source, logger)
	dashboard := services.NewDashboardService(cache, filter.NewEngine(filter.DefaultConfig()), logger)
	return NewHealthHandler(services.NewHealthService(dashboard, "test", logger))
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := newHealthHandler(t, "/missing/sales.csv")

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	// Liveness stays green even with a broken dataset.
	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "test", status.Version)
}

func TestHealthHandler_Readiness(t *testing.T) {
	source := testutil.WriteSalesCSV(t,
		"2024-01-10,Furniture,Chairs,West,Consumer,Chair,100,20,0.1,2",
	)
	h := newHealthHandler(t, source)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_Readiness_Degraded(t *testing.T) {
	h := newHealthHandler(t, "/missing/sales.csv")

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
}
