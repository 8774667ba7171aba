package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"salespulse/internal/dataset"
	"salespulse/internal/filter"
	"salespulse/internal/shared/testutil"
)

func TestHealthService_Liveness(t *testing.T) {
	svc, _ := newTestService(t, sampleCSVRows()...)
	logger, _ := testutil.NewTestLogger(t)
	health := NewHealthService(svc, "1.2.3", logger)

	status := health.Liveness()

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.NotEmpty(t, status.Runtime.GoVersion)
}

func TestHealthService_Readiness_Healthy(t *testing.T) {
	svc, _ := newTestService(t, sampleCSVRows()...)
	logger, _ := testutil.NewTestLogger(t)
	health := NewHealthService(svc, "dev", logger)

	status := health.Readiness(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "ok", status.Checks["dataset"])
}

func TestHealthService_Readiness_DatasetUnavailable(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cache := dataset.NewCache(dataset.NewLoader(logger), "/missing/sales.csv", logger)
	dashboard := NewDashboardService(cache, filter.NewEngine(filter.DefaultConfig()), logger)
	health := NewHealthService(dashboard, "dev", logger)

	status := health.Readiness(context.Background())

	assert.Equal(t, "degraded", status.Status)
	assert.NotEmpty(t, status.Checks["dataset"])
}
