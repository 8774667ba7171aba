package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthStatus is the liveness/readiness report.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Runtime   RuntimeInfo       `json:"runtime"`
}

// RuntimeInfo carries process-level diagnostics.
type RuntimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	MemAllocMB uint64 `json:"mem_alloc_mb"`
}

// HealthService reports service health. Readiness additionally requires the
// dataset to be loadable; liveness does not, since the watcher retries a bad
// source file and the process itself is fine.
type HealthService struct {
	dashboard *DashboardService
	version   string
	startedAt time.Time
	logger    *slog.Logger
}

// NewHealthService creates a health service.
func NewHealthService(dashboard *DashboardService, version string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dashboard: dashboard,
		version:   version,
		startedAt: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// Liveness reports whether the process is up.
func (s *HealthService) Liveness() HealthStatus {
	return s.status("healthy", nil)
}

// Readiness reports whether the service can answer dashboard queries.
func (s *HealthService) Readiness(ctx context.Context) HealthStatus {
	checks := make(map[string]string)

	if _, err := s.dashboard.DatasetInfo(ctx); err != nil {
		checks["dataset"] = err.Error()
		s.logger.WarnContext(ctx, "readiness check failed",
			slog.String("check", "dataset"),
			slog.String("error", err.Error()))
		return s.status("degraded", checks)
	}
	checks["dataset"] = "ok"

	return s.status("healthy", checks)
}

func (s *HealthService) status(state string, checks map[string]string) HealthStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return HealthStatus{
		Status:    state,
		Version:   s.version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    checks,
		Runtime: RuntimeInfo{
			GoVersion:  runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
			MemAllocMB: mem.Alloc / 1024 / 1024,
		},
	}
}
