package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/services"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	health *services.HealthService
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(health *services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Routes registers the health endpoints.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Readiness)
	r.Get("/live", h.Liveness)
	r.Get("/ready", h.Readiness)
	return r
}

// Liveness handles GET /live. It never fails while the process runs.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.health.Liveness())
}

// Readiness handles GET /ready. A degraded dataset yields 503 so load
// balancers stop routing dashboard traffic here until the source is fixed.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	status := h.health.Readiness(r.Context())
	if status.Status != "healthy" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}
