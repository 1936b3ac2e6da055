package handlers

import (
	"net/http"
	"time"
)

// GetDashboardMetricsHandler godoc
// @Summary Dashboard metrics for admin view
// @Tags metrics
// @Produce json
// @Success 200 {object} repo.Metrics
// @Failure 500 {object} ErrorResponse
// @Router /metrics/dashboard [get]
// @Security BearerAuth
func (s *Server) GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	m, err := s.metrics.GetDashboardMetrics(r.Context())
	if err != nil {
		s.logger.Error("failed to fetch metrics", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to fetch metrics")
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// HealthHandler godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}
