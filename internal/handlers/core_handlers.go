package handlers

import (
	"net/http"

	"hivemind/internal/utils"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status   string                `json:"status"`
	Database string                `json:"database"`
	Metrics  utils.MetricsSnapshot `json:"metrics"`
}

// HandleHealth reports liveness, store reachability and the metrics
// snapshot.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}

		resp := HealthResponse{
			Status:   "ok",
			Database: "ok",
			Metrics:  s.Metrics.Snapshot(),
		}

		status := http.StatusOK
		if err := s.DB.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		s.respondJSON(w, status, resp)
	}
}
