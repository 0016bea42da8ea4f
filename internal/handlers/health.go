package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is anything with a health-checkable connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	store Pinger
	redis Pinger
}

// NewHealthChecker creates a new health checker. redis may be nil when
// rate limiting is disabled.
func NewHealthChecker(store, redis Pinger) *HealthChecker {
	return &HealthChecker{store: store, redis: redis}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. Basic mode reports that
// the process is serving; ?mode=extended pings the backends.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)

		checks["storage"] = h.check(r.Context(), h.store)
		if checks["storage"] != "healthy" {
			response.Status = "unhealthy"
		}
		if h.redis != nil {
			checks["redis"] = h.check(r.Context(), h.redis)
			if checks["redis"] != "healthy" {
				response.Status = "unhealthy"
			}
		}
		response.Checks = checks

		statusCode := http.StatusOK
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		writeHealth(w, statusCode, response)
		return
	}

	writeHealth(w, http.StatusOK, response)
}

func (h *HealthChecker) check(ctx context.Context, p Pinger) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// VersionInfo is served by the /version endpoint. Values are injected
// at build time.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// Version returns a handler serving build version information.
func Version(info VersionInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}
