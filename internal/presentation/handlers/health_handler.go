package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	storage  HealthChecker
	cache    HealthChecker
	priceAPI HealthChecker
}

// NewHealthHandler creates a new health handler. Any checker may be nil:
// in-process storage and caches have nothing to probe
func NewHealthHandler(storage, cache, priceAPI HealthChecker) *HealthHandler {
	return &HealthHandler{
		storage:  storage,
		cache:    cache,
		priceAPI: priceAPI,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	// Storage is required; without it nothing can be read or saved
	if h.storage != nil {
		if err := h.storage.HealthCheck(ctx); err != nil {
			response.Status = "unhealthy"
			response.Services["storage"] = "unhealthy: " + err.Error()
		} else {
			response.Services["storage"] = "healthy"
		}
	} else {
		response.Services["storage"] = "healthy"
	}

	for name, checker := range map[string]HealthChecker{"cache": h.cache, "price_api": h.priceAPI} {
		if checker == nil {
			continue
		}
		if err := checker.HealthCheck(ctx); err != nil {
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
			response.Services[name] = "unhealthy: " + err.Error()
		} else {
			response.Services[name] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.storage != nil {
		if err := h.storage.HealthCheck(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
