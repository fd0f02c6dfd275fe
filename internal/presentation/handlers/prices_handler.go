package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/services"
)

// PricesHandler handles price refresh requests
type PricesHandler struct {
	service *services.RefreshService
	logger  *zap.Logger
}

// NewPricesHandler creates a new prices handler
func NewPricesHandler(service *services.RefreshService, logger *zap.Logger) *PricesHandler {
	return &PricesHandler{
		service: service,
		logger:  logger,
	}
}

// RefreshResponse wraps a refresh result for API response
type RefreshResponse struct {
	Data services.RefreshResult `json:"data"`
}

// StatusResponse wraps the refresh status for API response
type StatusResponse struct {
	Data services.RefreshStatus `json:"data"`
}

// RegisterRoutes registers the price routes
func (h *PricesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/prices", func(r chi.Router) {
		r.Post("/refresh", h.Refresh)
		r.Get("/status", h.Status)
		r.Delete("/error", h.DismissError)
	})
}

// Refresh handles POST /api/v1/prices/refresh
func (h *PricesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.Warn("Manual price refresh failed", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, services.UserMessage(err))
		return
	}

	h.respondJSON(w, http.StatusOK, RefreshResponse{Data: *result})
}

// Status handles GET /api/v1/prices/status
func (h *PricesHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, StatusResponse{Data: h.service.Status()})
}

// DismissError handles DELETE /api/v1/prices/error
func (h *PricesHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	h.service.DismissError()
	w.WriteHeader(http.StatusNoContent)
}

func (h *PricesHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *PricesHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
