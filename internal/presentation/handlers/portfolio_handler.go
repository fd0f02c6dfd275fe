package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/services"
	"github.com/bimakw/coin-tracker/internal/application/state"
)

// PortfolioHandler handles HTTP requests for the portfolio
type PortfolioHandler struct {
	service *services.PortfolioService
	logger  *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service *services.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the portfolio routes on a chi router
func (h *PortfolioHandler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.GetPortfolio)
		r.Post("/holdings", h.AddHolding)
		r.Get("/holdings/{id}", h.GetHolding)
		r.Patch("/holdings/{id}", h.UpdateHolding)
		r.Delete("/holdings/{id}", h.RemoveHolding)
	})
}

// GetPortfolio handles GET /api/v1/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio := h.service.GetPortfolio(r.Context())
	h.respondJSON(w, http.StatusOK, services.PortfolioResponse{Data: *portfolio})
}

// GetHolding handles GET /api/v1/portfolio/holdings/{id}
func (h *PortfolioHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	holding, err := h.service.GetHolding(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Holding not found")
		return
	}

	h.respondJSON(w, http.StatusOK, services.HoldingResponse{Data: *holding})
}

// AddHolding handles POST /api/v1/portfolio/holdings
func (h *PortfolioHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	var req AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	holding, err := h.service.AddHolding(r.Context(), req.Token())
	if err != nil {
		h.handleStoreError(w, err, "Failed to add holding", zap.String("id", req.ID))
		return
	}

	h.respondJSON(w, http.StatusCreated, services.HoldingResponse{Data: *holding})
}

// UpdateHolding handles PATCH /api/v1/portfolio/holdings/{id}
func (h *PortfolioHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateHoldingRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	holding, err := h.service.UpdateHolding(r.Context(), id, req.Field, req.Value)
	if err != nil {
		h.handleStoreError(w, err, "Failed to update holding", zap.String("id", id))
		return
	}

	h.respondJSON(w, http.StatusOK, services.HoldingResponse{Data: *holding})
}

// RemoveHolding handles DELETE /api/v1/portfolio/holdings/{id}
func (h *PortfolioHandler) RemoveHolding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.RemoveHolding(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "Failed to remove holding", zap.String("id", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PortfolioHandler) handleStoreError(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	switch {
	case errors.Is(err, state.ErrHoldingExists):
		h.respondError(w, http.StatusConflict, "Holding already exists")
	case errors.Is(err, state.ErrHoldingNotFound):
		h.respondError(w, http.StatusNotFound, "Holding not found")
	case errors.Is(err, state.ErrEmptyID),
		errors.Is(err, state.ErrUnknownField),
		errors.Is(err, state.ErrNegativeValue),
		errors.Is(err, state.ErrInvalidNumber):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		h.respondError(w, http.StatusInternalServerError, msg)
	}
}

func (h *PortfolioHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *PortfolioHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
