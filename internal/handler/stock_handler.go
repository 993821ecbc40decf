package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"granel-store/internal/model"
	"granel-store/internal/service"
)

// StockHandler handles inventory-related HTTP requests.
type StockHandler struct {
	service service.InventoryService
	logger  zerolog.Logger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(service service.InventoryService, logger zerolog.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  logger.With().Str("handler", "stock").Logger(),
	}
}

// Overview handles GET /api/stock requests.
func (h *StockHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to load stock overview", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// LowStock handles GET /api/stock/low requests.
func (h *StockHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to load low stock items", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// OutOfStock handles GET /api/stock/out requests.
func (h *StockHandler) OutOfStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.OutOfStock(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to load out of stock items", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// stockRequest is the payload for setting a variant's stock.
type stockRequest struct {
	Stock int `json:"stock"`
}

// SetStock handles PUT /api/stock/{id} requests, where {id} is a variant ID.
func (h *StockHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid variant ID format", h.logger)
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.SetStock(r.Context(), id, req.Stock); err != nil {
		writeServiceError(w, err, "failed to set stock", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// adjustRequest is the payload for a relative stock change.
type adjustRequest struct {
	Delta int `json:"delta"`
}

// adjustResponse reports the stock level after an adjustment.
type adjustResponse struct {
	Stock int `json:"stock"`
}

// AdjustStock handles PATCH /api/stock/{id} requests.
func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid variant ID format", h.logger)
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	stock, err := h.service.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		writeServiceError(w, err, "failed to adjust stock", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, adjustResponse{Stock: stock})
}

// bulkResponse reports the outcome of a bulk stock update.
type bulkResponse struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// BulkSetStock handles PUT /api/stock requests with a list of updates.
func (h *StockHandler) BulkSetStock(w http.ResponseWriter, r *http.Request) {
	var updates []model.StockUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	updated, failures, err := h.service.BulkSetStock(r.Context(), updates)
	if err != nil {
		writeServiceError(w, err, "failed to update stock", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, bulkResponse{Updated: updated, Errors: failures})
}

// availabilityResponse reports whether a variant can satisfy a quantity.
type availabilityResponse struct {
	Available bool `json:"available"`
	Stock     int  `json:"stock"`
}

// CheckAvailability handles GET /api/stock/{id}/availability requests. The
// quantity query parameter defaults to one.
func (h *StockHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid variant ID format", h.logger)
		return
	}

	quantity := 1
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidQuantity, "invalid quantity", h.logger)
			return
		}
	}

	available, stock, err := h.service.CheckAvailability(r.Context(), id, quantity)
	if err != nil {
		writeServiceError(w, err, "failed to check availability", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, availabilityResponse{Available: available, Stock: stock})
}
