package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"granel-store/internal/model"
	"granel-store/internal/service"
)

// DiscountHandler handles discount-related HTTP requests.
type DiscountHandler struct {
	service service.DiscountService
	logger  zerolog.Logger
}

// NewDiscountHandler creates a new discount handler.
func NewDiscountHandler(service service.DiscountService, logger zerolog.Logger) *DiscountHandler {
	return &DiscountHandler{
		service: service,
		logger:  logger.With().Str("handler", "discount").Logger(),
	}
}

// validateRequest is the payload for validating a discount code.
type validateRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Validate handles POST /api/discounts/validate requests. Rejections come
// back as 200 with valid=false so the storefront can show the message
// inline at checkout.
func (h *DiscountHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	validation, err := h.service.ValidateCode(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		writeServiceError(w, err, "failed to validate discount code", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, validation)
}

// GetAll handles GET /api/discounts requests. The active query parameter
// narrows to discounts currently inside their validity window.
func (h *DiscountHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var (
		discounts []model.Discount
		err       error
	)
	if r.URL.Query().Get("active") == "true" {
		discounts, err = h.service.GetActive(r.Context())
	} else {
		discounts, err = h.service.GetAll(r.Context())
	}
	if err != nil {
		writeServiceError(w, err, "failed to retrieve discounts", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, discounts)
}

// GetByID handles GET /api/discounts/{id} requests.
func (h *DiscountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid discount ID format", h.logger)
		return
	}

	d, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve discount", h.logger)
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeInvalidDiscountCode, "discount not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// Create handles POST /api/discounts requests.
func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var d model.Discount
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.Create(r.Context(), &d); err != nil {
		writeServiceError(w, err, "failed to create discount", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// Update handles PUT /api/discounts/{id} requests.
func (h *DiscountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid discount ID format", h.logger)
		return
	}

	var d model.Discount
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	d.ID = id

	if err := h.service.Update(r.Context(), &d); err != nil {
		writeServiceError(w, err, "failed to update discount", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /api/discounts/{id} requests.
func (h *DiscountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid discount ID format", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete discount", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activeRequest is the payload for toggling a discount.
type activeRequest struct {
	Active bool `json:"active"`
}

// SetActive handles PATCH /api/discounts/{id}/active requests.
func (h *DiscountHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid discount ID format", h.logger)
		return
	}

	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.SetActive(r.Context(), id, req.Active); err != nil {
		writeServiceError(w, err, "failed to toggle discount", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
