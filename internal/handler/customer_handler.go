package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"granel-store/internal/model"
	"granel-store/internal/service"
)

// CustomerHandler handles customer-related HTTP requests.
type CustomerHandler struct {
	service service.CustomerService
	logger  zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(service service.CustomerService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With().Str("handler", "customer").Logger(),
	}
}

// GetAll handles GET /api/customers requests. A q query parameter switches
// to search mode.
func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	if query := r.URL.Query().Get("q"); query != "" {
		customers, err := h.service.Search(r.Context(), query)
		if err != nil {
			writeServiceError(w, err, "failed to search customers", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, customers)
		return
	}

	customers, err := h.service.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to retrieve customers", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

// GetByID handles GET /api/customers/{id} requests.
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid customer ID format", h.logger)
		return
	}

	customer, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve customer", h.logger)
		return
	}
	if customer == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeCustomerNotFound, "customer not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// Create handles POST /api/customers requests.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var customer model.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.Create(r.Context(), &customer); err != nil {
		writeServiceError(w, err, "failed to create customer", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

// Update handles PUT /api/customers/{id} requests.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid customer ID format", h.logger)
		return
	}

	var customer model.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	customer.ID = id

	if err := h.service.Update(r.Context(), &customer); err != nil {
		writeServiceError(w, err, "failed to update customer", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/{id} requests.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid customer ID format", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete customer", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Statistics handles GET /api/customers/statistics requests.
func (h *CustomerHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to compute customer statistics", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
