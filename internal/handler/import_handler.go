package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"granel-store/internal/model"
	"granel-store/internal/service"
)

// ImportHandler handles catalogue import HTTP requests.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger.With().Str("handler", "import").Logger(),
	}
}

// importRequest names the catalogue file to import.
type importRequest struct {
	Path string `json:"path"`
}

// ImportProducts handles POST /api/import/products requests.
func (h *ImportHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "path is required", h.logger)
		return
	}

	result, err := h.service.ImportProducts(r.Context(), req.Path)
	if err != nil {
		writeServiceError(w, err, "failed to import catalogue", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
