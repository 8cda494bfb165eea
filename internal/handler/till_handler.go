package handler

import (
	"net/http"
	"strconv"

	"fiscal-coupon/internal/model"
	"fiscal-coupon/internal/service"

	"github.com/rs/zerolog"
)

// TillHandler handles till-related HTTP requests.
type TillHandler struct {
	service service.TillService
	logger  zerolog.Logger
}

// NewTillHandler creates a new till handler.
func NewTillHandler(service service.TillService, logger zerolog.Logger) *TillHandler {
	return &TillHandler{
		service: service,
		logger:  logger.With().Str("handler", "till").Logger(),
	}
}

// Status handles GET /api/status requests.
func (h *TillHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		writeDomainError(w, r, err, "failed to read device status", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Summarize handles POST /api/till/summarize requests.
func (h *TillHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Summarize(r.Context()); err != nil {
		writeDomainError(w, r, err, "failed to summarize till", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloseTill handles POST /api/till/close requests.
func (h *TillHandler) CloseTill(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CloseTill(r.Context()); err != nil {
		writeDomainError(w, r, err, "failed to close till", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddCash handles POST /api/till/cash-in requests.
func (h *TillHandler) AddCash(w http.ResponseWriter, r *http.Request) {
	var req model.CashRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.AddCash(r.Context(), &req); err != nil {
		writeDomainError(w, r, err, "failed to add cash", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveCash handles POST /api/till/cash-out requests.
func (h *TillHandler) RemoveCash(w http.ResponseWriter, r *http.Request) {
	var req model.CashRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.RemoveCash(r.Context(), &req); err != nil {
		writeDomainError(w, r, err, "failed to remove cash", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Movements handles GET /api/till/movements requests with pagination.
func (h *TillHandler) Movements(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 10 // default
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidValue, "invalid limit parameter", h.logger)
			return
		}
	}

	offset := 0 // default
	if offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidValue, "invalid offset parameter", h.logger)
			return
		}
	}

	movements, err := h.service.Movements(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err, "failed to retrieve till movements", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, movements)
}
