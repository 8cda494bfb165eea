package handler

import (
	"net/http"
	"strconv"

	"fiscal-coupon/internal/model"
	"fiscal-coupon/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CouponHandler handles coupon-related HTTP requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Capabilities handles GET /api/capabilities requests.
func (h *CouponHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Capabilities())
}

// Current handles GET /api/coupon requests.
func (h *CouponHandler) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Current())
}

// Open handles POST /api/coupon/open requests.
func (h *CouponHandler) Open(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Open(r.Context()); err != nil {
		writeDomainError(w, r, err, "failed to open coupon", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Current())
}

// IdentifyCustomer handles POST /api/coupon/customer requests.
func (h *CouponHandler) IdentifyCustomer(w http.ResponseWriter, r *http.Request) {
	var req model.CustomerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.IdentifyCustomer(r.Context(), &req); err != nil {
		writeDomainError(w, r, err, "failed to identify customer", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Current())
}

// AddItem handles POST /api/coupon/items requests.
func (h *CouponHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.ItemRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.AddItem(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, "failed to add item", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// CancelItem handles DELETE /api/coupon/items/{handle} requests.
func (h *CouponHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	handle, err := strconv.Atoi(chi.URLParam(r, "handle"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidValue, "invalid item handle", h.logger)
		return
	}

	if err := h.service.CancelItem(r.Context(), model.ItemHandle(handle)); err != nil {
		writeDomainError(w, r, err, "failed to cancel item", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Totalize handles POST /api/coupon/totalize requests.
func (h *CouponHandler) Totalize(w http.ResponseWriter, r *http.Request) {
	var req model.TotalizeRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Totalize(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, "failed to totalize coupon", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddPayment handles POST /api/coupon/payments requests.
func (h *CouponHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.AddPayment(r.Context(), &req); err != nil {
		writeDomainError(w, r, err, "failed to add payment", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, h.service.Current())
}

// Close handles POST /api/coupon/close requests.
func (h *CouponHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req model.CloseRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Close(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, "failed to close coupon", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles POST /api/coupon/cancel requests.
func (h *CouponHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context()); err != nil {
		writeDomainError(w, r, err, "failed to cancel coupon", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Issue handles POST /api/coupons requests.
func (h *CouponHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req model.CouponRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Issue(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, "failed to issue coupon", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /api/coupons/{id} requests.
func (h *CouponHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidValue, "invalid coupon ID format", h.logger)
		return
	}

	record, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, "failed to retrieve coupon", h.logger)
		return
	}

	if record == nil {
		writeError(w, r, http.StatusNotFound, model.ErrCodeCouponNotFound, "coupon not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, record)
}
