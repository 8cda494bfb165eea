package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fiscal-coupon/internal/middleware"
	"fiscal-coupon/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	correlationID := middleware.RequestIDFromContext(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("request_id", correlationID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: correlationID,
	})
}

// writeDomainError maps an error of the coupon layers to its HTTP status.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string, logger zerolog.Logger) {
	status, code, message := classify(err, fallback)
	writeError(w, r, status, code, message, logger)
}

// classify returns the status, code and client message for err.
func classify(err error, fallback string) (int, string, string) {
	var (
		vErr   *model.ValidationError
		sErr   *model.StateError
		payErr *model.InsufficientPaymentError
		tErr   *model.TransportError
		dErr   *model.DomainError
	)

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Code, err.Error()
	case errors.As(err, &sErr):
		return http.StatusConflict, model.ErrCodeInvalidState, err.Error()
	case errors.As(err, &payErr):
		return http.StatusUnprocessableEntity, model.ErrCodeInsufficientPayment, err.Error()
	case errors.As(err, &tErr):
		return http.StatusBadGateway, model.ErrCodeTransport, err.Error()
	case errors.As(err, &dErr):
		switch dErr.Code {
		case model.ErrCodePendingReadX, model.ErrCodePendingReduceZ, model.ErrCodeCouponOpen:
			return http.StatusConflict, dErr.Code, err.Error()
		case model.ErrCodeCouponNotFound:
			return http.StatusNotFound, dErr.Code, err.Error()
		}
	}

	return http.StatusInternalServerError, model.ErrCodeInternalError, fallback
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched when optional is set.
func decodeJSON(r *http.Request, dst any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
