package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fiscal-coupon/internal/middleware"
	"fiscal-coupon/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeError reads an ErrorResponse body.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Validation error",
			err:            model.NewValidationError("quantity", model.ErrCodeOutOfRange, "must be positive"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeOutOfRange,
		},
		{
			name:           "Wrapped validation error",
			err:            fmt.Errorf("item 2: %w", model.NewValidationError("unit", model.ErrCodeInvalidEnumValue, "unknown unit")),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidEnumValue,
		},
		{
			name:           "State error",
			err:            &model.StateError{State: model.StatusTotalized, Operation: "add_item"},
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInvalidState,
		},
		{
			name:           "Pending read X",
			err:            model.ErrPendingReadX,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodePendingReadX,
		},
		{
			name:           "Pending reduce Z after recoveries",
			err:            fmt.Errorf("failed to open coupon after 3 recoveries: %w", model.ErrPendingReduceZ),
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodePendingReduceZ,
		},
		{
			name:           "Coupon open",
			err:            model.ErrCouponOpen,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeCouponOpen,
		},
		{
			name: "Insufficient payment",
			err: &model.InsufficientPaymentError{
				Totalized: decimal.RequireFromString("10.00"),
				Paid:      decimal.RequireFromString("4.00"),
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   model.ErrCodeInsufficientPayment,
		},
		{
			name:           "Transport error",
			err:            &model.TransportError{Op: "close_coupon", Err: errors.New("timeout")},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   model.ErrCodeTransport,
		},
		{
			name:           "Unknown error",
			err:            errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := classify(tt.err, "fallback")
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedCode, code)
		})
	}
}

func TestClassify_HidesUnknownErrors(t *testing.T) {
	_, _, message := classify(errors.New("password=secret"), "failed to issue coupon")
	assert.Equal(t, "failed to issue coupon", message)
}

func TestWriteError_CorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()

	var captured *http.Request
	middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		writeDomainError(w, r, model.ErrPendingReadX, "failed", zerolog.Nop())
	})).ServeHTTP(w, req)

	require.NotNil(t, captured)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decodeError(t, w)
	assert.Equal(t, model.ErrCodePendingReadX, resp.Error)
	assert.Equal(t, "req-42", resp.CorrelationID)
	assert.NotEmpty(t, resp.Message)
}
