package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeMissingField   = "MISSING_FIELD"
	ErrCodeUnauthorised   = "UNAUTHORIZED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
	ErrCodeCouponNotFound = "COUPON_NOT_FOUND"

	// Argument validation
	ErrCodeInvalidValue           = "INVALID_VALUE"
	ErrCodeOutOfRange             = "OUT_OF_RANGE"
	ErrCodeInvalidEnumValue       = "INVALID_ENUM_VALUE"
	ErrCodeConflictingArguments   = "CONFLICTING_ARGUMENTS"
	ErrCodeInvalidUnitDescription = "INVALID_UNIT_DESCRIPTION"
	ErrCodeUnknownItem            = "UNKNOWN_ITEM"
	ErrCodeTextNotEncodable       = "TEXT_NOT_ENCODABLE"
	ErrCodeTextTooLong            = "TEXT_TOO_LONG"

	// Coupon lifecycle
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInsufficientPayment = "INSUFFICIENT_PAYMENT"

	// Device reported
	ErrCodePendingReadX   = "PENDING_READ_X"
	ErrCodePendingReduceZ = "PENDING_REDUCE_Z"
	ErrCodeCouponOpen     = "COUPON_OPEN"
	ErrCodeTransport      = "TRANSPORT_ERROR"
)

// DomainError is a coded error. Typed errors below match a DomainError with
// the same code through errors.Is.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Device conditions. These are steady-state conditions a caller is expected
// to recover from, not generic failures.
var (
	ErrPendingReadX   = NewDomainError(ErrCodePendingReadX, "device requires a read X (summary) before a new coupon")
	ErrPendingReduceZ = NewDomainError(ErrCodePendingReduceZ, "device requires a reduce Z (till closing) before a new coupon")
	ErrCouponOpen     = NewDomainError(ErrCodeCouponOpen, "a coupon is already open in the device")
)

// Error kinds, for errors.Is matching against the typed errors.
var (
	ErrInvalidValue           = NewDomainError(ErrCodeInvalidValue, "invalid value")
	ErrOutOfRange             = NewDomainError(ErrCodeOutOfRange, "value out of range")
	ErrInvalidEnumValue       = NewDomainError(ErrCodeInvalidEnumValue, "invalid enumerated value")
	ErrConflictingArguments   = NewDomainError(ErrCodeConflictingArguments, "conflicting arguments")
	ErrInvalidUnitDescription = NewDomainError(ErrCodeInvalidUnitDescription, "invalid unit description")
	ErrUnknownItem            = NewDomainError(ErrCodeUnknownItem, "unknown item")
	ErrTextNotEncodable       = NewDomainError(ErrCodeTextNotEncodable, "text not encodable in device charset")
	ErrTextTooLong            = NewDomainError(ErrCodeTextTooLong, "text too long")
	ErrInvalidState           = NewDomainError(ErrCodeInvalidState, "operation not allowed in current state")
	ErrInsufficientPayment    = NewDomainError(ErrCodeInsufficientPayment, "payments do not cover the totalized value")
	ErrTransport              = NewDomainError(ErrCodeTransport, "device communication failure")
	ErrCouponNotFound         = NewDomainError(ErrCodeCouponNotFound, "coupon not found")
)

// ValidationError reports a malformed or out-of-capability argument. It is
// always raised before any device command.
type ValidationError struct {
	Field      string
	Code       string
	Constraint string
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, code, constraint string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Constraint: constraint}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Constraint)
}

// Is reports whether target is the error kind with the same code.
func (e *ValidationError) Is(target error) bool {
	d, ok := target.(*DomainError)
	return ok && d.Code == e.Code
}

// StateError reports an operation that is illegal in the current coupon state.
type StateError struct {
	State     CouponStatus
	Operation string
	Reason    string
}

func (e *StateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s not allowed while coupon is %s: %s", e.Operation, e.State, e.Reason)
	}
	return fmt.Sprintf("%s not allowed while coupon is %s", e.Operation, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// InsufficientPaymentError is returned by close when the payments added so far
// do not cover the totalized value.
type InsufficientPaymentError struct {
	Totalized decimal.Decimal
	Paid      decimal.Decimal
}

// Deficit is the amount still missing.
func (e *InsufficientPaymentError) Deficit() decimal.Decimal {
	return e.Totalized.Sub(e.Paid)
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payments total (%s) does not cover the totalized value (%s): missing %s",
		e.Paid.StringFixed(2), e.Totalized.StringFixed(2), e.Deficit().StringFixed(2))
}

func (e *InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}

// TransportError is a communication failure with the device, or any device
// failure that is not one of the recoverable conditions. The in-progress
// coupon must be treated as abandoned.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("device %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
