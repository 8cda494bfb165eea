package driver

import (
	"errors"

	"fiscal-coupon/internal/model"
)

// Classify maps a driver error onto the device error contract. The
// recoverable device conditions and transport errors pass through unchanged;
// anything else is wrapped as a transport error for op.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrPendingReadX),
		errors.Is(err, model.ErrPendingReduceZ),
		errors.Is(err, model.ErrCouponOpen):
		return err
	}

	var tErr *model.TransportError
	if errors.As(err, &tErr) {
		return err
	}

	return &model.TransportError{Op: op, Err: err}
}

// IsRecoverable reports whether err is a device condition the caller can
// clear with a recovery operation.
func IsRecoverable(err error) bool {
	return errors.Is(err, model.ErrPendingReadX) ||
		errors.Is(err, model.ErrPendingReduceZ) ||
		errors.Is(err, model.ErrCouponOpen)
}
