package service

import (
	"context"
	"sync"

	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/coupon"
	"fiscal-coupon/internal/model"

	"github.com/google/uuid"
)

// CouponService drives the coupon of one fiscal device, either one
// operation at a time or as a whole in a single call.
type CouponService interface {
	// Capabilities returns the capability set of the device.
	Capabilities() capability.Set

	// Current returns a snapshot of the coupon in progress.
	Current() *model.CouponView

	Open(ctx context.Context) error
	IdentifyCustomer(ctx context.Context, req *model.CustomerRequest) error
	AddItem(ctx context.Context, req *model.ItemRequest) (*model.ItemResponse, error)
	CancelItem(ctx context.Context, handle model.ItemHandle) error
	Totalize(ctx context.Context, req *model.TotalizeRequest) (*model.TotalizeResponse, error)
	AddPayment(ctx context.Context, req *model.PaymentRequest) error
	Close(ctx context.Context, req *model.CloseRequest) (*model.CouponResponse, error)
	Cancel(ctx context.Context) error

	// Issue opens, fills, totalizes, pays and closes a coupon in one call,
	// recovering from pending device conditions on the way.
	Issue(ctx context.Context, req *model.CouponRequest) (*model.CouponResponse, error)

	// GetByID retrieves a journaled coupon. It returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CouponRecord, error)
}

// TillService runs the till-level commands of the device.
type TillService interface {
	Status(ctx context.Context) (model.DeviceStatus, error)
	Summarize(ctx context.Context) error
	CloseTill(ctx context.Context) error
	AddCash(ctx context.Context, req *model.CashRequest) error
	RemoveCash(ctx context.Context, req *model.CashRequest) error

	// Movements lists journaled till movements, newest first.
	Movements(ctx context.Context, limit, offset int) ([]model.TillMovement, error)
}

// Session owns the printer of one device. Its lock keeps a one-shot issue
// flow from interleaving with step-by-step calls on the same device.
type Session struct {
	mu      sync.Mutex
	printer coupon.Printer
}

// NewSession creates a session over printer.
func NewSession(printer coupon.Printer) *Session {
	return &Session{printer: printer}
}
