// Package driver defines the command sink a fiscal device exposes to the
// coupon state machine.
//
// A Driver executes exactly one command per call and blocks until the device
// answers. Text arguments arrive already encoded in the device charset and
// numeric arguments arrive as validated values. Errors are one of the
// recoverable device conditions (model.ErrPendingReadX,
// model.ErrPendingReduceZ, model.ErrCouponOpen) or a *model.TransportError.
package driver

import (
	"context"

	"fiscal-coupon/internal/argument"
	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// Driver is the narrow interface of a fiscal printer.
type Driver interface {
	// Capabilities reports what the device accepts.
	Capabilities(ctx context.Context) (capability.Set, error)

	// Charset returns the name of the device code page.
	Charset() string

	IdentifyCustomer(ctx context.Context, cmd CustomerCommand) error
	OpenCoupon(ctx context.Context) error
	AddItem(ctx context.Context, cmd ItemCommand) (model.ItemHandle, error)
	CancelItem(ctx context.Context, handle model.ItemHandle) error
	CancelCoupon(ctx context.Context) error

	// Totalize fixes the payable amount of the open coupon and returns it.
	Totalize(ctx context.Context, cmd TotalizeCommand) (decimal.Decimal, error)

	AddPayment(ctx context.Context, cmd PaymentCommand) error

	// CloseCoupon prints the promotional message and returns the number the
	// device assigned to the coupon.
	CloseCoupon(ctx context.Context, message []byte) (model.CouponID, error)

	// Summarize prints a read X and clears a pending read X.
	Summarize(ctx context.Context) error

	// CloseTill prints a reduce Z and clears a pending reduce Z.
	CloseTill(ctx context.Context) error

	TillAddCash(ctx context.Context, value argument.Amount) error
	TillRemoveCash(ctx context.Context, value argument.Amount) error
	Status(ctx context.Context) (model.DeviceStatus, error)
}

// CustomerCommand identifies the customer of the next or current coupon.
type CustomerCommand struct {
	Name     []byte
	Address  []byte
	Document []byte
}

// ItemCommand adds an item to the open coupon.
type ItemCommand struct {
	Code            []byte
	Description     []byte
	Quantity        argument.Quantity
	UnitPrice       argument.Amount
	Unit            model.Unit
	UnitDescription []byte
	TaxCode         model.TaxCode
	Discount        argument.Percentage
	Charge          argument.Percentage
}

// TotalizeCommand totalizes the open coupon.
type TotalizeCommand struct {
	Discount argument.Percentage
	Charge   argument.Percentage
	TaxCode  model.TaxCode
}

// PaymentCommand adds a payment to a totalized coupon.
type PaymentCommand struct {
	Method      model.PaymentMethod
	Value       argument.Amount
	Description []byte
}
