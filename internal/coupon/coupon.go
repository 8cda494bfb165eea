// Package coupon implements the fiscal coupon lifecycle: an explicit state
// machine that validates every argument against the device capabilities,
// permits only legal command sequences and dispatches them to a driver.
package coupon

import (
	"context"
	"slices"

	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// Printer is the coupon surface of one fiscal device.
type Printer interface {
	// Open starts a coupon. A coupon left open on the device is adopted as
	// stale and reported with model.ErrCouponOpen.
	Open(ctx context.Context) error
	IdentifyCustomer(ctx context.Context, customer Customer) error
	// AddItem returns the handle of the item inside the current coupon.
	AddItem(ctx context.Context, spec ItemSpec) (model.ItemHandle, error)
	CancelItem(ctx context.Context, handle model.ItemHandle) error
	Cancel(ctx context.Context) error
	// Totalize returns the total computed by the device.
	Totalize(ctx context.Context, discount, charge decimal.Decimal, tax model.TaxCode) (decimal.Decimal, error)
	AddPayment(ctx context.Context, method model.PaymentMethod, value decimal.Decimal, description string) error
	// Close fails with *model.InsufficientPaymentError while the payments
	// do not cover the totalized value.
	Close(ctx context.Context, message string) (model.CouponID, error)

	// Till commands are legal only while no coupon is in progress. A
	// transport error during any command abandons the current coupon.
	Status(ctx context.Context) (model.DeviceStatus, error)
	Summarize(ctx context.Context) error
	CloseTill(ctx context.Context) error
	TillAddCash(ctx context.Context, value decimal.Decimal) error
	TillRemoveCash(ctx context.Context, value decimal.Decimal) error

	// Capabilities returns the capability set cached for the session. It
	// never reaches the device.
	Capabilities() capability.Set

	// State is the status of the current coupon.
	State() model.CouponStatus

	// Current returns a snapshot of the coupon in progress.
	Current() Coupon

	// Last returns a snapshot of the most recently finished coupon (closed,
	// cancelled or abandoned), or nil.
	Last() *Coupon
}

// ItemSpec describes an item to add, before validation.
type ItemSpec struct {
	Code            string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Unit            model.Unit
	UnitDescription string
	TaxCode         model.TaxCode
	Discount        decimal.Decimal
	Charge          decimal.Decimal
}

// Customer identifies the buyer printed on the coupon.
type Customer struct {
	Name     string
	Address  string
	Document string
}

// Item is an item of a coupon.
type Item struct {
	Handle          model.ItemHandle
	Code            string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Unit            model.Unit
	UnitDescription string
	TaxCode         model.TaxCode
	Discount        decimal.Decimal
	Charge          decimal.Decimal
	Cancelled       bool
}

// Payment is a payment of a coupon.
type Payment struct {
	Method      model.PaymentMethod
	Value       decimal.Decimal
	Description string
}

// Coupon is one sale, from Idle to Closed or Cancelled.
type Coupon struct {
	Status   model.CouponStatus
	Customer *Customer
	Items    []Item
	Payments []Payment

	// TotalizedValue is nil until the coupon is totalized.
	TotalizedValue *decimal.Decimal
	PaymentsTotal  decimal.Decimal

	// HasBeenTotalized never goes back to false within a coupon.
	HasBeenTotalized bool

	// CouponID is the number the device assigned on close.
	CouponID           model.CouponID
	PromotionalMessage string

	// Abandoned is set when a transport failure left the device state
	// unknown.
	Abandoned bool

	// Stale is set when Open found a coupon the device already had open.
	// The only legal operation on it is Cancel.
	Stale bool
}

// Change is what the customer gets back once payments exceed the total.
func (c Coupon) Change() decimal.Decimal {
	if c.TotalizedValue == nil || c.PaymentsTotal.LessThan(*c.TotalizedValue) {
		return decimal.Zero
	}
	return c.PaymentsTotal.Sub(*c.TotalizedValue)
}

func (c *Coupon) item(handle model.ItemHandle) *Item {
	for i := range c.Items {
		if c.Items[i].Handle == handle {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Coupon) clone() Coupon {
	out := *c
	out.Items = slices.Clone(c.Items)
	out.Payments = slices.Clone(c.Payments)
	if c.Customer != nil {
		customer := *c.Customer
		out.Customer = &customer
	}
	if c.TotalizedValue != nil {
		v := *c.TotalizedValue
		out.TotalizedValue = &v
	}
	return out
}
