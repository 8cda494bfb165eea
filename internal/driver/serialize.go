package driver

import (
	"context"
	"sync"

	"fiscal-coupon/internal/argument"
	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// serialized holds a lock for the duration of every command so at most one
// command is in flight on the device.
type serialized struct {
	mu   sync.Mutex
	next Driver
}

// Serialize wraps d so that concurrent callers never interleave commands.
// Errors returned by the wrapper follow the contract enforced by Classify.
func Serialize(d Driver) Driver {
	if s, ok := d.(*serialized); ok {
		return s
	}
	return &serialized{next: d}
}

func (s *serialized) Capabilities(ctx context.Context) (capability.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.next.Capabilities(ctx)
	return set, Classify("capabilities", err)
}

func (s *serialized) Charset() string {
	return s.next.Charset()
}

func (s *serialized) IdentifyCustomer(ctx context.Context, cmd CustomerCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("identify_customer", s.next.IdentifyCustomer(ctx, cmd))
}

func (s *serialized) OpenCoupon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("open_coupon", s.next.OpenCoupon(ctx))
}

func (s *serialized) AddItem(ctx context.Context, cmd ItemCommand) (model.ItemHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle, err := s.next.AddItem(ctx, cmd)
	return handle, Classify("add_item", err)
}

func (s *serialized) CancelItem(ctx context.Context, handle model.ItemHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("cancel_item", s.next.CancelItem(ctx, handle))
}

func (s *serialized) CancelCoupon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("cancel_coupon", s.next.CancelCoupon(ctx))
}

func (s *serialized) Totalize(ctx context.Context, cmd TotalizeCommand) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, err := s.next.Totalize(ctx, cmd)
	return total, Classify("totalize", err)
}

func (s *serialized) AddPayment(ctx context.Context, cmd PaymentCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("add_payment", s.next.AddPayment(ctx, cmd))
}

func (s *serialized) CloseCoupon(ctx context.Context, message []byte) (model.CouponID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.next.CloseCoupon(ctx, message)
	return id, Classify("close_coupon", err)
}

func (s *serialized) Summarize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("summarize", s.next.Summarize(ctx))
}

func (s *serialized) CloseTill(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("close_till", s.next.CloseTill(ctx))
}

func (s *serialized) TillAddCash(ctx context.Context, value argument.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("till_add_cash", s.next.TillAddCash(ctx, value))
}

func (s *serialized) TillRemoveCash(ctx context.Context, value argument.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Classify("till_remove_cash", s.next.TillRemoveCash(ctx, value))
}

func (s *serialized) Status(ctx context.Context) (model.DeviceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, err := s.next.Status(ctx)
	return status, Classify("status", err)
}
