package handler

import (
	"context"

	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCouponService is a mock implementation of CouponService.
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Capabilities() capability.Set {
	args := m.Called()
	return args.Get(0).(capability.Set)
}

func (m *MockCouponService) Current() *model.CouponView {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.CouponView)
}

func (m *MockCouponService) Open(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCouponService) IdentifyCustomer(ctx context.Context, req *model.CustomerRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCouponService) AddItem(ctx context.Context, req *model.ItemRequest) (*model.ItemResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ItemResponse), args.Error(1)
}

func (m *MockCouponService) CancelItem(ctx context.Context, handle model.ItemHandle) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

func (m *MockCouponService) Totalize(ctx context.Context, req *model.TotalizeRequest) (*model.TotalizeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TotalizeResponse), args.Error(1)
}

func (m *MockCouponService) AddPayment(ctx context.Context, req *model.PaymentRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCouponService) Close(ctx context.Context, req *model.CloseRequest) (*model.CouponResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CouponResponse), args.Error(1)
}

func (m *MockCouponService) Cancel(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCouponService) Issue(ctx context.Context, req *model.CouponRequest) (*model.CouponResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CouponResponse), args.Error(1)
}

func (m *MockCouponService) GetByID(ctx context.Context, id uuid.UUID) (*model.CouponRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CouponRecord), args.Error(1)
}

// MockTillService is a mock implementation of TillService.
type MockTillService struct {
	mock.Mock
}

func (m *MockTillService) Status(ctx context.Context) (model.DeviceStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.DeviceStatus), args.Error(1)
}

func (m *MockTillService) Summarize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTillService) CloseTill(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTillService) AddCash(ctx context.Context, req *model.CashRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockTillService) RemoveCash(ctx context.Context, req *model.CashRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockTillService) Movements(ctx context.Context, limit, offset int) ([]model.TillMovement, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TillMovement), args.Error(1)
}
