package service

import (
	"context"

	"fiscal-coupon/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJournalRepository) CreateCoupon(ctx context.Context, tx pgx.Tx, record *model.CouponRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockJournalRepository) CreateCouponItems(ctx context.Context, tx pgx.Tx, items []model.CouponItemRecord) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockJournalRepository) CreateCouponPayments(ctx context.Context, tx pgx.Tx, payments []model.CouponPaymentRecord) error {
	args := m.Called(ctx, tx, payments)
	return args.Error(0)
}

func (m *MockJournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CouponRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CouponRecord), args.Error(1)
}

// MockTillRepository is a mock implementation of TillRepository.
type MockTillRepository struct {
	mock.Mock
}

func (m *MockTillRepository) RecordMovement(ctx context.Context, movement *model.TillMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockTillRepository) ListMovements(ctx context.Context, limit, offset int) ([]model.TillMovement, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TillMovement), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// expectJournal sets up a successful journal write and returns the
// transaction it runs in.
func expectJournal(repo *MockJournalRepository) *MockTx {
	tx := new(MockTx)
	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("CreateCoupon", mock.Anything, tx, mock.AnythingOfType("*model.CouponRecord")).Return(nil)
	repo.On("CreateCouponItems", mock.Anything, tx, mock.AnythingOfType("[]model.CouponItemRecord")).Return(nil)
	repo.On("CreateCouponPayments", mock.Anything, tx, mock.AnythingOfType("[]model.CouponPaymentRecord")).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)
	return tx
}

// journaled returns the coupon records written through repo, in order.
func journaled(repo *MockJournalRepository) []*model.CouponRecord {
	var records []*model.CouponRecord
	for _, call := range repo.Calls {
		if call.Method == "CreateCoupon" {
			records = append(records, call.Arguments.Get(2).(*model.CouponRecord))
		}
	}
	return records
}

// movements returns the till movements written through repo, in order.
func movements(repo *MockTillRepository) []string {
	var kinds []string
	for _, call := range repo.Calls {
		if call.Method == "RecordMovement" {
			kinds = append(kinds, call.Arguments.Get(1).(*model.TillMovement).Kind)
		}
	}
	return kinds
}
