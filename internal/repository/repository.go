package repository

import (
	"context"

	"fiscal-coupon/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JournalRepository defines the data access operations of the coupon journal.
type JournalRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateCoupon inserts a finished coupon within the provided transaction.
	CreateCoupon(ctx context.Context, tx pgx.Tx, record *model.CouponRecord) error

	// CreateCouponItems inserts the items of a coupon within the provided transaction.
	CreateCouponItems(ctx context.Context, tx pgx.Tx, items []model.CouponItemRecord) error

	// CreateCouponPayments inserts the payments of a coupon within the provided transaction.
	CreateCouponPayments(ctx context.Context, tx pgx.Tx, payments []model.CouponPaymentRecord) error

	// GetByID retrieves a journaled coupon with its items and payments.
	// It returns nil when no coupon has that ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CouponRecord, error)
}

// TillRepository defines the data access operations of the till journal.
type TillRepository interface {
	// RecordMovement inserts a till movement.
	RecordMovement(ctx context.Context, movement *model.TillMovement) error

	// ListMovements retrieves till movements, newest first, with pagination support.
	ListMovements(ctx context.Context, limit, offset int) ([]model.TillMovement, error)
}
