package service

import (
	"context"
	"fmt"
	"time"

	"fiscal-coupon/internal/coupon"
	"fiscal-coupon/internal/model"
	"fiscal-coupon/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// journaler writes finished coupons and till movements.
type journaler struct {
	coupons repository.JournalRepository
	till    repository.TillRepository
	logger  zerolog.Logger
}

// couponRecord converts a finished coupon into its journal form.
func couponRecord(c *coupon.Coupon, at time.Time) (*model.CouponRecord, []model.CouponItemRecord, []model.CouponPaymentRecord) {
	record := &model.CouponRecord{
		ID:                 uuid.New(),
		Status:             c.Status.String(),
		Abandoned:          c.Abandoned,
		PaymentsTotal:      c.PaymentsTotal,
		PromotionalMessage: c.PromotionalMessage,
		CreatedAt:          at,
	}
	if c.Status == model.StatusClosed {
		id := c.CouponID
		record.CouponID = &id
	}
	if c.TotalizedValue != nil {
		record.TotalizedValue = decimal.NewNullDecimal(*c.TotalizedValue)
	}
	if c.Customer != nil {
		record.CustomerName = c.Customer.Name
		record.CustomerDocument = c.Customer.Document
	}

	items := make([]model.CouponItemRecord, len(c.Items))
	for i, it := range c.Items {
		items[i] = model.CouponItemRecord{
			ID:              uuid.New(),
			CouponRecordID:  record.ID,
			Position:        i + 1,
			Handle:          it.Handle,
			Code:            it.Code,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			Unit:            it.Unit.String(),
			UnitDescription: it.UnitDescription,
			TaxCode:         it.TaxCode.String(),
			Discount:        it.Discount,
			Charge:          it.Charge,
			Cancelled:       it.Cancelled,
		}
	}

	payments := make([]model.CouponPaymentRecord, len(c.Payments))
	for i, p := range c.Payments {
		payments[i] = model.CouponPaymentRecord{
			ID:             uuid.New(),
			CouponRecordID: record.ID,
			Position:       i + 1,
			Method:         p.Method.String(),
			Value:          p.Value,
			Description:    p.Description,
		}
	}

	return record, items, payments
}

// recordCoupon writes a finished coupon with its items and payments in one
// transaction.
func (j *journaler) recordCoupon(ctx context.Context, c *coupon.Coupon) (_ *model.CouponRecord, err error) {
	record, items, payments := couponRecord(c, time.Now())

	tx, err := j.coupons.BeginTx(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to journal coupon: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				j.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = j.coupons.CreateCoupon(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("failed to journal coupon: %w", err)
	}

	if err = j.coupons.CreateCouponItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to journal coupon items: %w", err)
	}

	if err = j.coupons.CreateCouponPayments(ctx, tx, payments); err != nil {
		return nil, fmt.Errorf("failed to journal coupon payments: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		j.logger.Error().Err(err).Str("journal_id", record.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to journal coupon: %w", err)
	}

	j.logger.Info().
		Str("journal_id", record.ID.String()).
		Str("status", record.Status).
		Bool("abandoned", record.Abandoned).
		Int("item_count", len(items)).
		Msg("coupon journaled")

	return record, nil
}

// recordMovement records a till movement. value is nil for movements that
// carry no amount.
func (j *journaler) recordMovement(ctx context.Context, kind string, value *decimal.Decimal) error {
	m := &model.TillMovement{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	if value != nil {
		m.Value = decimal.NewNullDecimal(*value)
	}

	if err := j.till.RecordMovement(ctx, m); err != nil {
		return fmt.Errorf("failed to journal till movement: %w", err)
	}
	return nil
}
