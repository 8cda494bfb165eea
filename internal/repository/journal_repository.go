package repository

import (
	"context"
	"errors"
	"fmt"

	"fiscal-coupon/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// journalRepository implements the JournalRepository interface using PostgreSQL.
type journalRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewJournalRepository creates a new PostgreSQL-backed coupon journal.
func NewJournalRepository(pool *pgxpool.Pool, logger zerolog.Logger) JournalRepository {
	return &journalRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "journal").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *journalRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateCoupon inserts a finished coupon within the provided transaction.
func (r *journalRepository) CreateCoupon(ctx context.Context, tx pgx.Tx, record *model.CouponRecord) error {
	query := `
		INSERT INTO coupon_records (
			id, coupon_id, status, abandoned, customer_name, customer_document,
			totalized_value, payments_total, promotional_message, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var couponID *int64
	if record.CouponID != nil {
		id := int64(*record.CouponID)
		couponID = &id
	}

	_, err := tx.Exec(ctx, query,
		record.ID,
		couponID,
		record.Status,
		record.Abandoned,
		record.CustomerName,
		record.CustomerDocument,
		record.TotalizedValue,
		record.PaymentsTotal,
		record.PromotionalMessage,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("journal_id", record.ID.String()).
			Msg("failed to create coupon record")
		return fmt.Errorf("failed to create coupon record: %w", err)
	}

	r.logger.Debug().
		Str("journal_id", record.ID.String()).
		Str("status", record.Status).
		Msg("coupon record created successfully")

	return nil
}

// CreateCouponItems inserts the items of a coupon within the provided transaction.
func (r *journalRepository) CreateCouponItems(ctx context.Context, tx pgx.Tx, items []model.CouponItemRecord) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO coupon_items (
			id, coupon_record_id, position, handle, code, description, quantity,
			unit_price, unit, unit_description, tax_code, discount, charge, cancelled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.CouponRecordID, item.Position, int(item.Handle), item.Code,
			item.Description, item.Quantity, item.UnitPrice, item.Unit,
			item.UnitDescription, item.TaxCode, item.Discount, item.Charge, item.Cancelled,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("journal_id", items[i].CouponRecordID.String()).
				Int("position", items[i].Position).
				Msg("failed to create coupon item")
			return fmt.Errorf("failed to create coupon item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("coupon items created successfully")

	return nil
}

// CreateCouponPayments inserts the payments of a coupon within the provided transaction.
func (r *journalRepository) CreateCouponPayments(ctx context.Context, tx pgx.Tx, payments []model.CouponPaymentRecord) error {
	if len(payments) == 0 {
		return nil
	}

	query := `
		INSERT INTO coupon_payments (id, coupon_record_id, position, method, value, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, p := range payments {
		batch.Queue(query, p.ID, p.CouponRecordID, p.Position, p.Method, p.Value, p.Description)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(payments); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("journal_id", payments[i].CouponRecordID.String()).
				Int("position", payments[i].Position).
				Msg("failed to create coupon payment")
			return fmt.Errorf("failed to create coupon payment: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(payments)).
		Msg("coupon payments created successfully")

	return nil
}

// GetByID retrieves a journaled coupon with its items and payments.
func (r *journalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CouponRecord, error) {
	recordQuery := `
		SELECT id, coupon_id, status, abandoned, customer_name, customer_document,
			totalized_value, payments_total, promotional_message, created_at
		FROM coupon_records
		WHERE id = $1
	`

	var (
		record   model.CouponRecord
		couponID *int64
	)
	err := r.pool.QueryRow(ctx, recordQuery, id).Scan(
		&record.ID,
		&couponID,
		&record.Status,
		&record.Abandoned,
		&record.CustomerName,
		&record.CustomerDocument,
		&record.TotalizedValue,
		&record.PaymentsTotal,
		&record.PromotionalMessage,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("journal_id", id.String()).Msg("coupon record not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("journal_id", id.String()).Msg("failed to query coupon record")
		return nil, fmt.Errorf("failed to query coupon record: %w", err)
	}
	if couponID != nil {
		cid := model.CouponID(*couponID)
		record.CouponID = &cid
	}

	record.Items, err = r.items(ctx, id)
	if err != nil {
		return nil, err
	}

	record.Payments, err = r.payments(ctx, id)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *journalRepository) items(ctx context.Context, recordID uuid.UUID) ([]model.CouponItemRecord, error) {
	query := `
		SELECT id, coupon_record_id, position, handle, code, description, quantity,
			unit_price, unit, unit_description, tax_code, discount, charge, cancelled
		FROM coupon_items
		WHERE coupon_record_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("journal_id", recordID.String()).
			Msg("failed to query coupon items")
		return nil, fmt.Errorf("failed to query coupon items: %w", err)
	}
	defer rows.Close()

	items := []model.CouponItemRecord{}
	for rows.Next() {
		var (
			item   model.CouponItemRecord
			handle int
		)
		err := rows.Scan(
			&item.ID, &item.CouponRecordID, &item.Position, &handle, &item.Code,
			&item.Description, &item.Quantity, &item.UnitPrice, &item.Unit,
			&item.UnitDescription, &item.TaxCode, &item.Discount, &item.Charge, &item.Cancelled,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon item row")
			return nil, fmt.Errorf("failed to scan coupon item: %w", err)
		}
		item.Handle = model.ItemHandle(handle)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon item rows")
		return nil, fmt.Errorf("error iterating coupon items: %w", err)
	}

	return items, nil
}

func (r *journalRepository) payments(ctx context.Context, recordID uuid.UUID) ([]model.CouponPaymentRecord, error) {
	query := `
		SELECT id, coupon_record_id, position, method, value, description
		FROM coupon_payments
		WHERE coupon_record_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, recordID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("journal_id", recordID.String()).
			Msg("failed to query coupon payments")
		return nil, fmt.Errorf("failed to query coupon payments: %w", err)
	}
	defer rows.Close()

	payments := []model.CouponPaymentRecord{}
	for rows.Next() {
		var p model.CouponPaymentRecord
		if err := rows.Scan(&p.ID, &p.CouponRecordID, &p.Position, &p.Method, &p.Value, &p.Description); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon payment row")
			return nil, fmt.Errorf("failed to scan coupon payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon payment rows")
		return nil, fmt.Errorf("error iterating coupon payments: %w", err)
	}

	return payments, nil
}
