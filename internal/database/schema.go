package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the fiscal journal schema. Every statement is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS coupon_records (
		id UUID PRIMARY KEY,
		coupon_id BIGINT,
		status TEXT NOT NULL,
		abandoned BOOLEAN NOT NULL DEFAULT FALSE,
		customer_name TEXT NOT NULL DEFAULT '',
		customer_document TEXT NOT NULL DEFAULT '',
		totalized_value NUMERIC(14,2),
		payments_total NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (payments_total >= 0),
		promotional_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_coupon_records_created_at ON coupon_records(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_coupon_records_coupon_id ON coupon_records(coupon_id);

	CREATE TABLE IF NOT EXISTS coupon_items (
		id UUID PRIMARY KEY,
		coupon_record_id UUID NOT NULL REFERENCES coupon_records(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		handle INTEGER NOT NULL,
		code TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quantity NUMERIC NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(14,2) NOT NULL CHECK (unit_price > 0),
		unit TEXT NOT NULL,
		unit_description TEXT NOT NULL DEFAULT '',
		tax_code TEXT NOT NULL,
		discount NUMERIC NOT NULL DEFAULT 0 CHECK (discount BETWEEN 0 AND 100),
		charge NUMERIC NOT NULL DEFAULT 0 CHECK (charge BETWEEN 0 AND 100),
		cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (coupon_record_id, position)
	);

	CREATE TABLE IF NOT EXISTS coupon_payments (
		id UUID PRIMARY KEY,
		coupon_record_id UUID NOT NULL REFERENCES coupon_records(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		method TEXT NOT NULL,
		value NUMERIC(14,2) NOT NULL CHECK (value > 0),
		description TEXT NOT NULL DEFAULT '',
		UNIQUE (coupon_record_id, position)
	);

	CREATE TABLE IF NOT EXISTS till_movements (
		id UUID PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('cash_in', 'cash_out', 'summarize', 'close_till')),
		value NUMERIC(14,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_till_movements_created_at ON till_movements(created_at DESC);
`

// Migrate creates the journal tables when they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply journal schema")
		return fmt.Errorf("failed to apply journal schema: %w", err)
	}

	logger.Info().Msg("journal schema applied")
	return nil
}
