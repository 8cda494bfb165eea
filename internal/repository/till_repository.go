package repository

import (
	"context"
	"fmt"

	"fiscal-coupon/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// tillRepository implements the TillRepository interface using PostgreSQL.
type tillRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTillRepository creates a new PostgreSQL-backed till journal.
func NewTillRepository(pool *pgxpool.Pool, logger zerolog.Logger) TillRepository {
	return &tillRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "till").Logger(),
	}
}

// RecordMovement inserts a till movement.
func (r *tillRepository) RecordMovement(ctx context.Context, movement *model.TillMovement) error {
	query := `
		INSERT INTO till_movements (id, kind, value, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, movement.ID, movement.Kind, movement.Value, movement.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("movement_id", movement.ID.String()).
			Str("kind", movement.Kind).
			Msg("failed to record till movement")
		return fmt.Errorf("failed to record till movement: %w", err)
	}

	r.logger.Debug().
		Str("movement_id", movement.ID.String()).
		Str("kind", movement.Kind).
		Msg("till movement recorded")

	return nil
}

// ListMovements retrieves till movements, newest first, with pagination support.
func (r *tillRepository) ListMovements(ctx context.Context, limit, offset int) ([]model.TillMovement, error) {
	query := `
		SELECT id, kind, value, created_at
		FROM till_movements
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query till movements")
		return nil, fmt.Errorf("failed to query till movements: %w", err)
	}
	defer rows.Close()

	movements := []model.TillMovement{}
	for rows.Next() {
		var m model.TillMovement
		if err := rows.Scan(&m.ID, &m.Kind, &m.Value, &m.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan till movement row")
			return nil, fmt.Errorf("failed to scan till movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating till movement rows")
		return nil, fmt.Errorf("error iterating till movements: %w", err)
	}

	return movements, nil
}
