package service

import (
	"context"
	"fmt"

	"fiscal-coupon/internal/model"
	"fiscal-coupon/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// tillService implements TillService.
type tillService struct {
	session *Session
	journal *journaler
	logger  zerolog.Logger
}

// NewTillService creates a new till service.
func NewTillService(session *Session, tillRepo repository.TillRepository, logger zerolog.Logger) TillService {
	logger = logger.With().Str("service", "till").Logger()
	return &tillService{
		session: session,
		journal: &journaler{till: tillRepo, logger: logger},
		logger:  logger,
	}
}

func (s *tillService) Status(ctx context.Context) (model.DeviceStatus, error) {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	return s.session.printer.Status(ctx)
}

func (s *tillService) Summarize(ctx context.Context) error {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if err := s.session.printer.Summarize(ctx); err != nil {
		return err
	}
	return s.journal.recordMovement(ctx, model.MovementSummarize, nil)
}

func (s *tillService) CloseTill(ctx context.Context) error {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if err := s.session.printer.CloseTill(ctx); err != nil {
		return err
	}
	return s.journal.recordMovement(ctx, model.MovementCloseTill, nil)
}

func (s *tillService) AddCash(ctx context.Context, req *model.CashRequest) error {
	value, err := cashValue(req)
	if err != nil {
		return err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if err := s.session.printer.TillAddCash(ctx, value); err != nil {
		return err
	}

	s.logger.Info().Str("value", value.StringFixed(2)).Msg("cash added to till")
	return s.journal.recordMovement(ctx, model.MovementCashIn, &value)
}

func (s *tillService) RemoveCash(ctx context.Context, req *model.CashRequest) error {
	value, err := cashValue(req)
	if err != nil {
		return err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if err := s.session.printer.TillRemoveCash(ctx, value); err != nil {
		return err
	}

	s.logger.Info().Str("value", value.StringFixed(2)).Msg("cash removed from till")
	return s.journal.recordMovement(ctx, model.MovementCashOut, &value)
}

// Movements lists journaled till movements, newest first.
func (s *tillService) Movements(ctx context.Context, limit, offset int) ([]model.TillMovement, error) {
	movements, err := s.journal.till.ListMovements(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list till movements")
		return nil, fmt.Errorf("failed to list till movements: %w", err)
	}
	return movements, nil
}

func cashValue(req *model.CashRequest) (decimal.Decimal, error) {
	if req == nil {
		return decimal.Zero, model.NewValidationError("value", model.ErrCodeInvalidValue, "cash value is required")
	}
	return req.Value, nil
}
