package service

import (
	"context"
	"errors"
	"fmt"

	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/config"
	"fiscal-coupon/internal/model"
	"fiscal-coupon/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Recovery actions reported in CouponResponse.Recoveries.
const (
	RecoveryCancelCoupon = "cancel_coupon"
	RecoverySummarize    = "summarize"
	RecoveryCloseTill    = "close_till"
)

// couponService implements CouponService.
type couponService struct {
	session  *Session
	journal  *journaler
	recovery config.RecoveryConfig
	logger   zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	session *Session,
	journalRepo repository.JournalRepository,
	tillRepo repository.TillRepository,
	recovery config.RecoveryConfig,
	logger zerolog.Logger,
) CouponService {
	logger = logger.With().Str("service", "coupon").Logger()
	return &couponService{
		session:  session,
		journal:  &journaler{coupons: journalRepo, till: tillRepo, logger: logger},
		recovery: recovery,
		logger:   logger,
	}
}

func (s *couponService) Capabilities() capability.Set {
	return s.session.printer.Capabilities()
}

func (s *couponService) Current() *model.CouponView {
	return couponView(s.session.printer.Current())
}

func (s *couponService) Open(ctx context.Context) error {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	return s.session.printer.Open(ctx)
}

func (s *couponService) IdentifyCustomer(ctx context.Context, req *model.CustomerRequest) error {
	if req == nil {
		return model.NewValidationError("customer", model.ErrCodeInvalidValue, "customer is required")
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	_, err := s.run(ctx, func() error {
		return s.session.printer.IdentifyCustomer(ctx, customer(req))
	})
	return err
}

func (s *couponService) AddItem(ctx context.Context, req *model.ItemRequest) (*model.ItemResponse, error) {
	spec, err := itemSpec(req)
	if err != nil {
		return nil, err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	var handle model.ItemHandle
	_, err = s.run(ctx, func() error {
		var addErr error
		handle, addErr = s.session.printer.AddItem(ctx, spec)
		return addErr
	})
	if err != nil {
		return nil, err
	}

	return &model.ItemResponse{Handle: handle}, nil
}

func (s *couponService) CancelItem(ctx context.Context, handle model.ItemHandle) error {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	_, err := s.run(ctx, func() error {
		return s.session.printer.CancelItem(ctx, handle)
	})
	return err
}

func (s *couponService) Totalize(ctx context.Context, req *model.TotalizeRequest) (*model.TotalizeResponse, error) {
	if req == nil {
		req = &model.TotalizeRequest{}
	}
	tax, err := taxCode(req.TaxCode)
	if err != nil {
		return nil, err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	var total decimal.Decimal
	_, err = s.run(ctx, func() error {
		var totErr error
		total, totErr = s.session.printer.Totalize(ctx, req.Discount, req.Charge, tax)
		return totErr
	})
	if err != nil {
		return nil, err
	}

	return &model.TotalizeResponse{TotalizedValue: total}, nil
}

func (s *couponService) AddPayment(ctx context.Context, req *model.PaymentRequest) error {
	if req == nil {
		return model.NewValidationError("payment", model.ErrCodeInvalidValue, "payment is required")
	}
	method, err := model.ParsePaymentMethod(req.Method)
	if err != nil {
		return err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	_, err = s.run(ctx, func() error {
		return s.session.printer.AddPayment(ctx, method, req.Value, req.Description)
	})
	return err
}

func (s *couponService) Close(ctx context.Context, req *model.CloseRequest) (*model.CouponResponse, error) {
	var message string
	if req != nil {
		message = req.PromotionalMessage
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	return s.close(ctx, message)
}

func (s *couponService) Cancel(ctx context.Context) error {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	_, err := s.run(ctx, func() error {
		return s.session.printer.Cancel(ctx)
	})
	return err
}

// Issue runs the whole coupon under the session lock. Pending device
// conditions met on open are recovered from and the open retried, up to the
// configured number of attempts. A failure after open cancels the coupon
// while it can still be cancelled; a totalized coupon is left in progress
// so the caller can pay and close it.
func (s *couponService) Issue(ctx context.Context, req *model.CouponRequest) (*model.CouponResponse, error) {
	plan, err := issuePlan(req)
	if err != nil {
		s.logger.Warn().Err(err).Msg("invalid coupon request")
		return nil, err
	}

	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if state := s.session.printer.State(); state != model.StatusIdle {
		return nil, &model.StateError{State: state, Operation: "issue",
			Reason: "a coupon is already in progress"}
	}

	recoveries, err := s.open(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Strs("recoveries", recoveries).Msg("failed to open coupon")
		return nil, err
	}

	resp, err := s.fill(ctx, plan)
	if err != nil {
		s.abort(ctx, err)
		return nil, err
	}

	resp.Recoveries = recoveries

	s.logger.Info().
		Str("journal_id", resp.JournalID.String()).
		Int64("coupon_id", int64(resp.CouponID)).
		Str("total", resp.TotalizedValue.StringFixed(2)).
		Strs("recoveries", recoveries).
		Msg("coupon issued successfully")

	return resp, nil
}

// GetByID retrieves a journaled coupon by its ID.
func (s *couponService) GetByID(ctx context.Context, id uuid.UUID) (*model.CouponRecord, error) {
	record, err := s.journal.coupons.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("journal_id", id.String()).Msg("failed to get coupon")
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	if record == nil {
		s.logger.Debug().Str("journal_id", id.String()).Msg("coupon not found")
		return nil, nil
	}

	return record, nil
}

// open opens a coupon, recovering from the pending conditions the device
// reports. Must be called with the session lock held.
func (s *couponService) open(ctx context.Context) ([]string, error) {
	printer := s.session.printer
	recoveries := []string{}

	for attempt := 0; ; attempt++ {
		err := printer.Open(ctx)
		if err == nil {
			return recoveries, nil
		}

		if attempt >= s.recovery.MaxAttempts {
			return recoveries, fmt.Errorf("failed to open coupon after %d recoveries: %w", attempt, err)
		}

		var action string
		switch {
		case errors.Is(err, model.ErrCouponOpen):
			action = RecoveryCancelCoupon
			_, err = s.run(ctx, func() error { return printer.Cancel(ctx) })
		case errors.Is(err, model.ErrPendingReadX):
			action = RecoverySummarize
			if err = printer.Summarize(ctx); err == nil {
				err = s.journal.recordMovement(ctx, model.MovementSummarize, nil)
			}
		case errors.Is(err, model.ErrPendingReduceZ) && s.recovery.AutoReduceZ:
			action = RecoveryCloseTill
			if err = printer.CloseTill(ctx); err == nil {
				err = s.journal.recordMovement(ctx, model.MovementCloseTill, nil)
			}
		default:
			return recoveries, err
		}

		if err != nil {
			return recoveries, fmt.Errorf("recovery %s failed: %w", action, err)
		}

		s.logger.Info().Str("action", action).Int("attempt", attempt+1).Msg("recovered from pending device condition")
		recoveries = append(recoveries, action)
	}
}

// fill runs every step after open up to close. Each step goes through run
// so a transport failure journals the coupon it abandoned. Must be called
// with the session lock held.
func (s *couponService) fill(ctx context.Context, plan *plan) (*model.CouponResponse, error) {
	printer := s.session.printer

	if plan.customer != nil {
		if _, err := s.run(ctx, func() error { return printer.IdentifyCustomer(ctx, *plan.customer) }); err != nil {
			return nil, err
		}
	}

	for _, item := range plan.items {
		if _, err := s.run(ctx, func() error {
			_, addErr := printer.AddItem(ctx, item)
			return addErr
		}); err != nil {
			return nil, err
		}
	}

	if _, err := s.run(ctx, func() error {
		_, totErr := printer.Totalize(ctx, plan.discount, plan.charge, plan.tax)
		return totErr
	}); err != nil {
		return nil, err
	}

	for _, p := range plan.payments {
		if _, err := s.run(ctx, func() error { return printer.AddPayment(ctx, p.Method, p.Value, p.Description) }); err != nil {
			return nil, err
		}
	}

	return s.close(ctx, plan.message)
}

// close closes the coupon and journals it. Must be called with the session
// lock held.
func (s *couponService) close(ctx context.Context, message string) (*model.CouponResponse, error) {
	var id model.CouponID
	record, err := s.run(ctx, func() error {
		var closeErr error
		id, closeErr = s.session.printer.Close(ctx, message)
		return closeErr
	})
	if err != nil {
		return nil, err
	}

	last := s.session.printer.Last()
	resp := &model.CouponResponse{
		CouponID:      id,
		PaymentsTotal: last.PaymentsTotal,
		Change:        last.Change(),
	}
	if last.TotalizedValue != nil {
		resp.TotalizedValue = *last.TotalizedValue
	}
	if record != nil {
		resp.JournalID = record.ID
	}

	return resp, nil
}

// abort cleans up after a failed issue flow. A transport failure already
// abandoned the coupon and run journaled it; any other failure cancels the
// coupon if it is still open.
func (s *couponService) abort(ctx context.Context, cause error) {
	var tErr *model.TransportError
	if errors.As(cause, &tErr) {
		return
	}

	if s.session.printer.State() != model.StatusOpen {
		s.logger.Warn().Err(cause).Str("state", s.session.printer.State().String()).
			Msg("coupon left in progress after failure")
		return
	}

	if _, err := s.run(ctx, func() error { return s.session.printer.Cancel(ctx) }); err != nil {
		s.logger.Error().Err(err).Msg("failed to cancel coupon after failure")
		return
	}
	s.logger.Warn().Err(cause).Msg("coupon cancelled after failure")
}

// run performs one printer operation and journals the coupon it finished,
// if any. The operation error wins over a journal error.
func (s *couponService) run(ctx context.Context, op func() error) (*model.CouponRecord, error) {
	before := s.session.printer.State()
	opErr := op()

	record, err := s.settle(ctx, before, opErr)
	if opErr != nil {
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to journal abandoned coupon")
		}
		return record, opErr
	}
	return record, err
}

// settle journals the coupon an operation finished. An operation finishes
// a coupon when it brings the machine back to Idle, or when a transport
// failure abandons it.
func (s *couponService) settle(ctx context.Context, before model.CouponStatus, opErr error) (*model.CouponRecord, error) {
	if before == model.StatusIdle {
		return nil, nil
	}

	if opErr != nil {
		var tErr *model.TransportError
		if !errors.As(opErr, &tErr) {
			return nil, nil
		}
	} else if s.session.printer.State() != model.StatusIdle {
		return nil, nil
	}

	last := s.session.printer.Last()
	if last == nil {
		return nil, nil
	}

	return s.journal.recordCoupon(ctx, last)
}
