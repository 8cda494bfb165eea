package coupon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fiscal-coupon/internal/argument"
	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/driver"
	"fiscal-coupon/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const staleReason = "a coupon left open on the device must be cancelled first"

// Machine is the coupon state machine of one device. Every operation holds
// the machine lock until the driver answers, so operations never
// interleave.
type Machine struct {
	mu        sync.Mutex
	drv       driver.Driver
	registry  *capability.Registry
	validator *argument.Validator
	logger    zerolog.Logger

	current *Coupon
	last    *Coupon
}

var _ Printer = (*Machine)(nil)

// NewMachine starts a device session: it queries the capabilities once and
// fails when the device cannot report them.
func NewMachine(ctx context.Context, drv driver.Driver, logger zerolog.Logger) (*Machine, error) {
	drv = driver.Serialize(drv)
	logger = logger.With().Str("component", "coupon-machine").Logger()

	registry, err := capability.NewRegistry(ctx, drv, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start printer session: %w", err)
	}

	registry.OverrideCharset(drv.Charset())
	caps := registry.Capabilities()
	validator, err := argument.NewValidator(caps)
	if err != nil {
		return nil, fmt.Errorf("failed to start printer session: %w", err)
	}

	logger.Info().
		Str("model", caps.Model).
		Str("charset", validator.Codec().Name()).
		Msg("printer session started")

	return &Machine{
		drv:       drv,
		registry:  registry,
		validator: validator,
		logger:    logger,
		current:   &Coupon{Status: model.StatusIdle},
	}, nil
}

// Capabilities returns the capability set cached at session start.
func (m *Machine) Capabilities() capability.Set {
	return m.registry.Capabilities()
}

// State returns the status of the current coupon.
func (m *Machine) State() model.CouponStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Status
}

// Current returns a snapshot of the coupon in progress.
func (m *Machine) Current() Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.clone()
}

// Last returns a snapshot of the last finished coupon, or nil.
func (m *Machine) Last() *Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	c := m.last.clone()
	return &c
}

// Open starts a coupon. When the device reports a coupon already open, the
// machine adopts it as a stale coupon in Open and returns model.ErrCouponOpen;
// only Cancel is accepted until it is gone.
func (m *Machine) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpOpen); err != nil {
		return err
	}

	if err := m.drv.OpenCoupon(ctx); err != nil {
		if errors.Is(err, model.ErrCouponOpen) {
			m.current.Status = model.StatusOpen
			m.current.Stale = true
			m.logger.Warn().Msg("device already has a coupon open, adopted as stale")
			return err
		}
		return m.fail(OpOpen, err)
	}

	m.advance(OpOpen)
	return nil
}

// IdentifyCustomer sets the customer of the open coupon.
func (m *Machine) IdentifyCustomer(ctx context.Context, customer Customer) error {
	name, err := m.validator.Text(capability.CustomerName, "customer_name", customer.Name)
	if err != nil {
		return err
	}
	address, err := m.validator.Text(capability.CustomerAddress, "customer_address", customer.Address)
	if err != nil {
		return err
	}
	document, err := m.validator.Text(capability.CustomerID, "customer_id", customer.Document)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpIdentifyCustomer); err != nil {
		return err
	}

	cmd := driver.CustomerCommand{Name: name, Address: address, Document: document}
	if err := m.drv.IdentifyCustomer(ctx, cmd); err != nil {
		return m.fail(OpIdentifyCustomer, err)
	}

	m.current.Customer = &customer
	m.advance(OpIdentifyCustomer)
	return nil
}

// AddItem validates spec against the device capabilities and adds it to the
// open coupon. The returned handle is only meaningful inside this coupon.
func (m *Machine) AddItem(ctx context.Context, spec ItemSpec) (model.ItemHandle, error) {
	cmd, err := m.itemCommand(spec)
	if err != nil {
		m.logger.Debug().Err(err).Str("code", spec.Code).Msg("item rejected")
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpAddItem); err != nil {
		return 0, err
	}

	handle, err := m.drv.AddItem(ctx, cmd)
	if err != nil {
		return 0, m.fail(OpAddItem, err)
	}

	m.current.Items = append(m.current.Items, Item{
		Handle:          handle,
		Code:            spec.Code,
		Description:     spec.Description,
		Quantity:        spec.Quantity,
		UnitPrice:       spec.UnitPrice,
		Unit:            spec.Unit,
		UnitDescription: spec.UnitDescription,
		TaxCode:         spec.TaxCode,
		Discount:        spec.Discount,
		Charge:          spec.Charge,
	})
	m.advance(OpAddItem)

	m.logger.Info().
		Int("handle", int(handle)).
		Str("code", spec.Code).
		Str("quantity", spec.Quantity.String()).
		Str("unit_price", spec.UnitPrice.StringFixed(argument.CurrencyPlaces)).
		Msg("item added")
	return handle, nil
}

// CancelItem voids an item of the open coupon. Unknown or already cancelled
// handles fail with model.ErrCodeUnknownItem.
func (m *Machine) CancelItem(ctx context.Context, handle model.ItemHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpCancelItem); err != nil {
		return err
	}

	it := m.current.item(handle)
	if it == nil {
		return model.NewValidationError("handle", model.ErrCodeUnknownItem,
			fmt.Sprintf("item %d does not belong to this coupon", handle))
	}
	if it.Cancelled {
		return model.NewValidationError("handle", model.ErrCodeUnknownItem,
			fmt.Sprintf("item %d is already cancelled", handle))
	}

	if err := m.drv.CancelItem(ctx, handle); err != nil {
		return m.fail(OpCancelItem, err)
	}

	it.Cancelled = true
	m.advance(OpCancelItem)
	m.logger.Info().Int("handle", int(handle)).Msg("item cancelled")
	return nil
}

// Cancel voids the coupon in progress, including a stale one.
func (m *Machine) Cancel(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpCancel); err != nil {
		return err
	}

	if err := m.drv.CancelCoupon(ctx); err != nil {
		return m.fail(OpCancel, err)
	}

	m.advance(OpCancel)
	return nil
}

// Totalize applies the coupon-level discount or charge and returns the
// total the device computed. Discount and charge are mutually exclusive.
func (m *Machine) Totalize(ctx context.Context, discount, charge decimal.Decimal, tax model.TaxCode) (decimal.Decimal, error) {
	cmd, err := m.totalizeCommand(discount, charge, tax)
	if err != nil {
		return decimal.Zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpTotalize); err != nil {
		return decimal.Zero, err
	}

	total, err := m.drv.Totalize(ctx, cmd)
	if err != nil {
		return decimal.Zero, m.fail(OpTotalize, err)
	}

	m.current.TotalizedValue = &total
	m.current.HasBeenTotalized = true
	m.advance(OpTotalize)

	m.logger.Info().
		Str("total", total.StringFixed(argument.CurrencyPlaces)).
		Str("discount", discount.String()).
		Str("charge", charge.String()).
		Msg("coupon totalized")
	return total, nil
}

// AddPayment registers a payment. It is legal only once the coupon has been
// totalized.
func (m *Machine) AddPayment(ctx context.Context, method model.PaymentMethod, value decimal.Decimal, description string) error {
	if err := m.validator.PaymentMethod(method); err != nil {
		return err
	}
	amount, err := m.validator.PositiveAmount(capability.PaymentValue, "payment_value", value)
	if err != nil {
		return err
	}
	desc, err := m.validator.Text(capability.PaymentDescription, "payment_description", description)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpAddPayment); err != nil {
		return err
	}
	if !m.current.HasBeenTotalized {
		return &model.StateError{State: m.current.Status, Operation: OpAddPayment.String(),
			Reason: "the coupon must be totalized before payments are added"}
	}

	cmd := driver.PaymentCommand{Method: method, Value: amount, Description: desc}
	if err := m.drv.AddPayment(ctx, cmd); err != nil {
		return m.fail(OpAddPayment, err)
	}

	m.current.Payments = append(m.current.Payments, Payment{Method: method, Value: value, Description: description})
	m.current.PaymentsTotal = m.current.PaymentsTotal.Add(value)
	m.advance(OpAddPayment)

	m.logger.Info().
		Str("method", method.String()).
		Str("value", amount.String()).
		Str("payments_total", m.current.PaymentsTotal.StringFixed(argument.CurrencyPlaces)).
		Msg("payment added")
	return nil
}

// Close prints message and closes the coupon, returning the number the
// device assigned to it. It fails with *model.InsufficientPaymentError
// while the payments do not cover the totalized value.
func (m *Machine) Close(ctx context.Context, message string) (model.CouponID, error) {
	encoded, err := m.validator.Text(capability.PromotionalMessage, "promotional_message", message)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpClose); err != nil {
		return 0, err
	}
	if !m.current.HasBeenTotalized {
		return 0, &model.StateError{State: m.current.Status, Operation: OpClose.String(),
			Reason: "the coupon must be totalized before it is closed"}
	}
	if m.current.TotalizedValue.GreaterThan(m.current.PaymentsTotal) {
		return 0, &model.InsufficientPaymentError{
			Totalized: *m.current.TotalizedValue,
			Paid:      m.current.PaymentsTotal,
		}
	}

	id, err := m.drv.CloseCoupon(ctx, encoded)
	if err != nil {
		return 0, m.fail(OpClose, err)
	}

	m.current.CouponID = id
	m.current.PromotionalMessage = message
	m.advance(OpClose)
	return id, nil
}

// Status queries the device. It is legal only while no coupon is in
// progress.
func (m *Machine) Status(ctx context.Context) (model.DeviceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(OpStatus); err != nil {
		return model.DeviceStatus{}, err
	}

	status, err := m.drv.Status(ctx)
	if err != nil {
		return model.DeviceStatus{}, m.fail(OpStatus, err)
	}
	return status, nil
}

// Summarize prints a read X.
func (m *Machine) Summarize(ctx context.Context) error {
	return m.tillCommand(ctx, OpSummarize, m.drv.Summarize)
}

// CloseTill prints a reduce Z and ends the fiscal day.
func (m *Machine) CloseTill(ctx context.Context) error {
	return m.tillCommand(ctx, OpCloseTill, m.drv.CloseTill)
}

func (m *Machine) TillAddCash(ctx context.Context, value decimal.Decimal) error {
	amount, err := m.validator.PositiveAmount(capability.AddCashValue, "add_cash_value", value)
	if err != nil {
		return err
	}
	return m.tillCommand(ctx, OpTillAddCash, func(ctx context.Context) error {
		return m.drv.TillAddCash(ctx, amount)
	})
}

func (m *Machine) TillRemoveCash(ctx context.Context, value decimal.Decimal) error {
	amount, err := m.validator.PositiveAmount(capability.RemoveCashValue, "remove_cash_value", value)
	if err != nil {
		return err
	}
	return m.tillCommand(ctx, OpTillRemoveCash, func(ctx context.Context) error {
		return m.drv.TillRemoveCash(ctx, amount)
	})
}

func (m *Machine) tillCommand(ctx context.Context, op Operation, call func(context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check(op); err != nil {
		return err
	}
	if err := call(ctx); err != nil {
		return m.fail(op, err)
	}

	m.advance(op)
	m.logger.Info().Str("op", op.String()).Msg("till command done")
	return nil
}

// check is the single point where illegal transitions are rejected. Must
// be called with mu held.
func (m *Machine) check(op Operation) error {
	state := m.current.Status
	if _, ok := Next(state, op); !ok {
		m.logger.Debug().Str("state", state.String()).Str("op", op.String()).Msg("illegal operation rejected")
		return &model.StateError{State: state, Operation: op.String()}
	}
	if m.current.Stale && op != OpCancel {
		return &model.StateError{State: state, Operation: op.String(), Reason: staleReason}
	}
	return nil
}

// advance applies the transition of a successful operation and starts a
// fresh coupon once the current one is finished. Must be called with mu
// held, after check.
func (m *Machine) advance(op Operation) {
	from := m.current.Status
	to, _ := Next(from, op)
	m.current.Status = to

	if from != to {
		m.logger.Info().Str("from", from.String()).Str("to", to.String()).Str("op", op.String()).Msg("coupon state changed")
	}

	if to == model.StatusClosed || to == model.StatusCancelled {
		m.last = m.current
		m.current = &Coupon{Status: model.StatusIdle}
	}
}

// fail records the effect of a driver error and returns it unchanged.
// Recoverable device conditions leave the machine as it was; a transport
// error abandons the coupon in progress. Must be called with mu held.
func (m *Machine) fail(op Operation, err error) error {
	var tErr *model.TransportError
	if !errors.As(err, &tErr) {
		m.logger.Warn().Err(err).Str("op", op.String()).Str("state", m.current.Status.String()).Msg("device reported a pending condition")
		return err
	}

	m.logger.Error().Err(err).Str("op", op.String()).Str("state", m.current.Status.String()).Msg("device communication failed")

	if m.current.Status == model.StatusIdle {
		return err
	}

	m.current.Abandoned = true
	m.last = m.current
	m.current = &Coupon{Status: model.StatusIdle}
	m.logger.Warn().Str("op", op.String()).Msg("coupon abandoned")
	return err
}

func (m *Machine) itemCommand(spec ItemSpec) (driver.ItemCommand, error) {
	v := m.validator

	code, err := v.Text(capability.ItemCode, "code", spec.Code)
	if err != nil {
		return driver.ItemCommand{}, err
	}
	description, err := v.Text(capability.ItemDescription, "description", spec.Description)
	if err != nil {
		return driver.ItemCommand{}, err
	}
	quantity, err := v.Quantity(spec.Quantity)
	if err != nil {
		return driver.ItemCommand{}, err
	}
	price, err := v.PositiveAmount(capability.ItemPrice, "unit_price", spec.UnitPrice)
	if err != nil {
		return driver.ItemCommand{}, err
	}
	if err := v.Unit(spec.Unit); err != nil {
		return driver.ItemCommand{}, err
	}
	unitDesc, err := v.UnitDescription(spec.Unit, spec.UnitDescription)
	if err != nil {
		return driver.ItemCommand{}, err
	}
	if err := argument.CheckTaxCode(spec.TaxCode); err != nil {
		return driver.ItemCommand{}, err
	}
	discount, charge, err := m.adjustments(spec.Discount, spec.Charge)
	if err != nil {
		return driver.ItemCommand{}, err
	}

	return driver.ItemCommand{
		Code:            code,
		Description:     description,
		Quantity:        quantity,
		UnitPrice:       price,
		Unit:            spec.Unit,
		UnitDescription: unitDesc,
		TaxCode:         spec.TaxCode,
		Discount:        discount,
		Charge:          charge,
	}, nil
}

func (m *Machine) totalizeCommand(discount, charge decimal.Decimal, tax model.TaxCode) (driver.TotalizeCommand, error) {
	d, c, err := m.adjustments(discount, charge)
	if err != nil {
		return driver.TotalizeCommand{}, err
	}
	if err := argument.CheckTaxCode(tax); err != nil {
		return driver.TotalizeCommand{}, err
	}
	return driver.TotalizeCommand{Discount: d, Charge: c, TaxCode: tax}, nil
}

func (m *Machine) adjustments(discount, charge decimal.Decimal) (argument.Percentage, argument.Percentage, error) {
	d, err := m.validator.Percentage("discount", discount)
	if err != nil {
		return argument.Percentage{}, argument.Percentage{}, err
	}
	c, err := m.validator.Percentage("charge", charge)
	if err != nil {
		return argument.Percentage{}, argument.Percentage{}, err
	}
	if err := argument.Exclusive(d, c); err != nil {
		return argument.Percentage{}, argument.Percentage{}, err
	}
	return d, c, nil
}
