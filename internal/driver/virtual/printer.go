// Package virtual is an in-memory fiscal printer. It keeps the device-side
// state a real printer keeps in fiscal memory (counters, till cash, grand
// total, pending read X / reduce Z) and enforces the firmware rules, so the
// coupon state machine can be exercised end to end without hardware.
package virtual

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"fiscal-coupon/internal/argument"
	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/charset"
	"fiscal-coupon/internal/driver"
	"fiscal-coupon/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Firmware rejections. They are not recoverable conditions, so the driver
// contract reports them as transport errors.
var (
	ErrNoCouponOpen       = errors.New("no coupon open")
	ErrCouponTotalized    = errors.New("coupon already totalized")
	ErrNotTotalized       = errors.New("coupon not totalized")
	ErrUnknownItem        = errors.New("unknown item")
	ErrPaymentShort       = errors.New("payments do not cover the coupon total")
	ErrInsufficientCash   = errors.New("insufficient cash in till")
	ErrCouponInProgress   = errors.New("operation not allowed with a coupon open")
	ErrCustomerAfterItems = errors.New("customer identification must precede items")
)

const defaultSerialNumber = "VIRTUAL-0001"

// Config configures a virtual printer.
type Config struct {
	// Profile is the capability set the printer reports. The zero value
	// selects capability.DefaultProfile.
	Profile capability.Set

	// Charset overrides the profile charset when set.
	Charset string

	SerialNumber string

	// PendingReadX and PendingReduceZ start the printer with the
	// corresponding recovery checkpoint outstanding.
	PendingReadX   bool
	PendingReduceZ bool

	// Tape receives the printed lines, decoded back to UTF-8. Optional.
	Tape io.Writer
}

type item struct {
	handle    model.ItemHandle
	total     decimal.Decimal
	cancelled bool
}

type payment struct {
	method model.PaymentMethod
	value  decimal.Decimal
}

// Printer is a virtual fiscal printer. It is safe for concurrent use.
type Printer struct {
	mu     sync.Mutex
	caps   capability.Set
	codec  charset.Codec
	serial string
	tape   io.Writer
	logger zerolog.Logger

	pendingReadX   bool
	pendingReduceZ bool

	couponOpen bool
	totalized  bool
	total      decimal.Decimal
	items      []item
	payments   []payment

	couponCounter    int64
	reductionCounter int64
	tillCash         decimal.Decimal
	grandTotal       decimal.Decimal

	faults map[string]error
}

var _ driver.Driver = (*Printer)(nil)

// New creates a virtual printer.
func New(cfg Config, logger zerolog.Logger) (*Printer, error) {
	caps := cfg.Profile
	if caps.Model == "" {
		caps = capability.DefaultProfile()
	}
	if cfg.Charset != "" {
		caps.Charset = cfg.Charset
	}
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create virtual printer: %w", err)
	}

	codec, err := charset.New(caps.Charset)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual printer: %w", err)
	}

	serial := cfg.SerialNumber
	if serial == "" {
		serial = defaultSerialNumber
	}

	logger = logger.With().
		Str("component", "virtual-printer").
		Str("model", caps.Model).
		Str("serial", serial).
		Logger()

	logger.Info().
		Str("charset", codec.Name()).
		Bool("pending_read_x", cfg.PendingReadX).
		Bool("pending_reduce_z", cfg.PendingReduceZ).
		Msg("virtual printer ready")

	return &Printer{
		caps:           caps.Clone(),
		codec:          codec,
		serial:         serial,
		tape:           cfg.Tape,
		logger:         logger,
		pendingReadX:   cfg.PendingReadX,
		pendingReduceZ: cfg.PendingReduceZ,
		faults:         make(map[string]error),
	}, nil
}

// FailNext makes the next command named op fail with err without touching
// the device state. Op names are the ones driver.Classify reports, e.g.
// "open_coupon" or "add_item".
func (p *Printer) FailNext(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults[op] = err
}

// SetPending raises or clears the recovery checkpoints, as the device does
// on its own at the turn of a fiscal day.
func (p *Printer) SetPending(readX, reduceZ bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingReadX = readX
	p.pendingReduceZ = reduceZ
}

func (p *Printer) Capabilities(ctx context.Context) (capability.Set, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "capabilities"); err != nil {
		return capability.Set{}, err
	}
	return p.caps.Clone(), nil
}

func (p *Printer) Charset() string {
	return p.codec.Name()
}

func (p *Printer) IdentifyCustomer(ctx context.Context, cmd driver.CustomerCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "identify_customer"); err != nil {
		return err
	}
	if p.couponOpen && len(p.items) > 0 {
		return ErrCustomerAfterItems
	}

	p.print("CUSTOMER %s | %s | %s", p.decode(cmd.Name), p.decode(cmd.Address), p.decode(cmd.Document))
	return nil
}

func (p *Printer) OpenCoupon(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "open_coupon"); err != nil {
		return err
	}

	switch {
	case p.couponOpen:
		return model.ErrCouponOpen
	case p.pendingReduceZ:
		return model.ErrPendingReduceZ
	case p.pendingReadX:
		return model.ErrPendingReadX
	}

	p.couponOpen = true
	p.totalized = false
	p.total = decimal.Zero
	p.items = nil
	p.payments = nil
	p.print("COUPON %06d OPEN", p.couponCounter+1)
	return nil
}

func (p *Printer) AddItem(ctx context.Context, cmd driver.ItemCommand) (model.ItemHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "add_item"); err != nil {
		return 0, err
	}
	if err := p.requireItems(); err != nil {
		return 0, err
	}

	total := adjust(cmd.Quantity.Decimal().Mul(cmd.UnitPrice.Decimal()), cmd.Discount, cmd.Charge)
	handle := model.ItemHandle(len(p.items) + 1)
	p.items = append(p.items, item{handle: handle, total: total})

	unit := cmd.Unit.String()
	if cmd.Unit == model.UnitCustom {
		unit = p.decode(cmd.UnitDescription)
	}
	p.print("%03d %s %s %s %s x %s = %s",
		handle, p.decode(cmd.Code), p.decode(cmd.Description),
		cmd.Quantity, unit, cmd.UnitPrice, total.StringFixed(argument.CurrencyPlaces))
	return handle, nil
}

func (p *Printer) CancelItem(ctx context.Context, handle model.ItemHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "cancel_item"); err != nil {
		return err
	}
	if err := p.requireItems(); err != nil {
		return err
	}

	idx := int(handle) - 1
	if idx < 0 || idx >= len(p.items) || p.items[idx].cancelled {
		return fmt.Errorf("%w: %d", ErrUnknownItem, handle)
	}
	p.items[idx].cancelled = true
	p.print("%03d CANCELLED", handle)
	return nil
}

func (p *Printer) CancelCoupon(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "cancel_coupon"); err != nil {
		return err
	}
	if !p.couponOpen {
		return ErrNoCouponOpen
	}

	p.reset()
	p.print("COUPON CANCELLED")
	return nil
}

func (p *Printer) Totalize(ctx context.Context, cmd driver.TotalizeCommand) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "totalize"); err != nil {
		return decimal.Zero, err
	}
	if err := p.requireItems(); err != nil {
		return decimal.Zero, err
	}

	subtotal := decimal.Zero
	for _, it := range p.items {
		if !it.cancelled {
			subtotal = subtotal.Add(it.total)
		}
	}

	p.total = adjust(subtotal, cmd.Discount, cmd.Charge)
	p.totalized = true
	p.print("SUBTOTAL %s DISCOUNT %s CHARGE %s TOTAL %s",
		subtotal.StringFixed(argument.CurrencyPlaces), cmd.Discount, cmd.Charge,
		p.total.StringFixed(argument.CurrencyPlaces))
	return p.total, nil
}

func (p *Printer) AddPayment(ctx context.Context, cmd driver.PaymentCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "add_payment"); err != nil {
		return err
	}
	if !p.couponOpen {
		return ErrNoCouponOpen
	}
	if !p.totalized {
		return ErrNotTotalized
	}

	p.payments = append(p.payments, payment{method: cmd.Method, value: cmd.Value.Decimal()})
	p.print("PAYMENT %s %s %s", cmd.Method, cmd.Value, p.decode(cmd.Description))
	return nil
}

func (p *Printer) CloseCoupon(ctx context.Context, message []byte) (model.CouponID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "close_coupon"); err != nil {
		return 0, err
	}
	if !p.couponOpen {
		return 0, ErrNoCouponOpen
	}
	if !p.totalized {
		return 0, ErrNotTotalized
	}

	paid, money := decimal.Zero, decimal.Zero
	for _, pm := range p.payments {
		paid = paid.Add(pm.value)
		if pm.method == model.PaymentMoney {
			money = money.Add(pm.value)
		}
	}
	if paid.LessThan(p.total) {
		return 0, ErrPaymentShort
	}

	change := paid.Sub(p.total)
	p.tillCash = p.tillCash.Add(money).Sub(change)
	p.grandTotal = p.grandTotal.Add(p.total)
	p.couponCounter++
	id := model.CouponID(p.couponCounter)

	if len(message) > 0 {
		p.print("%s", p.decode(message))
	}
	p.print("CHANGE %s", change.StringFixed(argument.CurrencyPlaces))
	p.print("COUPON %06d CLOSED", id)
	p.reset()
	return id, nil
}

func (p *Printer) Summarize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "summarize"); err != nil {
		return err
	}
	if p.couponOpen {
		return ErrCouponInProgress
	}

	p.pendingReadX = false
	p.print("READ X coupons=%d till=%s grand_total=%s",
		p.couponCounter, p.tillCash.StringFixed(argument.CurrencyPlaces),
		p.grandTotal.StringFixed(argument.CurrencyPlaces))
	return nil
}

func (p *Printer) CloseTill(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "close_till"); err != nil {
		return err
	}
	if p.couponOpen {
		return ErrCouponInProgress
	}

	p.reductionCounter++
	p.print("REDUCE Z %04d till=%s grand_total=%s",
		p.reductionCounter, p.tillCash.StringFixed(argument.CurrencyPlaces),
		p.grandTotal.StringFixed(argument.CurrencyPlaces))
	p.pendingReduceZ = false
	p.pendingReadX = false
	p.tillCash = decimal.Zero
	return nil
}

func (p *Printer) TillAddCash(ctx context.Context, value argument.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "till_add_cash"); err != nil {
		return err
	}
	if p.couponOpen {
		return ErrCouponInProgress
	}

	p.tillCash = p.tillCash.Add(value.Decimal())
	p.print("CASH IN %s", value)
	return nil
}

func (p *Printer) TillRemoveCash(ctx context.Context, value argument.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "till_remove_cash"); err != nil {
		return err
	}
	if p.couponOpen {
		return ErrCouponInProgress
	}
	if value.Decimal().GreaterThan(p.tillCash) {
		return fmt.Errorf("%w: has %s", ErrInsufficientCash, p.tillCash.StringFixed(argument.CurrencyPlaces))
	}

	p.tillCash = p.tillCash.Sub(value.Decimal())
	p.print("CASH OUT %s", value)
	return nil
}

func (p *Printer) Status(ctx context.Context) (model.DeviceStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(ctx, "status"); err != nil {
		return model.DeviceStatus{}, err
	}

	return model.DeviceStatus{
		Model:            p.caps.Model,
		SerialNumber:     p.serial,
		CouponOpen:       p.couponOpen,
		PendingReadX:     p.pendingReadX,
		PendingReduceZ:   p.pendingReduceZ,
		CouponCounter:    p.couponCounter,
		ReductionCounter: p.reductionCounter,
		TillCash:         p.tillCash,
		GrandTotal:       p.grandTotal,
	}, nil
}

// begin runs the checks every command shares. Must be called with mu held.
func (p *Printer) begin(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := p.faults[op]; ok {
		delete(p.faults, op)
		p.logger.Warn().Str("op", op).Err(err).Msg("injected fault")
		return err
	}
	p.logger.Debug().Str("op", op).Msg("command received")
	return nil
}

func (p *Printer) requireItems() error {
	if !p.couponOpen {
		return ErrNoCouponOpen
	}
	if p.totalized {
		return ErrCouponTotalized
	}
	return nil
}

func (p *Printer) reset() {
	p.couponOpen = false
	p.totalized = false
	p.total = decimal.Zero
	p.items = nil
	p.payments = nil
}

func (p *Printer) decode(b []byte) string {
	s, err := p.codec.Decode(b)
	if err != nil {
		return fmt.Sprintf("%x", b)
	}
	return s
}

func (p *Printer) print(format string, args ...any) {
	if p.tape == nil {
		return
	}
	fmt.Fprintf(p.tape, format+"\n", args...)
}

// adjust applies a discount or charge percentage and rounds to currency
// precision.
func adjust(value decimal.Decimal, discount, charge argument.Percentage) decimal.Decimal {
	rate := decimal.NewFromInt(100).Sub(discount.Decimal()).Add(charge.Decimal())
	return value.Mul(rate).Div(decimal.NewFromInt(100)).Round(argument.CurrencyPlaces)
}
