package virtual

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"fiscal-coupon/internal/argument"
	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/driver"
	"fiscal-coupon/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(t *testing.T, s string) argument.Amount {
	t.Helper()
	a, err := argument.NewAmount("value", decimal.RequireFromString(s))
	require.NoError(t, err)
	return a
}

func percent(t *testing.T, s string) argument.Percentage {
	t.Helper()
	p, err := argument.NewPercentage("discount", decimal.RequireFromString(s))
	require.NoError(t, err)
	return p
}

func quantity(t *testing.T, s string) argument.Quantity {
	t.Helper()
	q, err := argument.NewQuantity("quantity", decimal.RequireFromString(s))
	require.NoError(t, err)
	return q
}

func newPrinter(t *testing.T, cfg Config) *Printer {
	t.Helper()
	p, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func TestNew_Defaults(t *testing.T) {
	p := newPrinter(t, Config{})
	ctx := context.Background()

	caps, err := p.Capabilities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "generic", caps.Model)
	assert.Equal(t, "cp850", p.Charset())

	status, err := p.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultSerialNumber, status.SerialNumber)
	assert.False(t, status.CouponOpen)
}

func TestNew_CharsetOverride(t *testing.T) {
	p := newPrinter(t, Config{Charset: "iso-8859-1"})
	assert.Equal(t, "iso-8859-1", p.Charset())

	_, err := New(Config{Charset: "klingon-1"}, zerolog.Nop())
	require.Error(t, err)
}

func TestPrinter_FullCoupon(t *testing.T) {
	var tape bytes.Buffer
	p := newPrinter(t, Config{Tape: &tape})
	ctx := context.Background()

	require.NoError(t, p.OpenCoupon(ctx))

	h1, err := p.AddItem(ctx, driver.ItemCommand{
		Code:            []byte("123456"),
		Description:     []byte("Hollyw\xa2\xa2d"),
		Quantity:        quantity(t, "2"),
		UnitPrice:       amount(t, "10.00"),
		Unit:            model.UnitCustom,
		UnitDescription: []byte{'m', 0x87},
		TaxCode:         model.TaxNone,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemHandle(1), h1)

	h2, err := p.AddItem(ctx, driver.ItemCommand{
		Code:      []byte("654321"),
		Quantity:  quantity(t, "5"),
		UnitPrice: amount(t, "1.53"),
		Unit:      model.UnitLiters,
		TaxCode:   model.TaxNone,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemHandle(2), h2)

	require.NoError(t, p.CancelItem(ctx, h1))

	total, err := p.Totalize(ctx, driver.TotalizeCommand{Discount: percent(t, "1"), TaxCode: model.TaxNone})
	require.NoError(t, err)
	assert.Equal(t, "7.57", total.StringFixed(2))

	require.NoError(t, p.AddPayment(ctx, driver.PaymentCommand{Method: model.PaymentMoney, Value: amount(t, "2.00")}))
	require.NoError(t, p.AddPayment(ctx, driver.PaymentCommand{Method: model.PaymentMoney, Value: amount(t, "11.00")}))

	id, err := p.CloseCoupon(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CouponID(1), id)

	status, err := p.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.CouponOpen)
	assert.Equal(t, int64(1), status.CouponCounter)
	assert.True(t, status.GrandTotal.Equal(decimal.RequireFromString("7.57")))
	assert.True(t, status.TillCash.Equal(decimal.RequireFromString("7.57")))

	printed := tape.String()
	assert.Contains(t, printed, "Hollywóód")
	assert.Contains(t, printed, "mç")
	assert.Contains(t, printed, "CHANGE 5.43")
	assert.Contains(t, printed, "COUPON 000001 CLOSED")
}

func TestPrinter_ItemDiscountAndCharge(t *testing.T) {
	p := newPrinter(t, Config{})
	ctx := context.Background()
	require.NoError(t, p.OpenCoupon(ctx))

	_, err := p.AddItem(ctx, driver.ItemCommand{
		Quantity:  quantity(t, "3"),
		UnitPrice: amount(t, "3.33"),
		Unit:      model.UnitEmpty,
		Discount:  percent(t, "10"),
	})
	require.NoError(t, err)

	_, err = p.AddItem(ctx, driver.ItemCommand{
		Quantity:  quantity(t, "1"),
		UnitPrice: amount(t, "20"),
		Unit:      model.UnitEmpty,
		Charge:    percent(t, "2.5"),
	})
	require.NoError(t, err)

	total, err := p.Totalize(ctx, driver.TotalizeCommand{TaxCode: model.TaxICMS})
	require.NoError(t, err)
	// 9.99 - 10% = 8.991 -> 8.99; 20 + 2.5% = 20.50
	assert.Equal(t, "29.49", total.StringFixed(2))
}

func TestPrinter_OpenConditions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		open    bool
		wantErr error
	}{
		{name: "Pending read X", cfg: Config{PendingReadX: true}, wantErr: model.ErrPendingReadX},
		{name: "Pending reduce Z", cfg: Config{PendingReduceZ: true}, wantErr: model.ErrPendingReduceZ},
		{name: "Reduce Z before read X", cfg: Config{PendingReadX: true, PendingReduceZ: true}, wantErr: model.ErrPendingReduceZ},
		{name: "Coupon already open", open: true, wantErr: model.ErrCouponOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPrinter(t, tt.cfg)
			ctx := context.Background()
			if tt.open {
				require.NoError(t, p.OpenCoupon(ctx))
			}

			err := p.OpenCoupon(ctx)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPrinter_Recovery(t *testing.T) {
	ctx := context.Background()

	p := newPrinter(t, Config{PendingReadX: true})
	require.ErrorIs(t, p.OpenCoupon(ctx), model.ErrPendingReadX)
	require.NoError(t, p.Summarize(ctx))
	require.NoError(t, p.OpenCoupon(ctx))

	p = newPrinter(t, Config{PendingReduceZ: true})
	require.ErrorIs(t, p.OpenCoupon(ctx), model.ErrPendingReduceZ)
	require.NoError(t, p.CloseTill(ctx))
	require.NoError(t, p.OpenCoupon(ctx))

	status, err := p.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.ReductionCounter)
}

func TestPrinter_FirmwareRules(t *testing.T) {
	ctx := context.Background()
	p := newPrinter(t, Config{})

	_, err := p.AddItem(ctx, driver.ItemCommand{Quantity: quantity(t, "1"), UnitPrice: amount(t, "1")})
	assert.ErrorIs(t, err, ErrNoCouponOpen)
	assert.ErrorIs(t, p.CancelCoupon(ctx), ErrNoCouponOpen)

	require.NoError(t, p.OpenCoupon(ctx))
	assert.ErrorIs(t, p.AddPayment(ctx, driver.PaymentCommand{Method: model.PaymentMoney, Value: amount(t, "1")}), ErrNotTotalized)
	assert.ErrorIs(t, p.CancelItem(ctx, 7), ErrUnknownItem)
	assert.ErrorIs(t, p.Summarize(ctx), ErrCouponInProgress)
	assert.ErrorIs(t, p.TillAddCash(ctx, amount(t, "1")), ErrCouponInProgress)

	_, err = p.AddItem(ctx, driver.ItemCommand{Quantity: quantity(t, "1"), UnitPrice: amount(t, "5")})
	require.NoError(t, err)
	assert.ErrorIs(t, p.IdentifyCustomer(ctx, driver.CustomerCommand{Name: []byte("late")}), ErrCustomerAfterItems)

	_, err = p.Totalize(ctx, driver.TotalizeCommand{})
	require.NoError(t, err)

	_, err = p.AddItem(ctx, driver.ItemCommand{Quantity: quantity(t, "1"), UnitPrice: amount(t, "1")})
	assert.ErrorIs(t, err, ErrCouponTotalized)

	_, err = p.CloseCoupon(ctx, nil)
	assert.ErrorIs(t, err, ErrPaymentShort)
}

func TestPrinter_TillCash(t *testing.T) {
	ctx := context.Background()
	p := newPrinter(t, Config{})

	require.NoError(t, p.TillAddCash(ctx, amount(t, "50.00")))
	require.NoError(t, p.TillRemoveCash(ctx, amount(t, "20.00")))

	err := p.TillRemoveCash(ctx, amount(t, "30.01"))
	assert.ErrorIs(t, err, ErrInsufficientCash)

	status, err := p.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.TillCash.Equal(decimal.NewFromInt(30)))

	require.NoError(t, p.CloseTill(ctx))
	status, err = p.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.TillCash.IsZero())
}

func TestPrinter_FailNext(t *testing.T) {
	ctx := context.Background()
	p := newPrinter(t, Config{})
	boom := errors.New("serial link down")

	p.FailNext("open_coupon", boom)

	assert.ErrorIs(t, p.OpenCoupon(ctx), boom)
	status, err := p.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.CouponOpen, "a failed command must not change device state")

	assert.NoError(t, p.OpenCoupon(ctx), "fault fires only once")
}

func TestPrinter_SetPending(t *testing.T) {
	ctx := context.Background()
	p := newPrinter(t, Config{})

	p.SetPending(true, false)
	assert.ErrorIs(t, p.OpenCoupon(ctx), model.ErrPendingReadX)

	p.SetPending(false, false)
	assert.NoError(t, p.OpenCoupon(ctx))
}

func TestPrinter_ContextCancelled(t *testing.T) {
	p := newPrinter(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.OpenCoupon(ctx), context.Canceled)
}

func TestPrinter_ProfileFromSet(t *testing.T) {
	profile := capability.DefaultProfile()
	profile.Model = "bematech-mp25"
	p := newPrinter(t, Config{Profile: profile, SerialNumber: "BE0911"})

	status, err := p.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bematech-mp25", status.Model)
	assert.Equal(t, "BE0911", status.SerialNumber)
}
