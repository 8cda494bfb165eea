package capability

import (
	"fmt"
	"slices"

	"fiscal-coupon/internal/charset"
	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// Argument names a capability can constrain.
const (
	ItemCode           = "item_code"
	ItemDescription    = "item_description"
	ItemQuantity       = "item_quantity"
	ItemPrice          = "item_price"
	PaymentValue       = "payment_value"
	PaymentDescription = "payment_description"
	PromotionalMessage = "promotional_message"
	CustomerName       = "customer_name"
	CustomerAddress    = "customer_address"
	CustomerID         = "customer_id"
	AddCashValue       = "add_cash_value"
	RemoveCashValue    = "remove_cash_value"
	Adjustment         = "adjustment" // item and coupon discount or charge rate
)

var knownArguments = map[string]bool{
	ItemCode:           true,
	ItemDescription:    true,
	ItemQuantity:       true,
	ItemPrice:          true,
	PaymentValue:       true,
	PaymentDescription: true,
	PromotionalMessage: true,
	CustomerName:       true,
	CustomerAddress:    true,
	CustomerID:         true,
	AddCashValue:       true,
	RemoveCashValue:    true,
	Adjustment:         true,
}

// Capability constrains a single argument. Zero fields are unconstrained.
type Capability struct {
	MinSize  *decimal.Decimal `json:"minSize,omitempty"`
	MaxSize  *decimal.Decimal `json:"maxSize,omitempty"`
	Digits   int              `json:"digits,omitempty"`
	Decimals int              `json:"decimals,omitempty"`
	MaxLen   int              `json:"maxLen,omitempty"`
}

// Max returns the largest accepted value: the smaller of MaxSize and the
// largest number representable with Digits total and Decimals fractional
// digits.
func (c Capability) Max() (decimal.Decimal, bool) {
	var (
		limit decimal.Decimal
		found bool
	)
	if c.Digits > 0 {
		// 10^(digits-decimals) - 10^-decimals, e.g. digits=4 decimals=3 -> 9.999
		limit = decimal.New(1, int32(c.Digits-c.Decimals)).Sub(decimal.New(1, -int32(c.Decimals)))
		found = true
	}
	if c.MaxSize != nil && (!found || c.MaxSize.LessThan(limit)) {
		limit = *c.MaxSize
		found = true
	}
	return limit, found
}

func (c Capability) clone() Capability {
	out := c
	if c.MinSize != nil {
		v := *c.MinSize
		out.MinSize = &v
	}
	if c.MaxSize != nil {
		v := *c.MaxSize
		out.MaxSize = &v
	}
	return out
}

// Set is the capability set of a device model. A Set handed out by a
// Registry is a private copy.
type Set struct {
	Model          string                `json:"model"`
	Charset        string                `json:"charset"`
	Units          []model.Unit          `json:"units"`
	PaymentMethods []model.PaymentMethod `json:"paymentMethods"`
	Arguments      map[string]Capability `json:"arguments"`
}

// Lookup returns the capability for an argument name.
func (s Set) Lookup(argument string) (Capability, bool) {
	c, ok := s.Arguments[argument]
	return c, ok
}

// AllowsUnit reports whether the device accepts u.
func (s Set) AllowsUnit(u model.Unit) bool {
	return slices.Contains(s.Units, u)
}

// AllowsPaymentMethod reports whether the device accepts m.
func (s Set) AllowsPaymentMethod(m model.PaymentMethod) bool {
	return slices.Contains(s.PaymentMethods, m)
}

// Clone returns a deep copy of s.
func (s Set) Clone() Set {
	out := Set{
		Model:          s.Model,
		Charset:        s.Charset,
		Units:          slices.Clone(s.Units),
		PaymentMethods: slices.Clone(s.PaymentMethods),
	}
	if s.Arguments != nil {
		out.Arguments = make(map[string]Capability, len(s.Arguments))
		for name, c := range s.Arguments {
			out.Arguments[name] = c.clone()
		}
	}
	return out
}

// Validate checks that the set is usable by the argument validators.
func (s Set) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("capability set model is required")
	}
	if !charset.Supported(s.Charset) {
		return fmt.Errorf("capability set charset %q is not supported", s.Charset)
	}
	if len(s.Units) == 0 {
		return fmt.Errorf("capability set must allow at least one unit")
	}
	for _, u := range s.Units {
		if !u.Valid() {
			return fmt.Errorf("capability set has invalid unit %d", int(u))
		}
	}
	if len(s.PaymentMethods) == 0 {
		return fmt.Errorf("capability set must allow at least one payment method")
	}
	for _, m := range s.PaymentMethods {
		if !m.Valid() {
			return fmt.Errorf("capability set has invalid payment method %d", int(m))
		}
	}

	for name, c := range s.Arguments {
		if !knownArguments[name] {
			return fmt.Errorf("capability set has unknown argument %q", name)
		}
		if c.Digits < 0 || c.Decimals < 0 || c.MaxLen < 0 {
			return fmt.Errorf("capability %s: negative limits", name)
		}
		if c.Digits > 0 && c.Decimals >= c.Digits {
			return fmt.Errorf("capability %s: decimals (%d) must be less than digits (%d)", name, c.Decimals, c.Digits)
		}
		if c.MinSize != nil && c.MaxSize != nil && c.MinSize.GreaterThan(*c.MaxSize) {
			return fmt.Errorf("capability %s: min size exceeds max size", name)
		}
	}

	return nil
}

// DefaultProfile returns the capability set of a generic fiscal printer.
func DefaultProfile() Set {
	minCash := decimal.RequireFromString("0.01")
	return Set{
		Model:   "generic",
		Charset: "cp850",
		Units: []model.Unit{
			model.UnitWeight,
			model.UnitMeters,
			model.UnitLiters,
			model.UnitEmpty,
			model.UnitCustom,
		},
		PaymentMethods: []model.PaymentMethod{
			model.PaymentMoney,
			model.PaymentCheque,
		},
		Arguments: map[string]Capability{
			ItemCode:           {MaxLen: 13},
			ItemDescription:    {MaxLen: 29},
			ItemQuantity:       {Digits: 7, Decimals: 3},
			ItemPrice:          {Digits: 8, Decimals: 2},
			PaymentValue:       {Digits: 12, Decimals: 2},
			PaymentDescription: {MaxLen: 80},
			PromotionalMessage: {MaxLen: 492},
			CustomerName:       {MaxLen: 30},
			CustomerAddress:    {MaxLen: 80},
			CustomerID:         {MaxLen: 29},
			AddCashValue:       {MinSize: &minCash, Digits: 12, Decimals: 2},
			RemoveCashValue:    {MinSize: &minCash, Digits: 12, Decimals: 2},
			Adjustment:         {Digits: 5, Decimals: 2},
		},
	}
}
