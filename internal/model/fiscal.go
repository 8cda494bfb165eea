package model

import (
	"fmt"
	"strings"
)

// CouponStatus is the lifecycle state of a coupon.
type CouponStatus int

const (
	StatusIdle CouponStatus = iota
	StatusOpen
	StatusTotalized
	StatusClosed
	StatusCancelled
)

var couponStatusNames = map[CouponStatus]string{
	StatusIdle:      "idle",
	StatusOpen:      "open",
	StatusTotalized: "totalized",
	StatusClosed:    "closed",
	StatusCancelled: "cancelled",
}

func (s CouponStatus) String() string {
	if name, ok := couponStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s CouponStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CouponStatus) UnmarshalText(text []byte) error {
	for status, name := range couponStatusNames {
		if string(text) == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown coupon status %q", text)
}

// Unit is the measuring unit of a coupon item.
type Unit int

const (
	UnitWeight Unit = iota + 1
	UnitMeters
	UnitLiters
	UnitEmpty
	UnitCustom
)

var unitNames = map[Unit]string{
	UnitWeight: "weight",
	UnitMeters: "meters",
	UnitLiters: "liters",
	UnitEmpty:  "empty",
	UnitCustom: "custom",
}

// Valid reports whether u is one of the Unit constants.
func (u Unit) Valid() bool {
	_, ok := unitNames[u]
	return ok
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

// ParseUnit parses a unit name.
func ParseUnit(s string) (Unit, error) {
	for u, name := range unitNames {
		if strings.EqualFold(s, name) {
			return u, nil
		}
	}
	return 0, NewValidationError("unit", ErrCodeInvalidEnumValue,
		fmt.Sprintf("%q is not one of weight, meters, liters, empty, custom", s))
}

func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", u)
	}
	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	v, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// TaxCode is the tax classification of an item or of a whole coupon.
type TaxCode int

const (
	TaxNone TaxCode = iota + 1
	TaxIOF
	TaxICMS
	TaxSubstitution
	TaxExemption
)

var taxCodeNames = map[TaxCode]string{
	TaxNone:         "none",
	TaxIOF:          "iof",
	TaxICMS:         "icms",
	TaxSubstitution: "substitution",
	TaxExemption:    "exemption",
}

// Valid reports whether t is one of the TaxCode constants.
func (t TaxCode) Valid() bool {
	_, ok := taxCodeNames[t]
	return ok
}

func (t TaxCode) String() string {
	if name, ok := taxCodeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tax(%d)", int(t))
}

// ParseTaxCode parses a tax code name.
func ParseTaxCode(s string) (TaxCode, error) {
	for t, name := range taxCodeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, NewValidationError("tax_code", ErrCodeInvalidEnumValue,
		fmt.Sprintf("%q is not one of none, iof, icms, substitution, exemption", s))
}

func (t TaxCode) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return []byte(t.String()), nil
}

func (t *TaxCode) UnmarshalText(text []byte) error {
	v, err := ParseTaxCode(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PaymentMethod is the means of a coupon payment.
type PaymentMethod int

const (
	PaymentMoney PaymentMethod = iota + 1
	PaymentCheque
)

var paymentMethodNames = map[PaymentMethod]string{
	PaymentMoney:  "money",
	PaymentCheque: "cheque",
}

// Valid reports whether m is one of the PaymentMethod constants.
func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodNames[m]
	return ok
}

func (m PaymentMethod) String() string {
	if name, ok := paymentMethodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("payment_method(%d)", int(m))
}

// ParsePaymentMethod parses a payment method name.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for m, name := range paymentMethodNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, NewValidationError("payment_method", ErrCodeInvalidEnumValue,
		fmt.Sprintf("%q is not one of money, cheque", s))
}

func (m PaymentMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", m)
	}
	return []byte(m.String()), nil
}

func (m *PaymentMethod) UnmarshalText(text []byte) error {
	v, err := ParsePaymentMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ItemHandle identifies an item inside the coupon it was added to.
type ItemHandle int

// CouponID is the identifier the device assigns to a closed coupon.
type CouponID int64
