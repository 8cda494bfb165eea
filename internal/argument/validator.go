package argument

import (
	"fmt"
	"unicode/utf8"

	"fiscal-coupon/internal/capability"
	"fiscal-coupon/internal/charset"
	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// UnitDescriptionLen is the exact length of a custom unit description.
const UnitDescriptionLen = 2

// Validator composes the argument constructors with the limits of one
// device: its capability set and its charset.
type Validator struct {
	caps  capability.Set
	codec charset.Codec
}

// NewValidator creates a validator for the device described by caps.
func NewValidator(caps capability.Set) (*Validator, error) {
	codec, err := charset.New(caps.Charset)
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}
	return &Validator{caps: caps, codec: codec}, nil
}

// Codec returns the device charset codec.
func (v *Validator) Codec() charset.Codec {
	return v.codec
}

// Amount validates a monetary amount for field and, when the capability set
// constrains argument, its range and digit count.
func (v *Validator) Amount(argument, field string, d decimal.Decimal) (Amount, error) {
	a, err := NewAmount(field, d)
	if err != nil {
		return Amount{}, err
	}
	if err := v.checkRange(argument, field, d); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// PositiveAmount is Amount for values that must be greater than zero, such
// as unit prices and payment values.
func (v *Validator) PositiveAmount(argument, field string, d decimal.Decimal) (Amount, error) {
	a, err := NewPositiveAmount(field, d)
	if err != nil {
		return Amount{}, err
	}
	if err := v.checkRange(argument, field, d); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// Quantity validates an item quantity against the device digit limits.
func (v *Validator) Quantity(d decimal.Decimal) (Quantity, error) {
	q, err := NewQuantity("quantity", d)
	if err != nil {
		return Quantity{}, err
	}
	if err := v.checkRange(capability.ItemQuantity, "quantity", d); err != nil {
		return Quantity{}, err
	}
	return q, nil
}

// Percentage validates a discount or charge rate for field against the
// adjustment limits of the device.
func (v *Validator) Percentage(field string, d decimal.Decimal) (Percentage, error) {
	p, err := NewPercentage(field, d)
	if err != nil {
		return Percentage{}, err
	}
	if err := v.checkRange(capability.Adjustment, field, d); err != nil {
		return Percentage{}, err
	}
	return p, nil
}

// Unit fails unless u is a known unit the device accepts.
func (v *Validator) Unit(u model.Unit) error {
	if !u.Valid() {
		return model.NewValidationError("unit", model.ErrCodeInvalidEnumValue,
			fmt.Sprintf("%s is not a known unit", u))
	}
	if !v.caps.AllowsUnit(u) {
		return model.NewValidationError("unit", model.ErrCodeInvalidEnumValue,
			fmt.Sprintf("%s is not supported by %s", u, v.caps.Model))
	}
	return nil
}

// PaymentMethod fails unless m is a known method the device accepts.
func (v *Validator) PaymentMethod(m model.PaymentMethod) error {
	if !m.Valid() {
		return model.NewValidationError("payment_method", model.ErrCodeInvalidEnumValue,
			fmt.Sprintf("%s is not a known payment method", m))
	}
	if !v.caps.AllowsPaymentMethod(m) {
		return model.NewValidationError("payment_method", model.ErrCodeInvalidEnumValue,
			fmt.Sprintf("%s is not supported by %s", m, v.caps.Model))
	}
	return nil
}

// UnitDescription applies the custom unit rule: a custom unit needs exactly
// two encodable characters, any other unit takes none. It returns the
// encoded description.
func (v *Validator) UnitDescription(u model.Unit, desc string) ([]byte, error) {
	if u != model.UnitCustom {
		if desc != "" {
			return nil, model.NewValidationError("unit_description", model.ErrCodeInvalidUnitDescription,
				fmt.Sprintf("must be empty for unit %s", u))
		}
		return nil, nil
	}

	if n := utf8.RuneCountInString(desc); n != UnitDescriptionLen {
		return nil, model.NewValidationError("unit_description", model.ErrCodeInvalidUnitDescription,
			fmt.Sprintf("custom unit needs exactly %d characters, got %d", UnitDescriptionLen, n))
	}
	encoded, err := v.codec.Encode(desc)
	if err != nil {
		return nil, model.NewValidationError("unit_description", model.ErrCodeInvalidUnitDescription,
			fmt.Sprintf("%q is not encodable in %s", desc, v.codec.Name()))
	}
	return encoded, nil
}

// Text encodes s in the device charset and checks the length limit the
// capability set defines for argument.
func (v *Validator) Text(argument, field, s string) ([]byte, error) {
	if c, ok := v.caps.Lookup(argument); ok && c.MaxLen > 0 {
		if n := utf8.RuneCountInString(s); n > c.MaxLen {
			return nil, model.NewValidationError(field, model.ErrCodeTextTooLong,
				fmt.Sprintf("%d characters exceed the limit of %d", n, c.MaxLen))
		}
	}
	encoded, err := v.codec.Encode(s)
	if err != nil {
		return nil, model.NewValidationError(field, model.ErrCodeTextNotEncodable,
			fmt.Sprintf("not encodable in %s", v.codec.Name()))
	}
	return encoded, nil
}

func (v *Validator) checkRange(argument, field string, d decimal.Decimal) error {
	c, ok := v.caps.Lookup(argument)
	if !ok {
		return nil
	}
	if c.Digits > 0 && !hasPlaces(d, int32(c.Decimals)) {
		return model.NewValidationError(field, model.ErrCodeOutOfRange,
			fmt.Sprintf("%s has more than %d decimal places", d, c.Decimals))
	}
	if c.MinSize != nil && d.LessThan(*c.MinSize) {
		return model.NewValidationError(field, model.ErrCodeOutOfRange,
			fmt.Sprintf("%s is below the minimum of %s", d, c.MinSize))
	}
	if limit, found := c.Max(); found && d.GreaterThan(limit) {
		return model.NewValidationError(field, model.ErrCodeOutOfRange,
			fmt.Sprintf("%s exceeds the maximum of %s", d, limit))
	}
	return nil
}
