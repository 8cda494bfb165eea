// Package argument holds the typed values a fiscal command accepts. Every
// value is built through a constructor that rejects malformed input, so a
// command holding an Amount, Percentage or Quantity was validated.
package argument

import (
	"fmt"

	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fractional digits of a monetary amount.
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Amount is a non-negative monetary amount with at most CurrencyPlaces
// fractional digits.
type Amount struct {
	value decimal.Decimal
}

// NewAmount validates d as a monetary amount for field.
func NewAmount(field string, d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, model.NewValidationError(field, model.ErrCodeInvalidValue,
			fmt.Sprintf("%s must not be negative", d))
	}
	if !hasPlaces(d, CurrencyPlaces) {
		return Amount{}, model.NewValidationError(field, model.ErrCodeInvalidValue,
			fmt.Sprintf("%s has more than %d decimal places", d, CurrencyPlaces))
	}
	return Amount{value: d}, nil
}

// NewPositiveAmount validates d as a monetary amount greater than zero.
func NewPositiveAmount(field string, d decimal.Decimal) (Amount, error) {
	a, err := NewAmount(field, d)
	if err != nil {
		return Amount{}, err
	}
	if a.value.IsZero() {
		return Amount{}, model.NewValidationError(field, model.ErrCodeInvalidValue, "must be greater than zero")
	}
	return a, nil
}

// Decimal returns the amount as a decimal.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.value.IsZero() }

func (a Amount) String() string { return a.value.StringFixed(CurrencyPlaces) }

// Percentage is a discount or charge rate in [0, 100].
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage validates d as a percentage for field. The number of
// decimal places a device accepts is checked by Validator.Percentage.
func NewPercentage(field string, d decimal.Decimal) (Percentage, error) {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return Percentage{}, model.NewValidationError(field, model.ErrCodeOutOfRange,
			fmt.Sprintf("%s is not within [0, 100]", d))
	}
	return Percentage{value: d}, nil
}

// Decimal returns the percentage as a decimal, e.g. 1.5 for 1.5%.
func (p Percentage) Decimal() decimal.Decimal { return p.value }

// IsZero reports whether the percentage is zero.
func (p Percentage) IsZero() bool { return p.value.IsZero() }

func (p Percentage) String() string { return p.value.String() + "%" }

// Exclusive fails when both discount and charge are non-zero.
func Exclusive(discount, charge Percentage) error {
	if !discount.IsZero() && !charge.IsZero() {
		return model.NewValidationError("discount", model.ErrCodeConflictingArguments,
			fmt.Sprintf("discount (%s) and charge (%s) are mutually exclusive", discount, charge))
	}
	return nil
}

// Quantity is a positive item quantity.
type Quantity struct {
	value decimal.Decimal
}

// NewQuantity validates d as a quantity. Device digit limits are applied by
// Validator.Quantity.
func NewQuantity(field string, d decimal.Decimal) (Quantity, error) {
	if !d.IsPositive() {
		return Quantity{}, model.NewValidationError(field, model.ErrCodeInvalidValue,
			fmt.Sprintf("%s must be greater than zero", d))
	}
	return Quantity{value: d}, nil
}

// Decimal returns the quantity as a decimal.
func (q Quantity) Decimal() decimal.Decimal { return q.value }

func (q Quantity) String() string { return q.value.String() }

// CheckTaxCode fails unless t is one of the TaxCode constants.
func CheckTaxCode(t model.TaxCode) error {
	if !t.Valid() {
		return model.NewValidationError("tax_code", model.ErrCodeInvalidEnumValue,
			fmt.Sprintf("%s is not a known tax code", t))
	}
	return nil
}

// hasPlaces reports whether d has at most places fractional digits.
func hasPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
