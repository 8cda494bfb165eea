package capability

import (
	"testing"

	"fiscal-coupon/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile_Valid(t *testing.T) {
	set := DefaultProfile()

	require.NoError(t, set.Validate())
	assert.Equal(t, "generic", set.Model)
	assert.Equal(t, "cp850", set.Charset)
	assert.True(t, set.AllowsUnit(model.UnitCustom))
	assert.True(t, set.AllowsPaymentMethod(model.PaymentCheque))
}

func TestCapability_Max(t *testing.T) {
	ten := decimal.NewFromInt(10)
	huge := decimal.NewFromInt(1_000_000)

	tests := []struct {
		name     string
		cap      Capability
		expected string
		found    bool
	}{
		{
			name:     "Digits and decimals",
			cap:      Capability{Digits: 4, Decimals: 3},
			expected: "9.999",
			found:    true,
		},
		{
			name:     "Integer digits only",
			cap:      Capability{Digits: 3},
			expected: "999",
			found:    true,
		},
		{
			name:     "Max size below digit limit",
			cap:      Capability{Digits: 8, Decimals: 2, MaxSize: &ten},
			expected: "10",
			found:    true,
		},
		{
			name:     "Max size above digit limit",
			cap:      Capability{Digits: 4, Decimals: 2, MaxSize: &huge},
			expected: "99.99",
			found:    true,
		},
		{
			name:     "Max size only",
			cap:      Capability{MaxSize: &ten},
			expected: "10",
			found:    true,
		},
		{
			name:  "Unconstrained",
			cap:   Capability{MaxLen: 10},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, found := tt.cap.Max()
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.True(t, limit.Equal(decimal.RequireFromString(tt.expected)),
					"expected %s, got %s", tt.expected, limit)
			}
		})
	}
}

func TestSet_Lookup(t *testing.T) {
	set := DefaultProfile()

	c, ok := set.Lookup(ItemCode)
	assert.True(t, ok)
	assert.Equal(t, 13, c.MaxLen)

	_, ok = set.Lookup("no_such_argument")
	assert.False(t, ok)
}

func TestSet_Clone(t *testing.T) {
	original := DefaultProfile()
	clone := original.Clone()

	require.Equal(t, original, clone)

	// Mutating the clone must not leak into the original
	clone.Units[0] = model.UnitCustom
	clone.PaymentMethods = append(clone.PaymentMethods[:0], model.PaymentCheque)
	clone.Arguments[ItemCode] = Capability{MaxLen: 1}
	minSize := clone.Arguments[AddCashValue].MinSize
	*minSize = decimal.NewFromInt(99)

	assert.Equal(t, model.UnitWeight, original.Units[0])
	assert.Equal(t, model.PaymentMoney, original.PaymentMethods[0])
	assert.Equal(t, 13, original.Arguments[ItemCode].MaxLen)
	assert.True(t, original.Arguments[AddCashValue].MinSize.Equal(decimal.RequireFromString("0.01")))
}

func TestSet_Validate(t *testing.T) {
	one := decimal.NewFromInt(1)
	two := decimal.NewFromInt(2)

	tests := []struct {
		name     string
		mutate   func(s *Set)
		errorMsg string
	}{
		{
			name:     "Missing model",
			mutate:   func(s *Set) { s.Model = "" },
			errorMsg: "model is required",
		},
		{
			name:     "Unsupported charset",
			mutate:   func(s *Set) { s.Charset = "ebcdic-klingon" },
			errorMsg: "not supported",
		},
		{
			name:     "No units",
			mutate:   func(s *Set) { s.Units = nil },
			errorMsg: "at least one unit",
		},
		{
			name:     "Invalid unit",
			mutate:   func(s *Set) { s.Units = []model.Unit{model.Unit(42)} },
			errorMsg: "invalid unit",
		},
		{
			name:     "No payment methods",
			mutate:   func(s *Set) { s.PaymentMethods = nil },
			errorMsg: "at least one payment method",
		},
		{
			name:     "Invalid payment method",
			mutate:   func(s *Set) { s.PaymentMethods = []model.PaymentMethod{0} },
			errorMsg: "invalid payment method",
		},
		{
			name:     "Unknown argument",
			mutate:   func(s *Set) { s.Arguments["frobnicate"] = Capability{} },
			errorMsg: "unknown argument",
		},
		{
			name:     "Decimals not below digits",
			mutate:   func(s *Set) { s.Arguments[ItemQuantity] = Capability{Digits: 3, Decimals: 3} },
			errorMsg: "decimals (3) must be less than digits (3)",
		},
		{
			name:     "Negative limit",
			mutate:   func(s *Set) { s.Arguments[ItemCode] = Capability{MaxLen: -1} },
			errorMsg: "negative limits",
		},
		{
			name:     "Min above max",
			mutate:   func(s *Set) { s.Arguments[AddCashValue] = Capability{MinSize: &two, MaxSize: &one} },
			errorMsg: "min size exceeds max size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := DefaultProfile()
			tt.mutate(&set)

			err := set.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
