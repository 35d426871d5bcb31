package value

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotNumeric is returned by ToNumber/ToDecimal when a value has no
// numeric interpretation.
type ErrNotNumeric struct {
	Kind Kind
}

func (e ErrNotNumeric) Error() string {
	return fmt.Sprintf("value of kind %s is not numeric", e.Kind)
}

// ToNumber coerces v to a numeric Value following the loose-coercion
// rules: numbers pass through, numeric strings parse, booleans map
// to 1/0, null maps to 0. Arrays/objects have no numeric interpretation.
func (v Value) ToNumber() (Value, error) {
	switch v.kind {
	case KindInt, KindFloat, KindDecimal:
		return v, nil
	case KindBool:
		if v.boolean {
			return Int(1), nil
		}
		return Int(0), nil
	case KindNull:
		return Int(0), nil
	case KindString:
		return parseNumericString(v.str)
	default:
		return Value{}, ErrNotNumeric{Kind: v.kind}
	}
}

// ToDecimal coerces v to a decimal.Decimal, promoting through ToNumber
// first. Used wherever exact decimal arithmetic is required.
func (v Value) ToDecimal() (decimal.Decimal, error) {
	n, err := v.ToNumber()
	if err != nil {
		return decimal.Zero, err
	}
	return n.toDecimalValue()
}

func (v Value) toDecimalValue() (decimal.Decimal, error) {
	switch v.kind {
	case KindDecimal:
		return v.decimal, nil
	case KindInt:
		return decimal.NewFromInt(v.integer), nil
	case KindFloat:
		return decimal.NewFromFloat(v.float), nil
	default:
		return decimal.Zero, ErrNotNumeric{Kind: v.kind}
	}
}

func (v Value) toFloat64() (float64, error) {
	switch v.kind {
	case KindInt:
		return float64(v.integer), nil
	case KindFloat:
		return v.float, nil
	case KindDecimal:
		f, _ := v.decimal.Float64()
		return f, nil
	default:
		return 0, ErrNotNumeric{Kind: v.kind}
	}
}

// parseNumericString parses a string as a decimal-shaped number, for
// loose-equality's "parse the string as decimal; if it parses, compare
// numerically" rule. A successfully parsed string becomes a Decimal Value
// so downstream comparisons stay exact.
func parseNumericString(s string) (Value, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{}, fmt.Errorf("empty string is not numeric")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Value{}, fmt.Errorf("%q does not parse as a number: %w", s, err)
	}
	return Decimal(d), nil
}

// numericCompare orders two already-numeric Values, promoting to Decimal
// whenever either operand is Decimal, to preserve exactness.
func numericCompare(a, b Value) (int, bool) {
	if a.kind == KindDecimal || b.kind == KindDecimal {
		da, err1 := a.toDecimalValue()
		db, err2 := b.toDecimalValue()
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return da.Cmp(db), true
	}
	if a.kind == KindInt && b.kind == KindInt {
		switch {
		case a.integer < b.integer:
			return -1, true
		case a.integer > b.integer:
			return 1, true
		default:
			return 0, true
		}
	}
	af, err1 := a.toFloat64()
	bf, err2 := b.toFloat64()
	if err1 != nil || err2 != nil {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}
