package value

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero is returned by Div/Mod on a zero divisor, never an
// infinity or NaN.
var ErrDivisionByZero = errors.New("division by zero")

// ErrTypeMismatch is returned when an arithmetic operand has no numeric
// interpretation.
type ErrTypeMismatch struct {
	Op    string
	Left  Kind
	Right Kind
}

func (e ErrTypeMismatch) Error() string {
	return fmt.Sprintf("operator %q: incompatible operand kinds %s and %s", e.Op, e.Left, e.Right)
}

// resultKind decides the promotion rule: Decimal wins over
// Float wins over Int.
func resultKind(a, b Value) Kind {
	if a.kind == KindDecimal || b.kind == KindDecimal {
		return KindDecimal
	}
	if a.kind == KindFloat || b.kind == KindFloat {
		return KindFloat
	}
	return KindInt
}

func numericPair(op string, a, b Value) (Value, Value, error) {
	na, err := a.ToNumber()
	if err != nil {
		return Value{}, Value{}, ErrTypeMismatch{Op: op, Left: a.kind, Right: b.kind}
	}
	nb, err := b.ToNumber()
	if err != nil {
		return Value{}, Value{}, ErrTypeMismatch{Op: op, Left: a.kind, Right: b.kind}
	}
	return na, nb, nil
}

// Add implements "+". Numeric only; string concatenation is handled by the
// "cat" operator at the interpreter level, not by Add.
func Add(a, b Value) (Value, error) {
	na, nb, err := numericPair("+", a, b)
	if err != nil {
		return Value{}, err
	}
	switch resultKind(na, nb) {
	case KindDecimal:
		da, _ := na.toDecimalValue()
		db, _ := nb.toDecimalValue()
		return Decimal(da.Add(db)), nil
	case KindFloat:
		fa, _ := na.toFloat64()
		fb, _ := nb.toFloat64()
		return Float(fa + fb), nil
	default:
		return Int(na.integer + nb.integer), nil
	}
}

// Sub implements binary "-".
func Sub(a, b Value) (Value, error) {
	na, nb, err := numericPair("-", a, b)
	if err != nil {
		return Value{}, err
	}
	switch resultKind(na, nb) {
	case KindDecimal:
		da, _ := na.toDecimalValue()
		db, _ := nb.toDecimalValue()
		return Decimal(da.Sub(db)), nil
	case KindFloat:
		fa, _ := na.toFloat64()
		fb, _ := nb.toFloat64()
		return Float(fa - fb), nil
	default:
		return Int(na.integer - nb.integer), nil
	}
}

// Mul implements "*".
func Mul(a, b Value) (Value, error) {
	na, nb, err := numericPair("*", a, b)
	if err != nil {
		return Value{}, err
	}
	switch resultKind(na, nb) {
	case KindDecimal:
		da, _ := na.toDecimalValue()
		db, _ := nb.toDecimalValue()
		return Decimal(da.Mul(db)), nil
	case KindFloat:
		fa, _ := na.toFloat64()
		fb, _ := nb.toFloat64()
		return Float(fa * fb), nil
	default:
		return Int(na.integer * nb.integer), nil
	}
}

// Div implements "/". Division by zero is always a failure, never an
// infinity.
func Div(a, b Value) (Value, error) {
	na, nb, err := numericPair("/", a, b)
	if err != nil {
		return Value{}, err
	}
	switch resultKind(na, nb) {
	case KindDecimal:
		da, _ := na.toDecimalValue()
		db, _ := nb.toDecimalValue()
		if db.IsZero() {
			return Value{}, ErrDivisionByZero
		}
		return Decimal(da.Div(db)), nil
	case KindFloat:
		fa, _ := na.toFloat64()
		fb, _ := nb.toFloat64()
		if fb == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Float(fa / fb), nil
	default:
		if nb.integer == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Int(na.integer / nb.integer), nil
	}
}

// Mod implements "%", following truncated-division sign of the dividend
// (Go's native int and math.Mod-on-truncated-quotient semantics both
// already truncate toward zero).
func Mod(a, b Value) (Value, error) {
	na, nb, err := numericPair("%", a, b)
	if err != nil {
		return Value{}, err
	}
	switch resultKind(na, nb) {
	case KindDecimal:
		da, _ := na.toDecimalValue()
		db, _ := nb.toDecimalValue()
		if db.IsZero() {
			return Value{}, ErrDivisionByZero
		}
		return Decimal(da.Mod(db)), nil
	case KindFloat:
		fa, _ := na.toFloat64()
		fb, _ := nb.toFloat64()
		if fb == 0 {
			return Value{}, ErrDivisionByZero
		}
		quotient := fa / fb
		truncated := float64(int64(quotient))
		return Float(fa - truncated*fb), nil
	default:
		if nb.integer == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Int(na.integer % nb.integer), nil
	}
}

// Min returns the smallest of the given values. Returns ErrTypeMismatch
// if any pair is not order-comparable.
func Min(values []Value) (Value, error) {
	return extremum(values, -1)
}

// Max returns the largest of the given values.
func Max(values []Value) (Value, error) {
	return extremum(values, 1)
}

func extremum(values []Value, want int) (Value, error) {
	if len(values) == 0 {
		return Null, nil
	}
	best := values[0]
	for _, v := range values[1:] {
		cmp, ok := Compare(v, best)
		if !ok {
			return Value{}, ErrTypeMismatch{Op: "min/max", Left: v.kind, Right: best.kind}
		}
		if cmp == want {
			best = v
		}
	}
	return best, nil
}
