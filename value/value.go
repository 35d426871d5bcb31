// Package value implements the tagged runtime value type shared by every
// operator in the rule evaluation core: its truthiness, equality, numeric
// coercion and decimal arithmetic semantics.
package value

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/shopspring/decimal"
)

// Kind tags the variant a Value currently holds. Kind is a closed set —
// every operator switches exhaustively over it rather than relying on a
// Go interface type-switch scattered across the codebase.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDecimal
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Object is an insertion-order-preserving String -> Value mapping. Backed
// by wk8/go-ordered-map rather than a plain Go map, whose iteration order
// is undefined.
type Object = orderedmap.OrderedMap[string, Value]

// NewObject allocates an empty, ordered Object.
func NewObject() *Object {
	return orderedmap.New[string, Value]()
}

// Value is a tagged union over eight variants. Exactly one payload field
// is meaningful for a given Kind; the rest are zero.
type Value struct {
	kind    Kind
	boolean bool
	integer int64
	float   float64
	decimal decimal.Decimal
	str     string
	array   []Value
	object  *Object
}

// Null is the shared Null value.
var Null = Value{kind: KindNull}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Int wraps a signed 64-bit integer.
func Int(i int64) Value { return Value{kind: KindInt, integer: i} }

// Float wraps a float64.
func Float(f float64) Value { return Value{kind: KindFloat, float: f} }

// Decimal wraps an arbitrary-precision decimal.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, decimal: d} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array wraps an ordered sequence of Values.
func Array(items []Value) Value { return Value{kind: KindArray, array: items} }

// ObjectValue wraps a pre-built ordered Object.
func ObjectValue(o *Object) Value { return Value{kind: KindObject, object: o} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)      { return v.boolean, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)      { return v.integer, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)  { return v.float, v.kind == KindFloat }
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	return v.decimal, v.kind == KindDecimal
}
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsArray() ([]Value, bool) { return v.array, v.kind == KindArray }
func (v Value) AsObject() (*Object, bool) { return v.object, v.kind == KindObject }

// IsNumber reports whether v holds one of the three numeric variants.
func (v Value) IsNumber() bool {
	return v.kind == KindInt || v.kind == KindFloat || v.kind == KindDecimal
}

// Clone deep-copies array and object values; scalars are copied by value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		cloned := make([]Value, len(v.array))
		for i, item := range v.array {
			cloned[i] = item.Clone()
		}
		return Array(cloned)
	case KindObject:
		if v.object == nil {
			return ObjectValue(NewObject())
		}
		cloned := NewObject()
		for pair := v.object.Oldest(); pair != nil; pair = pair.Next() {
			cloned.Set(pair.Key, pair.Value.Clone())
		}
		return ObjectValue(cloned)
	default:
		return v
	}
}

// String renders a human-readable display form, used for logging and the
// "cat"/string-concatenation operators.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.boolean)
	case KindInt:
		return fmt.Sprintf("%d", v.integer)
	case KindFloat:
		return fmt.Sprintf("%v", v.float)
	case KindDecimal:
		return v.decimal.String()
	case KindString:
		return v.str
	case KindArray:
		out := "["
		for i, item := range v.array {
			if i > 0 {
				out += ","
			}
			out += item.String()
		}
		return out + "]"
	case KindObject:
		out := "{"
		first := true
		if v.object != nil {
			for pair := v.object.Oldest(); pair != nil; pair = pair.Next() {
				if !first {
					out += ","
				}
				first = false
				out += pair.Key + ":" + pair.Value.String()
			}
		}
		return out + "}"
	default:
		return ""
	}
}
