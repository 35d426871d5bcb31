package value

// Truthy implements the load-bearing truthiness rules: Null and false are
// false; zero numbers are false; empty string/array/object are false;
// everything else is true. and/or short-circuit and filter both depend on
// this exact table.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolean
	case KindInt:
		return v.integer != 0
	case KindFloat:
		return v.float != 0
	case KindDecimal:
		return !v.decimal.IsZero()
	case KindString:
		return v.str != ""
	case KindArray:
		return len(v.array) > 0
	case KindObject:
		return v.object != nil && v.object.Len() > 0
	default:
		return false
	}
}
