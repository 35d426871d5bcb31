package value

// LooseEquals implements "==": numeric cross-type coercion,
// string-to-number coercion, bool-vs-other via truthiness, structural
// array/object equality, and single-element-array unwrapping.
func (v Value) LooseEquals(other Value) bool {
	// single-element array unwraps to its element before any other rule applies.
	if v.kind == KindArray && len(v.array) == 1 && other.kind != KindArray {
		return v.array[0].LooseEquals(other)
	}
	if other.kind == KindArray && len(other.array) == 1 && v.kind != KindArray {
		return v.LooseEquals(other.array[0])
	}

	if v.kind == KindNull || other.kind == KindNull {
		return v.kind == KindNull && other.kind == KindNull
	}

	if v.kind == KindBool || other.kind == KindBool {
		return v.Truthy() == other.Truthy()
	}

	if v.IsNumber() && other.IsNumber() {
		cmp, ok := numericCompare(v, other)
		return ok && cmp == 0
	}

	if v.IsNumber() && other.kind == KindString {
		parsed, err := parseNumericString(other.str)
		if err != nil {
			return false
		}
		cmp, ok := numericCompare(v, parsed)
		return ok && cmp == 0
	}
	if other.IsNumber() && v.kind == KindString {
		return other.LooseEquals(v)
	}

	if v.kind == KindString && other.kind == KindString {
		return v.str == other.str
	}

	if v.kind == KindArray && other.kind == KindArray {
		if len(v.array) != len(other.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].LooseEquals(other.array[i]) {
				return false
			}
		}
		return true
	}

	if v.kind == KindObject && other.kind == KindObject {
		return objectsLooseEqual(v.object, other.object)
	}

	return false
}

func objectsLooseEqual(a, b *Object) bool {
	if a == nil || b == nil {
		return a == b || (a != nil && a.Len() == 0) || (b != nil && b.Len() == 0)
	}
	if a.Len() != b.Len() {
		return false
	}
	for pair := a.Oldest(); pair != nil; pair = pair.Next() {
		bv, ok := b.Get(pair.Key)
		if !ok || !pair.Value.LooseEquals(bv) {
			return false
		}
	}
	return true
}

// StrictEquals implements "===": same variant tag and same underlying
// value, no coercions of any kind.
func (v Value) StrictEquals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolean == other.boolean
	case KindInt:
		return v.integer == other.integer
	case KindFloat:
		return v.float == other.float
	case KindDecimal:
		return v.decimal.Equal(other.decimal)
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.array) != len(other.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].StrictEquals(other.array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.object == nil || other.object == nil {
			return (v.object == nil || v.object.Len() == 0) && (other.object == nil || other.object.Len() == 0)
		}
		if v.object.Len() != other.object.Len() {
			return false
		}
		for pair := v.object.Oldest(); pair != nil; pair = pair.Next() {
			ov, ok := other.object.Get(pair.Key)
			if !ok || !pair.Value.StrictEquals(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values for the "<","<=",">",">=" family and for chain
// comparisons. It returns (-1/0/1, true) when the two values
// are order-comparable, or (0, false) when they are not — the caller
// surfaces the latter as TypeMismatch.
func Compare(a, b Value) (int, bool) {
	if a.IsNumber() && b.IsNumber() {
		return numericCompare(a, b)
	}
	if a.IsNumber() && b.kind == KindString {
		parsed, err := parseNumericString(b.str)
		if err != nil {
			return 0, false
		}
		return numericCompare(a, parsed)
	}
	if b.IsNumber() && a.kind == KindString {
		parsed, err := parseNumericString(a.str)
		if err != nil {
			return 0, false
		}
		return numericCompare(parsed, b)
	}
	if a.kind == KindString && b.kind == KindString {
		switch {
		case a.str < b.str:
			return -1, true
		case a.str > b.str:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}
