package interpreter

import (
	"rulecore/ast"
	"rulecore/rulectx"
	"rulecore/value"
)

// evalSubstr implements the standard jsonlogic substr(string, start[,
// length]): a negative start counts back from the end of the string; an
// omitted length takes the remainder; a negative length trims that many
// characters off the end instead of counting forward.
func evalSubstr(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	operands, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}

	s := operands[0].String()
	runes := []rune(s)
	n := len(runes)

	start, startErr := asIndex(operands[1])
	if startErr != nil {
		return value.Value{}, runtimeErr("substr", "start must be numeric")
	}
	begin := normalizeIndex(int(start), n)

	end := n
	if len(operands) == 3 {
		length, lengthErr := asIndex(operands[2])
		if lengthErr != nil {
			return value.Value{}, runtimeErr("substr", "length must be numeric")
		}
		if length < 0 {
			end = normalizeIndex(int(length), n)
		} else {
			end = begin + int(length)
		}
	}

	begin = clampIndex(begin, n)
	end = clampIndex(end, n)
	if end < begin {
		end = begin
	}
	return value.String(string(runes[begin:end])), nil
}

// asIndex coerces a Value to an int64 regardless of which numeric kind it
// holds, truncating floats/decimals toward zero.
func asIndex(v value.Value) (int64, error) {
	numeric, err := v.ToNumber()
	if err != nil {
		return 0, err
	}
	if i, ok := numeric.AsInt(); ok {
		return i, nil
	}
	if f, ok := numeric.AsFloat(); ok {
		return int64(f), nil
	}
	if d, ok := numeric.AsDecimal(); ok {
		f, _ := d.Float64()
		return int64(f), nil
	}
	return 0, value.ErrNotNumeric{Kind: numeric.Kind()}
}

// normalizeIndex turns a possibly-negative index (counted from the end of
// a length-n sequence) into a non-negative offset, without clamping.
func normalizeIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
