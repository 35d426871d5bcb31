// Package vm executes compiler.Bytecode against a rulectx.Reader. It is
// the fast path for any expression ast.IsFullyCompilable accepts, purpose
// built for the rule-evaluation operator set rather than a general-purpose
// scripting language: every opcode here mirrors one case in package
// interpreter's Eval, and the two must agree on every input (the
// bytecode/AST parity requirement).
package vm

import (
	"fmt"
	"strings"

	"rulecore/compiler"
	"rulecore/rulectx"
	"rulecore/value"
)

// DefaultStackLimit bounds the operand stack absent an explicit override.
const DefaultStackLimit = 10_000

// Run executes code against ctx and returns its single result value. A
// stack depth beyond limit fails with *ErrStackOverflow; limit <= 0 means
// unlimited, matching vm.NewStack.
func Run(code *compiler.Bytecode, ctx rulectx.Reader, limit int) (value.Value, error) {
	s := NewStack(limit)
	ip := 0
	for ip < len(code.Instructions) {
		instr := code.Instructions[ip]
		switch instr.Op {
		case compiler.OpLoadConst:
			if instr.Operand < 0 || instr.Operand >= len(code.Constants) {
				return value.Value{}, &ErrMalformedBytecode{Message: "constant index out of range"}
			}
			if err := s.Push(code.Constants[instr.Operand]); err != nil {
				return value.Value{}, err
			}

		case compiler.OpLoadVar:
			if instr.Operand < 0 || instr.Operand >= len(code.Paths) {
				return value.Value{}, &ErrMalformedBytecode{Message: "path index out of range"}
			}
			v, ok := ctx.Get(code.Paths[instr.Operand])
			if !ok {
				v = value.Null
			}
			if err := s.Push(v); err != nil {
				return value.Value{}, err
			}

		case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpMod:
			b, a, err := pop2(s)
			if err != nil {
				return value.Value{}, err
			}
			result, err := arithmeticFn(instr.Op)(a, b)
			if err != nil {
				return value.Value{}, err
			}
			if err := s.Push(result); err != nil {
				return value.Value{}, err
			}

		case compiler.OpLt, compiler.OpLte, compiler.OpGt, compiler.OpGte:
			b, a, err := pop2(s)
			if err != nil {
				return value.Value{}, err
			}
			cmp, ok := value.Compare(a, b)
			if !ok {
				return value.Value{}, value.ErrTypeMismatch{Op: opName(instr.Op), Left: a.Kind(), Right: b.Kind()}
			}
			if err := s.Push(value.Bool(acceptsCompare(instr.Op, cmp))); err != nil {
				return value.Value{}, err
			}

		case compiler.OpEq, compiler.OpNeq, compiler.OpSeq, compiler.OpSneq:
			b, a, err := pop2(s)
			if err != nil {
				return value.Value{}, err
			}
			if err := s.Push(equalityResult(instr.Op, a, b)); err != nil {
				return value.Value{}, err
			}

		case compiler.OpNot:
			a, ok := s.Pop()
			if !ok {
				return value.Value{}, &ErrMalformedBytecode{Message: "not: empty stack"}
			}
			if err := s.Push(value.Bool(!a.Truthy())); err != nil {
				return value.Value{}, err
			}

		case compiler.OpJump:
			ip = instr.Operand
			continue

		case compiler.OpJumpIfFalse:
			cond, ok := s.Pop()
			if !ok {
				return value.Value{}, &ErrMalformedBytecode{Message: "jump-if-false: empty stack"}
			}
			if !cond.Truthy() {
				ip = instr.Operand
				continue
			}

		case compiler.OpJumpIfTrue:
			cond, ok := s.Pop()
			if !ok {
				return value.Value{}, &ErrMalformedBytecode{Message: "jump-if-true: empty stack"}
			}
			if cond.Truthy() {
				ip = instr.Operand
				continue
			}

		case compiler.OpTuck:
			b, ok := s.Pop()
			if !ok {
				return value.Value{}, &ErrMalformedBytecode{Message: "tuck: empty stack"}
			}
			a, ok := s.Pop()
			if !ok {
				return value.Value{}, &ErrMalformedBytecode{Message: "tuck: empty stack"}
			}
			if err := push3(s, b, a, b); err != nil {
				return value.Value{}, err
			}

		case compiler.OpDup:
			top, ok := s.Peek()
			if !ok {
				return value.Value{}, &ErrMalformedBytecode{Message: "dup: empty stack"}
			}
			if err := s.Push(top); err != nil {
				return value.Value{}, err
			}

		case compiler.OpPop:
			if _, ok := s.Pop(); !ok {
				return value.Value{}, &ErrMalformedBytecode{Message: "pop: empty stack"}
			}

		case compiler.OpCat:
			operands, err := popN(s, instr.Operand)
			if err != nil {
				return value.Value{}, err
			}
			var b strings.Builder
			for _, v := range operands {
				b.WriteString(v.String())
			}
			if err := s.Push(value.String(b.String())); err != nil {
				return value.Value{}, err
			}

		case compiler.OpSubstr:
			operands, err := popN(s, instr.Operand)
			if err != nil {
				return value.Value{}, err
			}
			result, err := runSubstr(operands)
			if err != nil {
				return value.Value{}, err
			}
			if err := s.Push(result); err != nil {
				return value.Value{}, err
			}

		case compiler.OpMin:
			operands, err := popN(s, instr.Operand)
			if err != nil {
				return value.Value{}, err
			}
			result, err := value.Min(operands)
			if err != nil {
				return value.Value{}, err
			}
			if err := s.Push(result); err != nil {
				return value.Value{}, err
			}

		case compiler.OpMax:
			operands, err := popN(s, instr.Operand)
			if err != nil {
				return value.Value{}, err
			}
			result, err := value.Max(operands)
			if err != nil {
				return value.Value{}, err
			}
			if err := s.Push(result); err != nil {
				return value.Value{}, err
			}

		default:
			return value.Value{}, &ErrMalformedBytecode{Message: "unknown opcode"}
		}
		ip++
	}

	result, ok := s.Pop()
	if !ok {
		return value.Value{}, &ErrMalformedBytecode{Message: "program produced no result"}
	}
	return result, nil
}

func pop2(s *Stack) (b, a value.Value, err error) {
	b, ok := s.Pop()
	if !ok {
		return value.Value{}, value.Value{}, &ErrMalformedBytecode{Message: "binary op: empty stack"}
	}
	a, ok = s.Pop()
	if !ok {
		return value.Value{}, value.Value{}, &ErrMalformedBytecode{Message: "binary op: empty stack"}
	}
	return b, a, nil
}

func push3(s *Stack, v1, v2, v3 value.Value) error {
	if err := s.Push(v1); err != nil {
		return err
	}
	if err := s.Push(v2); err != nil {
		return err
	}
	return s.Push(v3)
}

// popN pops n values and returns them in original push order (oldest
// first), for opcodes whose operand count is variable.
func popN(s *Stack, n int) ([]value.Value, error) {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, ok := s.Pop()
		if !ok {
			return nil, &ErrMalformedBytecode{Message: "variadic op: empty stack"}
		}
		out[i] = v
	}
	return out, nil
}

func arithmeticFn(op compiler.Opcode) func(a, b value.Value) (value.Value, error) {
	switch op {
	case compiler.OpAdd:
		return value.Add
	case compiler.OpSub:
		return value.Sub
	case compiler.OpMul:
		return value.Mul
	case compiler.OpDiv:
		return value.Div
	default: // compiler.OpMod
		return value.Mod
	}
}

func acceptsCompare(op compiler.Opcode, cmp int) bool {
	switch op {
	case compiler.OpLt:
		return cmp < 0
	case compiler.OpLte:
		return cmp <= 0
	case compiler.OpGt:
		return cmp > 0
	default: // compiler.OpGte
		return cmp >= 0
	}
}

func equalityResult(op compiler.Opcode, a, b value.Value) value.Value {
	switch op {
	case compiler.OpEq:
		return value.Bool(a.LooseEquals(b))
	case compiler.OpNeq:
		return value.Bool(!a.LooseEquals(b))
	case compiler.OpSeq:
		return value.Bool(a.StrictEquals(b))
	default: // compiler.OpSneq
		return value.Bool(!a.StrictEquals(b))
	}
}

func opName(op compiler.Opcode) string {
	switch op {
	case compiler.OpLt:
		return "<"
	case compiler.OpLte:
		return "<="
	case compiler.OpGt:
		return ">"
	case compiler.OpGte:
		return ">="
	default:
		return "compare"
	}
}

// runSubstr mirrors interpreter.evalSubstr's jsonlogic substr semantics
// exactly: a negative start counts back from the end of the string, an
// omitted length takes the remainder, and a negative length trims that
// many characters off the end instead of counting forward.
func runSubstr(operands []value.Value) (value.Value, error) {
	s := operands[0].String()
	runes := []rune(s)
	n := len(runes)

	start, err := asIndex(operands[1])
	if err != nil {
		return value.Value{}, fmt.Errorf("substr: start must be numeric: %w", err)
	}
	begin := normalizeIndex(int(start), n)

	end := n
	if len(operands) == 3 {
		length, err := asIndex(operands[2])
		if err != nil {
			return value.Value{}, fmt.Errorf("substr: length must be numeric: %w", err)
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
