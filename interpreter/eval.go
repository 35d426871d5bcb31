// Package interpreter is the tree-walking evaluator over ast.Expression:
// the reference semantics every bytecode path (package compiler/vm) must
// agree with. Eval switches exhaustively over the closed ast.Op enum and
// returns errors explicitly throughout — panics never cross an Eval call.
package interpreter

import (
	"log/slog"
	"strings"

	"rulecore/ast"
	"rulecore/rulectx"
	"rulecore/value"
)

// Eval evaluates expr against ctx, the reference semantics for every
// operator in ast.Op. Every failure, including one from an operator
// helper, surfaces as a returned error.
func Eval(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	switch expr.Op {
	case ast.OpLiteral:
		return expr.Literal, nil

	case ast.OpVar:
		return evalVar(expr, ctx, opts)

	case ast.OpArrayLiteral:
		return evalArrayLiteral(expr, ctx, opts)

	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return evalArithmetic(expr, ctx, opts)

	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return evalChainCompare(expr, ctx, opts)

	case ast.OpEq, ast.OpNeq, ast.OpStrictEq, ast.OpStrictNeq:
		return evalEquality(expr, ctx, opts)

	case ast.OpAnd:
		return evalAnd(expr, ctx, opts)
	case ast.OpOr:
		return evalOr(expr, ctx, opts)
	case ast.OpNot:
		return evalNot(expr, ctx, opts, false)
	case ast.OpNotNot:
		return evalNot(expr, ctx, opts, true)

	case ast.OpIf:
		return evalIf(expr, ctx, opts)

	case ast.OpMap:
		return evalMap(expr, ctx, opts)
	case ast.OpFilter:
		return evalFilter(expr, ctx, opts)
	case ast.OpReduce:
		return evalReduce(expr, ctx, opts)
	case ast.OpAll, ast.OpSome, ast.OpNone:
		return evalQuantifier(expr, ctx, opts)
	case ast.OpMerge:
		return evalMerge(expr, ctx, opts)
	case ast.OpIn:
		return evalIn(expr, ctx, opts)

	case ast.OpCat:
		return evalCat(expr, ctx, opts)
	case ast.OpSubstr:
		return evalSubstr(expr, ctx, opts)

	case ast.OpMissing:
		return evalMissing(expr, ctx, opts)
	case ast.OpMissingSome:
		return evalMissingSome(expr, ctx, opts)
	case ast.OpLog:
		return evalLog(expr, ctx, opts)

	case ast.OpMin:
		return evalExtremum(expr, ctx, opts, value.Min)
	case ast.OpMax:
		return evalExtremum(expr, ctx, opts, value.Max)

	default:
		return value.Value{}, runtimeErr(expr.Op.String(), "unhandled operator")
	}
}

func evalArgs(args []ast.Expression, ctx rulectx.Reader, opts EvalOptions) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := Eval(a, ctx, opts)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalVar(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	if v, ok := ctx.Get(expr.Path); ok {
		return v, nil
	}
	if expr.Default != nil {
		return Eval(*expr.Default, ctx, opts)
	}
	return value.Null, nil
}

func evalArrayLiteral(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	items, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	return value.Array(items), nil
}

func evalArithmetic(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	operands, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}

	var fn func(a, b value.Value) (value.Value, error)
	switch expr.Op {
	case ast.OpAdd:
		fn = value.Add
	case ast.OpSub:
		fn = value.Sub
	case ast.OpMul:
		fn = value.Mul
	case ast.OpDiv:
		fn = value.Div
	case ast.OpMod:
		fn = value.Mod
	}

	acc := operands[0]
	for _, next := range operands[1:] {
		acc, err = fn(acc, next)
		if err != nil {
			return value.Value{}, err
		}
	}
	return acc, nil
}

// evalChainCompare implements left-to-right adjacent-pair conjunction:
// a < b < c is (a<b) && (b<c), never ((a<b) as 0/1) < c. Each operand is
// evaluated exactly once.
func evalChainCompare(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	operands, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}

	accepts := func(cmp int) bool {
		switch expr.Op {
		case ast.OpLt:
			return cmp < 0
		case ast.OpLte:
			return cmp <= 0
		case ast.OpGt:
			return cmp > 0
		default: // ast.OpGte
			return cmp >= 0
		}
	}

	for i := 0; i+1 < len(operands); i++ {
		cmp, ok := value.Compare(operands[i], operands[i+1])
		if !ok {
			return value.Value{}, value.ErrTypeMismatch{Op: expr.Op.String(), Left: operands[i].Kind(), Right: operands[i+1].Kind()}
		}
		if !accepts(cmp) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func evalEquality(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	operands, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	a, b := operands[0], operands[1]
	switch expr.Op {
	case ast.OpEq:
		return value.Bool(a.LooseEquals(b)), nil
	case ast.OpNeq:
		return value.Bool(!a.LooseEquals(b)), nil
	case ast.OpStrictEq:
		return value.Bool(a.StrictEquals(b)), nil
	default: // ast.OpStrictNeq
		return value.Bool(!a.StrictEquals(b)), nil
	}
}

// evalAnd and evalOr are value-returning, not boolean-returning: they
// yield the deciding operand itself, matching jsonlogic semantics that
// and/or double as null-coalescing helpers.
func evalAnd(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	var last value.Value = value.Bool(true)
	for _, arg := range expr.Args {
		v, err := Eval(arg, ctx, opts)
		if err != nil {
			return value.Value{}, err
		}
		last = v
		if !v.Truthy() {
			return v, nil
		}
	}
	return last, nil
}

func evalOr(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	var last value.Value = value.Bool(false)
	for _, arg := range expr.Args {
		v, err := Eval(arg, ctx, opts)
		if err != nil {
			return value.Value{}, err
		}
		last = v
		if v.Truthy() {
			return v, nil
		}
	}
	return last, nil
}

func evalNot(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions, double bool) (value.Value, error) {
	v, err := Eval(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	if double {
		return value.Bool(v.Truthy()), nil
	}
	return value.Bool(!v.Truthy()), nil
}

// evalIf walks cond,then pairs left-to-right, returning the first branch
// whose condition is truthy. A trailing unpaired argument is the else; a
// missing else yields Null.
func evalIf(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	args := expr.Args
	i := 0
	for i+1 < len(args) {
		cond, err := Eval(args[i], ctx, opts)
		if err != nil {
			return value.Value{}, err
		}
		if cond.Truthy() {
			return Eval(args[i+1], ctx, opts)
		}
		i += 2
	}
	if i < len(args) {
		return Eval(args[i], ctx, opts)
	}
	return value.Null, nil
}

func evalLog(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	v, err := Eval(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	slog.Debug("rule expression log", "value", v.String())
	return v, nil
}

func evalExtremum(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions, fn func([]value.Value) (value.Value, error)) (value.Value, error) {
	operands, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	return fn(operands)
}

func evalCat(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	operands, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	var b strings.Builder
	for _, v := range operands {
		b.WriteString(v.String())
	}
	return value.String(b.String()), nil
}
