package vm_test

import (
	"testing"

	"rulecore/compiler"
	"rulecore/interpreter"
	"rulecore/parser"
	"rulecore/rulectx"
	"rulecore/value"
	"rulecore/vm"
)

func ctxFrom(t *testing.T, fields map[string]any) rulectx.Reader {
	t.Helper()
	obj := value.NewObject()
	for k, v := range fields {
		parsed, err := value.FromJSON(v)
		if err != nil {
			t.Fatalf("FromJSON(%v): %v", v, err)
		}
		obj.Set(k, parsed)
	}
	return rulectx.New(value.ObjectValue(obj))
}

// runBoth compiles and runs expr through both the VM and the reference
// interpreter, asserting they agree — the bytecode/AST parity property
// required of every compilable expression.
func runBoth(t *testing.T, raw any, fields map[string]any) value.Value {
	t.Helper()
	expr, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	code, ok := compiler.Compile(expr)
	if !ok {
		t.Fatalf("expected %v to be compilable", raw)
	}
	ctx := ctxFrom(t, fields)
	vmResult, err := vm.Run(code, ctx, vm.DefaultStackLimit)
	if err != nil {
		t.Fatalf("vm.Run error: %v", err)
	}
	astResult, err := interpreter.Eval(expr, ctx, interpreter.DefaultEvalOptions())
	if err != nil {
		t.Fatalf("interpreter.Eval error: %v", err)
	}
	if !vmResult.StrictEquals(astResult) {
		t.Fatalf("vm/ast mismatch: vm=%v ast=%v", vmResult, astResult)
	}
	return vmResult
}

func TestArithmeticParity(t *testing.T) {
	got := runBoth(t, map[string]any{"*": []any{map[string]any{"var": "rate"}, map[string]any{"var": "coverage"}}},
		map[string]any{"rate": float64(0.05), "coverage": float64(100000)})
	f, _ := got.AsFloat()
	if f != 5000 {
		t.Errorf("expected 5000, got %v", f)
	}
}

func TestChainCompareTrueParity(t *testing.T) {
	got := runBoth(t, map[string]any{"<": []any{float64(1), float64(2), float64(3)}}, nil)
	b, _ := got.AsBool()
	if !b {
		t.Error("expected true")
	}
}

func TestChainCompareFalseParity(t *testing.T) {
	got := runBoth(t, map[string]any{"<": []any{float64(1), float64(3), float64(2)}}, nil)
	b, _ := got.AsBool()
	if b {
		t.Error("expected false, since 3 < 2 fails")
	}
}

func TestChainCompareFourOperandsParity(t *testing.T) {
	trueCase := runBoth(t, map[string]any{"<=": []any{float64(1), float64(2), float64(2), float64(5)}}, nil)
	if b, _ := trueCase.AsBool(); !b {
		t.Error("expected true for 1<=2<=2<=5")
	}
	falseCase := runBoth(t, map[string]any{"<": []any{float64(1), float64(2), float64(2), float64(5)}}, nil)
	if b, _ := falseCase.AsBool(); b {
		t.Error("expected false for 1<2<2<5 since 2<2 fails")
	}
}

func TestIfParity(t *testing.T) {
	expr := map[string]any{
		"if": []any{
			map[string]any{">": []any{map[string]any{"var": "age"}, float64(60)}},
			float64(1.5),
			float64(1.0),
		},
	}
	got := runBoth(t, expr, map[string]any{"age": float64(65)})
	f, _ := got.AsFloat()
	if f != 1.5 {
		t.Errorf("expected 1.5, got %v", f)
	}
	got = runBoth(t, expr, map[string]any{"age": float64(30)})
	i, _ := got.AsInt()
	if i != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestAndOrParity(t *testing.T) {
	got := runBoth(t, map[string]any{"and": []any{true, float64(0), true}}, nil)
	i, _ := got.AsInt()
	if i != 0 {
		t.Errorf("expected the deciding falsy operand 0, got %v", got)
	}

	got = runBoth(t, map[string]any{"or": []any{false, float64(0), "first-truthy"}}, nil)
	s, _ := got.AsString()
	if s != "first-truthy" {
		t.Errorf("expected the deciding truthy operand, got %v", got)
	}
}

func TestCatSubstrMinMaxParity(t *testing.T) {
	got := runBoth(t, map[string]any{"cat": []any{"a", "b", float64(3)}}, nil)
	s, _ := got.AsString()
	if s != "ab3" {
		t.Errorf("expected 'ab3', got %q", s)
	}

	got = runBoth(t, map[string]any{"substr": []any{"hello", float64(-3)}}, nil)
	s, _ = got.AsString()
	if s != "llo" {
		t.Errorf("expected 'llo', got %q", s)
	}

	got = runBoth(t, map[string]any{"min": []any{float64(3), float64(1), float64(2)}}, nil)
	i, _ := got.AsInt()
	if i != 1 {
		t.Errorf("expected 1, got %v", got)
	}

	got = runBoth(t, map[string]any{"max": []any{float64(3), float64(1), float64(2)}}, nil)
	i, _ = got.AsInt()
	if i != 3 {
		t.Errorf("expected 3, got %v", got)
	}
}

func TestNotAndNotNotParity(t *testing.T) {
	got := runBoth(t, map[string]any{"!": []any{float64(0)}}, nil)
	if b, _ := got.AsBool(); !b {
		t.Error("expected !0 to be true")
	}
	got = runBoth(t, map[string]any{"!!": []any{float64(5)}}, nil)
	if b, _ := got.AsBool(); !b {
		t.Error("expected !!5 to be true")
	}
}

func TestStackOverflow(t *testing.T) {
	expr, err := parser.Parse(map[string]any{"cat": []any{"a", "b", "c", "d", "e"}})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	code, ok := compiler.Compile(expr)
	if !ok {
		t.Fatal("expected compilable")
	}
	ctx := ctxFrom(t, nil)
	_, err = vm.Run(code, ctx, 2)
	if err == nil {
		t.Fatal("expected stack overflow error")
	}
	if _, ok := err.(*vm.ErrStackOverflow); !ok {
		t.Fatalf("expected *vm.ErrStackOverflow, got %T", err)
	}
}

func TestNonCompilableExpressionRejected(t *testing.T) {
	expr, err := parser.Parse(map[string]any{"map": []any{map[string]any{"var": "items"}, map[string]any{"var": ""}}})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := compiler.Compile(expr); ok {
		t.Fatal("expected map expression to be rejected as non-compilable")
	}
}
