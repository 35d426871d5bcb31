package compiler_test

import (
	"testing"

	"rulecore/compiler"
	"rulecore/parser"
)

func TestCompileRejectsNonCompilableOp(t *testing.T) {
	expr, err := parser.Parse(map[string]any{"missing": []any{"a"}})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := compiler.Compile(expr); ok {
		t.Fatal("expected missing() to be rejected")
	}
}

func TestCompileRejectsVarWithDefaultAnywhereInTree(t *testing.T) {
	expr, err := parser.Parse(map[string]any{
		"+": []any{float64(1), map[string]any{"var": []any{"x", float64(0)}}},
	})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := compiler.Compile(expr); ok {
		t.Fatal("expected a Var with a default, nested inside +, to force the AST path")
	}
}

func TestCompileChainCompareEmitsBackpatchedJumps(t *testing.T) {
	expr, err := parser.Parse(map[string]any{"<": []any{float64(1), float64(2), float64(3), float64(4)}})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	code, ok := compiler.Compile(expr)
	if !ok {
		t.Fatal("expected compilable")
	}
	for i, instr := range code.Instructions {
		if instr.Op == compiler.OpJump || instr.Op == compiler.OpJumpIfFalse || instr.Op == compiler.OpJumpIfTrue {
			if instr.Operand < 0 || instr.Operand > len(code.Instructions) {
				t.Errorf("instruction %d: jump target %d out of range [0,%d]", i, instr.Operand, len(code.Instructions))
			}
		}
	}
}

func TestCompileSimpleLiteral(t *testing.T) {
	expr, err := parser.Parse(float64(42))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	code, ok := compiler.Compile(expr)
	if !ok {
		t.Fatal("expected compilable")
	}
	if len(code.Instructions) != 1 || code.Instructions[0].Op != compiler.OpLoadConst {
		t.Fatalf("expected a single LoadConst instruction, got %+v", code.Instructions)
	}
}
