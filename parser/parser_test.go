package parser

import (
	"testing"

	"rulecore/ast"
)

func TestParseLiteralsAndVar(t *testing.T) {
	expr, err := Parse(map[string]any{"var": "a.b.c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpVar || expr.Path != "a.b.c" || expr.Default != nil {
		t.Fatalf("unexpected parse of var: %+v", expr)
	}

	expr, err = Parse(map[string]any{"var": []any{"a.b", float64(5)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpVar || expr.Default == nil || expr.Default.Op != ast.OpLiteral {
		t.Fatalf("unexpected parse of var with default: %+v", expr)
	}
}

func TestParseArithmeticFoldsExtraOperands(t *testing.T) {
	expr, err := Parse(map[string]any{"-": []any{float64(1), float64(2), float64(3), float64(4)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpSub || len(expr.Args) != 4 {
		t.Fatalf("expected all 4 operands retained, got %+v", expr)
	}
}

func TestParseUnknownOperator(t *testing.T) {
	_, err := Parse(map[string]any{"frobnicate": []any{float64(1)}})
	if err == nil {
		t.Fatal("expected error for unknown operator")
	}
	if _, ok := err.(ParseError); !ok {
		t.Fatalf("expected ParseError, got %T", err)
	}
}

func TestParseArityViolation(t *testing.T) {
	_, err := Parse(map[string]any{"missing_some": []any{float64(1)}})
	if err == nil {
		t.Fatal("expected arity error for missing_some with one argument")
	}
}

func TestParseIfRequiresOddArity(t *testing.T) {
	_, err := Parse(map[string]any{"if": []any{true, float64(1), float64(2), float64(3)}})
	if err == nil {
		t.Fatal("expected arity error for if with even argument count")
	}

	expr, err := Parse(map[string]any{"if": []any{true, float64(1), false, float64(2), float64(3)}})
	if err != nil {
		t.Fatalf("unexpected error for valid odd-arity if: %v", err)
	}
	if expr.Op != ast.OpIf || len(expr.Args) != 5 {
		t.Fatalf("unexpected if parse: %+v", expr)
	}
}

func TestParseNestedArrayLiteralKeepsVarDynamic(t *testing.T) {
	expr, err := Parse(map[string]any{
		"merge": []any{
			[]any{float64(1), map[string]any{"var": "x"}},
			[]any{float64(3), float64(4)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.Op != ast.OpMerge || len(expr.Args) != 2 {
		t.Fatalf("unexpected merge parse: %+v", expr)
	}
	first := expr.Args[0]
	if first.Op != ast.OpArrayLiteral || len(first.Args) != 2 {
		t.Fatalf("expected first merge arg to be an array literal, got %+v", first)
	}
	if first.Args[1].Op != ast.OpVar {
		t.Fatalf("expected nested var reference to survive as OpVar, got %+v", first.Args[1])
	}
}

func TestRoundTrip(t *testing.T) {
	original, err := Parse(map[string]any{
		"if": []any{
			map[string]any{"<": []any{map[string]any{"var": "a"}, map[string]any{"var": "b"}}},
			map[string]any{"*": []any{map[string]any{"var": "a"}, float64(2)}},
			map[string]any{"*": []any{map[string]any{"var": "b"}, float64(2)}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	serialized, err := Serialize(original)
	if err != nil {
		t.Fatalf("unexpected serialize error: %v", err)
	}

	reparsed, err := Parse(serialized)
	if err != nil {
		t.Fatalf("unexpected reparse error: %v", err)
	}

	if !expressionsEqual(original, reparsed) {
		t.Fatalf("round trip mismatch:\noriginal: %+v\nreparsed: %+v", original, reparsed)
	}
}

func expressionsEqual(a, b ast.Expression) bool {
	if a.Op != b.Op || a.Path != b.Path {
		return false
	}
	if a.Op == ast.OpLiteral && !a.Literal.StrictEquals(b.Literal) {
		return false
	}
	if (a.Default == nil) != (b.Default == nil) {
		return false
	}
	if a.Default != nil && !expressionsEqual(*a.Default, *b.Default) {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !expressionsEqual(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}
