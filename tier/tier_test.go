package tier_test

import (
	"testing"

	"rulecore/parser"
	"rulecore/rulectx"
	"rulecore/tier"
	"rulecore/value"
)

func ctxWith(t *testing.T, fields map[string]any) rulectx.Reader {
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

func TestEagerCompileOnFirstHitForLargeExpression(t *testing.T) {
	// Node count: +(1), var a(2), *(3), var b(4), var c(5) — 5 nodes,
	// meeting the default eager threshold of 5.
	expr, err := parser.Parse(map[string]any{
		"+": []any{
			map[string]any{"var": "a"},
			map[string]any{"*": []any{map[string]any{"var": "b"}, map[string]any{"var": "c"}}},
		},
	})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cache := tier.NewCache()
	entry := cache.GetOrInsert("R1", expr)
	if entry.Bytecode() != nil {
		t.Fatal("expected no bytecode before first evaluation")
	}

	ctx := ctxWith(t, map[string]any{"a": float64(1), "b": float64(2), "c": float64(3)})
	got, err := tier.Evaluate(entry, ctx, tier.DefaultConfig(), tier.DefaultEvalOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, _ := got.AsInt()
	if i != 7 {
		t.Errorf("expected 7, got %v", got)
	}
	if entry.Bytecode() == nil {
		t.Fatal("expected bytecode to be compiled eagerly on the first hit")
	}
}

func TestLazyPromotionAfterThreshold(t *testing.T) {
	expr, err := parser.Parse(map[string]any{"+": []any{map[string]any{"var": "x"}, float64(1)}})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cache := tier.NewCache()
	entry := cache.GetOrInsert("R2", expr)
	cfg := tier.Config{EagerCompileNodeCount: 1000, PromotionHitCount: 3}
	ctx := ctxWith(t, map[string]any{"x": float64(5)})

	for i := 0; i < 2; i++ {
		if _, err := tier.Evaluate(entry, ctx, cfg, tier.DefaultEvalOptions()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Bytecode() != nil {
			t.Fatalf("expected no bytecode before the promotion threshold (hit %d)", i+1)
		}
	}
	if _, err := tier.Evaluate(entry, ctx, cfg, tier.DefaultEvalOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Bytecode() == nil {
		t.Fatal("expected bytecode after crossing the promotion threshold")
	}

	got, err := tier.Evaluate(entry, ctx, cfg, tier.DefaultEvalOptions())
	if err != nil {
		t.Fatalf("unexpected error after promotion: %v", err)
	}
	i, _ := got.AsInt()
	if i != 6 {
		t.Errorf("expected 6 via the VM path, got %v", got)
	}
}

func TestNonCompilableExpressionNeverPromotes(t *testing.T) {
	expr, err := parser.Parse(map[string]any{"missing": []any{"a"}})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cache := tier.NewCache()
	entry := cache.GetOrInsert("R3", expr)
	cfg := tier.Config{EagerCompileNodeCount: 1, PromotionHitCount: 1}
	ctx := ctxWith(t, nil)

	for i := 0; i < 5; i++ {
		if _, err := tier.Evaluate(entry, ctx, cfg, tier.DefaultEvalOptions()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if entry.Bytecode() != nil {
		t.Fatal("expected a non-compilable expression to never publish bytecode")
	}
}

func TestGetOrInsertIsIdempotent(t *testing.T) {
	expr, err := parser.Parse(float64(1))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cache := tier.NewCache()
	first := cache.GetOrInsert("R4", expr)
	second := cache.GetOrInsert("R4", expr)
	if first != second {
		t.Fatal("expected the same *CachedExpression instance on repeated GetOrInsert")
	}
}
