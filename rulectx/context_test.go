package rulectx

import (
	"testing"

	"rulecore/value"
)

func buildInput(t *testing.T, fields map[string]value.Value) value.Value {
	t.Helper()
	obj := value.NewObject()
	for k, v := range fields {
		obj.Set(k, v)
	}
	return value.ObjectValue(obj)
}

func TestGetSearchesComputedBeforeInput(t *testing.T) {
	ctx := New(buildInput(t, map[string]value.Value{"a": value.Int(1)}))
	if err := ctx.Write("r1", map[string]value.Value{"a": value.Int(2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := ctx.Get("a")
	if !ok || got.Kind() != value.KindInt {
		t.Fatalf("expected computed override, got %v %v", got, ok)
	}
	i, _ := got.AsInt()
	if i != 2 {
		t.Errorf("expected 2, got %d", i)
	}
}

func TestGetMissingPathReturnsFalse(t *testing.T) {
	ctx := New(buildInput(t, nil))
	_, ok := ctx.Get("nonexistent")
	if ok {
		t.Error("expected false for missing path")
	}
}

func TestGetNestedPath(t *testing.T) {
	nested := value.NewObject()
	nested.Set("b", value.Int(42))
	ctx := New(buildInput(t, map[string]value.Value{"a": value.ObjectValue(nested)}))
	got, ok := ctx.Get("a.b")
	if !ok {
		t.Fatal("expected a.b to resolve")
	}
	i, _ := got.AsInt()
	if i != 42 {
		t.Errorf("expected 42, got %d", i)
	}
}

func TestWriteDuplicateByDifferentRuleFails(t *testing.T) {
	ctx := New(buildInput(t, nil))
	if err := ctx.Write("r1", map[string]value.Value{"x": value.Int(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ctx.Write("r2", map[string]value.Value{"x": value.Int(1)})
	if err == nil {
		t.Fatal("expected DuplicateOutputError")
	}
	if _, ok := err.(*DuplicateOutputError); !ok {
		t.Fatalf("expected *DuplicateOutputError, got %T", err)
	}
}

func TestWriteIdempotentSameRuleSameValueIsNoOp(t *testing.T) {
	ctx := New(buildInput(t, nil))
	if err := ctx.Write("r1", map[string]value.Value{"x": value.Int(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctx.Write("r1", map[string]value.Value{"x": value.Int(1)}); err != nil {
		t.Fatalf("expected idempotent re-write to succeed, got %v", err)
	}
}

func TestWriteSameRuleDifferentValueFails(t *testing.T) {
	ctx := New(buildInput(t, nil))
	if err := ctx.Write("r1", map[string]value.Value{"x": value.Int(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctx.Write("r1", map[string]value.Value{"x": value.Int(2)}); err == nil {
		t.Fatal("expected DuplicateOutputError for changed value")
	}
}

func TestEmptyPathReturnsWholeContext(t *testing.T) {
	ctx := New(buildInput(t, map[string]value.Value{"a": value.Int(1)}))
	_ = ctx.Write("r1", map[string]value.Value{"b": value.Int(2)})
	whole, ok := ctx.Get("")
	if !ok {
		t.Fatal("expected whole context to resolve")
	}
	obj, isObj := whole.AsObject()
	if !isObj {
		t.Fatal("expected whole context to be an object")
	}
	if _, ok := obj.Get("a"); !ok {
		t.Error("expected input field 'a' present in whole context")
	}
	if _, ok := obj.Get("b"); !ok {
		t.Error("expected computed field 'b' present in whole context")
	}
}
