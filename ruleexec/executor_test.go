package ruleexec_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rulecore/rule"
	"rulecore/ruleexec"
	"rulecore/value"
)

func mkRule(id string, inputs, outputs []string, logic any, order int) rule.Rule {
	return rule.Rule{ID: id, Inputs: inputs, Outputs: outputs, Logic: logic, Enabled: true, Order: order}
}

func TestEvaluateInsuranceChain(t *testing.T) {
	rules := []rule.Rule{
		mkRule("base_premium_rule", []string{"rate", "coverage"}, []string{"base_premium"},
			map[string]any{"*": []any{map[string]any{"var": "rate"}, map[string]any{"var": "coverage"}}}, 0),
		mkRule("age_factor_rule", []string{"age"}, []string{"age_factor"},
			map[string]any{"if": []any{
				map[string]any{">": []any{map[string]any{"var": "age"}, float64(60)}},
				float64(2),
				float64(1),
			}}, 1),
		mkRule("final_premium_rule", []string{"base_premium", "age_factor"}, []string{"final_premium"},
			map[string]any{"*": []any{map[string]any{"var": "base_premium"}, map[string]any{"var": "age_factor"}}}, 2),
	}

	input := map[string]value.Value{
		"rate":     value.Float(10),
		"coverage": value.Float(100),
		"age":      value.Float(65),
	}

	exec := ruleexec.NewExecutor()
	result, err := exec.Evaluate(context.Background(), rules, input, ruleexec.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, result.Levels, 2)
	assert.Len(t, result.Timings, 3)

	final, ok := result.Context.Get("final_premium")
	require.True(t, ok, "expected final_premium to be computed")
	f, _ := final.AsFloat()
	assert.Equal(t, 2000.0, f)
}

func TestEvaluateAggregatesLevelFailures(t *testing.T) {
	rules := []rule.Rule{
		mkRule("ok_rule", []string{"a"}, []string{"ok_out"},
			map[string]any{"+": []any{map[string]any{"var": "a"}, float64(1)}}, 0),
		mkRule("div_zero_rule_1", []string{"a"}, []string{"bad_out_1"},
			map[string]any{"/": []any{map[string]any{"var": "a"}, float64(0)}}, 1),
		mkRule("div_zero_rule_2", []string{"a"}, []string{"bad_out_2"},
			map[string]any{"/": []any{float64(1), float64(0)}}, 2),
	}

	input := map[string]value.Value{"a": value.Float(1)}

	exec := ruleexec.NewExecutor()
	_, err := exec.Evaluate(context.Background(), rules, input, ruleexec.DefaultOptions())
	require.Error(t, err)

	var agg *ruleexec.ErrMultipleRuleFailures
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Failures, 2)

	seen := map[string]bool{}
	for _, f := range agg.Failures {
		seen[f.RuleID] = true
	}
	assert.True(t, seen["div_zero_rule_1"])
	assert.True(t, seen["div_zero_rule_2"])
}

func TestEvaluateReportsUnsatisfiedInputs(t *testing.T) {
	rules := []rule.Rule{
		mkRule("r1", []string{"x", "y"}, []string{"z"},
			map[string]any{"+": []any{map[string]any{"var": "x"}, map[string]any{"var": "y"}}}, 0),
	}

	exec := ruleexec.NewExecutor()
	_, err := exec.Evaluate(context.Background(), rules, map[string]value.Value{"x": value.Float(1)}, ruleexec.DefaultOptions())
	require.Error(t, err)

	var unsatisfied *ruleexec.ErrUnsatisfiedInputs
	require.ErrorAs(t, err, &unsatisfied)
	assert.Equal(t, []string{"y"}, unsatisfied.Paths)
}

func TestEvaluateHonorsTimeout(t *testing.T) {
	rules := []rule.Rule{
		mkRule("r1", []string{"a"}, []string{"b"},
			map[string]any{"+": []any{map[string]any{"var": "a"}, float64(1)}}, 0),
		mkRule("r2", []string{"b"}, []string{"c"},
			map[string]any{"+": []any{map[string]any{"var": "b"}, float64(1)}}, 1),
	}

	opts := ruleexec.DefaultOptions()
	opts.Timeout = time.Nanosecond

	exec := ruleexec.NewExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := exec.Evaluate(ctx, rules, map[string]value.Value{"a": value.Float(1)}, opts)
	require.Error(t, err)

	switch err.(type) {
	case *ruleexec.ErrTimeout, *ruleexec.ErrCancelled:
	default:
		t.Fatalf("expected ErrTimeout or ErrCancelled, got %T: %v", err, err)
	}
}

func TestEvaluateMultiOutputRuleRequiresObjectResult(t *testing.T) {
	rules := []rule.Rule{
		mkRule("r1", []string{"a"}, []string{"x", "y"},
			map[string]any{"+": []any{map[string]any{"var": "a"}, float64(1)}}, 0),
	}

	exec := ruleexec.NewExecutor()
	_, err := exec.Evaluate(context.Background(), rules, map[string]value.Value{"a": value.Float(1)}, ruleexec.DefaultOptions())
	require.Error(t, err)
	var agg *ruleexec.ErrMultipleRuleFailures
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Failures, 1)
	assert.IsType(t, &ruleexec.ErrInvalidOutputShape{}, agg.Failures[0].Err)
}
