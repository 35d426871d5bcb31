package rulecore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rulecore"
	"rulecore/rule"
	"rulecore/value"
)

func mkRule(id string, inputs, outputs []string, logic any, order int) rule.Rule {
	return rule.Rule{ID: id, Inputs: inputs, Outputs: outputs, Logic: logic, Enabled: true, Order: order}
}

func insuranceChain() []rule.Rule {
	return []rule.Rule{
		mkRule("base_premium_rule", []string{"rate", "coverage"}, []string{"base_premium"},
			map[string]any{"*": []any{map[string]any{"var": "rate"}, map[string]any{"var": "coverage"}}}, 0),
		mkRule("age_factor_rule", []string{"age"}, []string{"age_factor"},
			map[string]any{"if": []any{
				map[string]any{">": []any{map[string]any{"var": "age"}, float64(60)}},
				float64(1.5),
				float64(1.0),
			}}, 1),
		mkRule("final_premium_rule", []string{"base_premium", "age_factor"}, []string{"final_premium"},
			map[string]any{"*": []any{map[string]any{"var": "base_premium"}, map[string]any{"var": "age_factor"}}}, 2),
	}
}

func TestEvaluateInsuranceChainEndToEnd(t *testing.T) {
	input := map[string]value.Value{
		"rate":     value.Float(0.05),
		"coverage": value.Float(100000),
		"age":      value.Float(65),
	}

	result, err := rulecore.Evaluate(insuranceChain(), input, nil)
	require.NoError(t, err)

	final, ok := result.Outputs["final_premium"]
	require.True(t, ok, "expected final_premium in outputs")
	f, _ := final.AsFloat()
	assert.Equal(t, 7500.0, f)
	assert.Len(t, result.Levels, 2)
}

func TestValidateReportsRequiredExternalInputs(t *testing.T) {
	result, err := rulecore.Validate(insuranceChain())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"rate", "coverage", "age"}, result.RequiredExternal)
}

func TestValidateDetectsCyclicDependencyAsErrorKind(t *testing.T) {
	cyclic := []rule.Rule{
		mkRule("r1", []string{"x"}, []string{"y"}, map[string]any{"var": "x"}, 0),
		mkRule("r2", []string{"y"}, []string{"x"}, map[string]any{"var": "y"}, 1),
	}
	_, err := rulecore.Validate(cyclic)
	require.Error(t, err)

	var cyc *rulecore.CyclicDependency
	require.ErrorAs(t, err, &cyc)
	assert.Len(t, cyc.Cycle, 2)
}

func TestEvaluateReportsUnsatisfiedInputsAsErrorKind(t *testing.T) {
	rules := []rule.Rule{
		mkRule("r1", []string{"a", "b"}, []string{"c"},
			map[string]any{"+": []any{map[string]any{"var": "a"}, map[string]any{"var": "b"}}}, 0),
	}
	_, err := rulecore.Evaluate(rules, map[string]value.Value{"a": value.Float(1)}, nil)
	require.Error(t, err)

	var unsat *rulecore.UnsatisfiedInputs
	require.ErrorAs(t, err, &unsat)
	assert.Equal(t, []string{"b"}, unsat.Paths)
}

func TestEvaluateAggregatesFailuresAsErrorKind(t *testing.T) {
	rules := []rule.Rule{
		mkRule("ok_rule", []string{"a"}, []string{"ok_out"},
			map[string]any{"+": []any{map[string]any{"var": "a"}, float64(1)}}, 0),
		mkRule("div_zero_1", []string{"a"}, []string{"bad_1"},
			map[string]any{"/": []any{map[string]any{"var": "a"}, float64(0)}}, 1),
		mkRule("div_zero_2", []string{"a"}, []string{"bad_2"},
			map[string]any{"/": []any{float64(1), float64(0)}}, 2),
	}
	_, err := rulecore.Evaluate(rules, map[string]value.Value{"a": value.Float(1)}, nil)
	require.Error(t, err)

	var agg *rulecore.MultipleRuleFailures
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Failures, 2)
	for _, f := range agg.Failures {
		assert.IsType(t, &rulecore.DivisionByZero{}, f.Kind)
	}
}

func TestGetExecutionPlanRendersRequestedFormats(t *testing.T) {
	plan, err := rulecore.GetExecutionPlan(insuranceChain(), nil)
	require.NoError(t, err)

	assert.Len(t, plan.Levels, 2)
	assert.Contains(t, plan.DOT, "digraph")
	assert.Contains(t, plan.Mermaid, "flowchart")
	assert.Contains(t, plan.ASCII, "level 0:")
}

func TestGetExecutionPlanSkipsUnrequestedFormats(t *testing.T) {
	opts := &rulecore.PlanOptions{IncludeDOT: true}
	plan, err := rulecore.GetExecutionPlan(insuranceChain(), opts)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.DOT)
	assert.Empty(t, plan.Mermaid)
	assert.Empty(t, plan.ASCII)
}
