// Package rulecore is the root facade: Evaluate, Validate, and
// GetExecutionPlan are its three external entry points. It composes every
// internal package — parser, dag, ruleexec, viz — behind a surface that
// speaks only in structural rulecore/value.Value and the ErrorKind
// wrapper types in errors.go. An internal error with no ErrorKind mapping
// (see wrapError) reaches the caller as-is.
package rulecore

import (
	"context"
	"time"

	"rulecore/dag"
	"rulecore/rule"
	"rulecore/ruleexec"
	"rulecore/tier"
	"rulecore/value"
	"rulecore/viz"
)

// EvaluationOptions bundles every tunable limit an evaluation accepts:
// iteration limit, VM stack limit, and an overall timeout, plus the
// tiered-dispatch promotion thresholds and worker-pool width.
type EvaluationOptions struct {
	Timeout     time.Duration
	TierConfig  tier.Config
	EvalOptions tier.EvalOptions
	MaxWorkers  int
}

// DefaultEvaluationOptions mirrors ruleexec's own defaults.
func DefaultEvaluationOptions() EvaluationOptions {
	d := ruleexec.DefaultOptions()
	return EvaluationOptions{
		Timeout:     d.Timeout,
		TierConfig:  d.TierConfig,
		EvalOptions: d.EvalOptions,
		MaxWorkers:  d.MaxWorkers,
	}
}

func (o EvaluationOptions) toExecOptions() ruleexec.Options {
	return ruleexec.Options{
		Timeout:     o.Timeout,
		TierConfig:  o.TierConfig,
		EvalOptions: o.EvalOptions,
		MaxWorkers:  o.MaxWorkers,
	}
}

// ExecutionResult is the caller-facing outcome of a successful Evaluate:
// every rule output computed, keyed by declared output path, plus the
// level partition and per-rule timings for diagnostics.
type ExecutionResult struct {
	Outputs map[string]value.Value
	Levels  [][]rule.Node
	Timings []ruleexec.RuleTiming
	Elapsed time.Duration
}

// evaluator is package-level so repeated Evaluate calls share one
// compile cache across rule sets: the compilation cache is meant to
// persist across evaluations, not rebuild per call.
var evaluator = ruleexec.NewExecutor()

// Evaluate runs rules against input and returns every computed output, or
// an ErrorKind describing why evaluation could not complete.
func Evaluate(rules []rule.Rule, input map[string]value.Value, opts *EvaluationOptions) (*ExecutionResult, error) {
	resolved := DefaultEvaluationOptions()
	if opts != nil {
		resolved = *opts
	}

	result, err := evaluator.Evaluate(context.Background(), rules, input, resolved.toExecOptions())
	if err != nil {
		return nil, wrapError(err)
	}

	return &ExecutionResult{
		Outputs: result.Context.Computed(),
		Levels:  result.Levels,
		Timings: result.Timings,
		Elapsed: result.Elapsed,
	}, nil
}

// ValidationResult is the structural shape of a rule set, independent of
// any particular input: its built DAG, its level partition, and the
// external input paths it requires (paths no rule in the set produces).
type ValidationResult struct {
	Graph            *dag.Graph
	Levels           [][]rule.Node
	RequiredExternal []string
}

// Validate builds the DAG for rules and reports its structure without
// evaluating anything, or an ErrorKind naming the specific structural
// failure (CyclicDependency, MultipleProducers).
func Validate(rules []rule.Rule) (*ValidationResult, error) {
	graph, err := dag.Build(rules)
	if err != nil {
		return nil, wrapError(err)
	}
	return &ValidationResult{
		Graph:            graph,
		Levels:           dag.Level(graph),
		RequiredExternal: graph.FindMissingInputs(nil),
	}, nil
}

// PlanOptions selects which diagram formats GetExecutionPlan renders.
// Rendering is skipped entirely for a format left false, since building
// the string has a cost a caller that only wants the level partition
// shouldn't pay.
type PlanOptions struct {
	IncludeDOT     bool
	IncludeMermaid bool
	IncludeASCII   bool
}

// ExecutionPlan is the level partition plus whichever diagram formats
// were requested.
type ExecutionPlan struct {
	Levels  [][]rule.Node
	DOT     string
	Mermaid string
	ASCII   string
}

// GetExecutionPlan builds the DAG for rules and returns its level
// partition, optionally rendered as DOT/Mermaid/ASCII.
func GetExecutionPlan(rules []rule.Rule, opts *PlanOptions) (*ExecutionPlan, error) {
	resolved := PlanOptions{IncludeDOT: true, IncludeMermaid: true, IncludeASCII: true}
	if opts != nil {
		resolved = *opts
	}

	graph, err := dag.Build(rules)
	if err != nil {
		return nil, wrapError(err)
	}
	levels := dag.Level(graph)

	plan := &ExecutionPlan{Levels: levels}
	if resolved.IncludeDOT {
		plan.DOT = viz.DOT(graph)
	}
	if resolved.IncludeMermaid {
		plan.Mermaid = viz.Mermaid(graph)
	}
	if resolved.IncludeASCII {
		plan.ASCII = viz.ASCII(levels)
	}
	return plan, nil
}
