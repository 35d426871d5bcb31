// Package ruleexec drives parallel rule execution over a built rule DAG:
// serial across levels, concurrent within a level, collecting every
// per-rule failure in a level before aborting. The concurrency shape is
// a scheduler/job worker pool idiom (bounded goroutine fan-out, slog on
// failure, cooperative cancellation) applied to rule evaluation.
package ruleexec

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"rulecore/ast"
	"rulecore/dag"
	"rulecore/parser"
	"rulecore/rule"
	"rulecore/rulectx"
	"rulecore/tier"
	"rulecore/value"
)

// Options configures one call to Evaluate.
type Options struct {
	Timeout     time.Duration // 0 means no timeout
	TierConfig  tier.Config
	EvalOptions tier.EvalOptions
	MaxWorkers  int // 0 means runtime.NumCPU()
}

// DefaultOptions mirrors tier's defaults and uses one worker per core.
func DefaultOptions() Options {
	return Options{
		TierConfig:  tier.DefaultConfig(),
		EvalOptions: tier.DefaultEvalOptions(),
	}
}

// RuleTiming records one rule's wall-clock evaluation duration.
type RuleTiming struct {
	RuleID   string
	Duration time.Duration
}

// ExecutionResult is the outcome of a successful evaluation: per-rule
// timings, the final execution context, the level partition that was
// walked, and the total elapsed wall-clock time.
type ExecutionResult struct {
	Context *rulectx.Context
	Levels  [][]rule.Node
	Timings []RuleTiming
	Elapsed time.Duration
}

// builtDAG is what the content-hash cache stores: a rule set's graph and
// level partition are pure functions of the rule set's content, so they
// are safe to reuse across Evaluate calls that see the same hash.
type builtDAG struct {
	graph  *dag.Graph
	levels [][]rule.Node
}

// Executor evaluates rule sets against a shared compile cache. dagCache
// avoids rebuilding and re-levelling the DAG on every call when the
// caller repeatedly evaluates the same rule set: the graph and its level
// partition are content-addressed by the rule set, so they're reused
// across evaluations as long as the rule set is unchanged.
type Executor struct {
	Cache  *tier.Cache
	Logger *slog.Logger

	dagCache sync.Map // content hash -> *builtDAG
}

// NewExecutor returns an Executor with a fresh cache and a default
// structured logger.
func NewExecutor() *Executor {
	return &Executor{Cache: tier.NewCache(), Logger: slog.Default()}
}

// Evaluate builds the DAG for rules, validates it against input, and
// walks its levels, merging each level's outputs into the execution
// context before starting the next.
func (e *Executor) Evaluate(ctx context.Context, rules []rule.Rule, input map[string]value.Value, opts Options) (*ExecutionResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := e.Logger.With("run_id", runID)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	built, err := e.buildDAG(rules)
	if err != nil {
		return nil, err
	}
	graph, levels := built.graph, built.levels
	if missing := graph.FindMissingInputs(input); len(missing) > 0 {
		return nil, &ErrUnsatisfiedInputs{Paths: missing}
	}

	exprs, err := parseRules(rules)
	if err != nil {
		return nil, err
	}

	rulesByID := make(map[string]rule.Rule, len(rules))
	for _, r := range rules {
		rulesByID[r.ID] = r
	}

	execCtx := rulectx.New(inputObject(input))
	var timings []RuleTiming

	for levelIdx, level := range levels {
		select {
		case <-ctx.Done():
			return nil, cancellationError(ctx)
		default:
		}

		log.Debug("evaluating level", "level", levelIdx, "rules", len(level))
		levelTimings, failures := e.runLevel(ctx, level, rulesByID, exprs, execCtx, opts)
		timings = append(timings, levelTimings...)

		if len(failures) > 0 {
			agg := NewMultipleRuleFailures(failures)
			for _, f := range failures {
				log.Error("rule failed", "rule_id", f.RuleID, "error", f.Err)
			}
			return nil, agg
		}

		select {
		case <-ctx.Done():
			return nil, cancellationError(ctx)
		default:
		}
	}

	return &ExecutionResult{
		Context: execCtx,
		Levels:  levels,
		Timings: timings,
		Elapsed: time.Since(start),
	}, nil
}

// runLevel evaluates every rule in level concurrently (bounded by
// opts.MaxWorkers), then serially merges each success's outputs into
// execCtx — the context is read concurrently during the level and
// written single-threaded between levels.
func (e *Executor) runLevel(ctx context.Context, level []rule.Node, rulesByID map[string]rule.Rule, exprs map[string]ast.Expression, execCtx *rulectx.Context, opts Options) ([]RuleTiming, []RuleFailure) {
	type outcome struct {
		ruleID   string
		outputs  map[string]value.Value
		err      error
		duration time.Duration
	}

	results := make([]outcome, len(level))
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, node := range level {
		i, node := i, node
		p.Go(func() {
			r := rulesByID[node.ID]
			started := time.Now()
			outputs, err := e.runRule(r, exprs[node.ID], execCtx, opts)
			results[i] = outcome{ruleID: node.ID, outputs: outputs, err: err, duration: time.Since(started)}
		})
	}
	p.Wait()

	var timings []RuleTiming
	var failures []RuleFailure
	var successes []outcome
	for _, res := range results {
		timings = append(timings, RuleTiming{RuleID: res.ruleID, Duration: res.duration})
		if res.err != nil {
			failures = append(failures, RuleFailure{RuleID: res.ruleID, Err: res.err})
			continue
		}
		successes = append(successes, res)
	}

	if len(failures) > 0 {
		return timings, failures
	}

	for _, res := range successes {
		if err := execCtx.Write(res.ruleID, res.outputs); err != nil {
			failures = append(failures, RuleFailure{RuleID: res.ruleID, Err: err})
		}
	}
	return timings, failures
}

// runRule evaluates one rule's cached expression and shapes the result
// into its declared output paths. A rule with exactly one output path
// takes the expression's result directly; a rule with more than one
// expects the result to be an object carrying each declared path as a
// key, producing a map of output-path to value.
func (e *Executor) runRule(r rule.Rule, expr ast.Expression, execCtx *rulectx.Context, opts Options) (map[string]value.Value, error) {
	entry := e.Cache.GetOrInsert(r.ID, expr)
	result, err := tier.Evaluate(entry, execCtx, opts.TierConfig, opts.EvalOptions)
	if err != nil {
		return nil, err
	}

	if len(r.Outputs) == 1 {
		return map[string]value.Value{r.Outputs[0]: result}, nil
	}

	obj, ok := result.AsObject()
	if !ok {
		return nil, &ErrInvalidOutputShape{RuleID: r.ID, Detail: "multiple declared outputs require an object result"}
	}
	out := make(map[string]value.Value, len(r.Outputs))
	for _, path := range r.Outputs {
		v, found := obj.Get(path)
		if !found {
			return nil, &ErrInvalidOutputShape{RuleID: r.ID, Detail: fmt.Sprintf("result object missing declared output %q", path)}
		}
		out[path] = v
	}
	return out, nil
}

// buildDAG returns the cached graph and level partition for rules' content
// hash, building and levelling it only on a cache miss. A hashing failure
// falls back to an uncached build rather than failing the evaluation.
func (e *Executor) buildDAG(rules []rule.Rule) (*builtDAG, error) {
	hash, err := dag.ContentHash(rules)
	if err != nil {
		graph, buildErr := dag.Build(rules)
		if buildErr != nil {
			return nil, buildErr
		}
		return &builtDAG{graph: graph, levels: dag.Level(graph)}, nil
	}

	if cached, ok := e.dagCache.Load(hash); ok {
		return cached.(*builtDAG), nil
	}

	graph, err := dag.Build(rules)
	if err != nil {
		return nil, err
	}
	built := &builtDAG{graph: graph, levels: dag.Level(graph)}
	actual, _ := e.dagCache.LoadOrStore(hash, built)
	return actual.(*builtDAG), nil
}

func cancellationError(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &ErrTimeout{}
	}
	return &ErrCancelled{}
}

func inputObject(input map[string]value.Value) value.Value {
	obj := value.NewObject()
	for k, v := range input {
		obj.Set(k, v)
	}
	return value.ObjectValue(obj)
}

func parseRules(rules []rule.Rule) (map[string]ast.Expression, error) {
	out := make(map[string]ast.Expression, len(rules))
	for _, r := range rules {
		expr, err := parser.Parse(r.Logic)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		out[r.ID] = expr
	}
	return out, nil
}
