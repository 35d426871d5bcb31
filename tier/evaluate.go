package tier

import (
	"rulecore/interpreter"
	"rulecore/rulectx"
	"rulecore/value"
	"rulecore/vm"
)

// EvalOptions bundles the interpreter's iteration limit with the VM's
// stack depth limit, since a single call to Evaluate may take either
// path depending on the entry's promotion state.
type EvalOptions struct {
	Interpreter interpreter.EvalOptions
	StackLimit  int
}

// DefaultEvalOptions returns the interpreter defaults plus
// vm.DefaultStackLimit.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{
		Interpreter: interpreter.DefaultEvalOptions(),
		StackLimit:  vm.DefaultStackLimit,
	}
}

// Evaluate runs entry against ctx, choosing the AST or VM path per this
// tiered promotion policy:
//   - if bytecode is already published, run it on the VM;
//   - otherwise interpret over the AST, then decide whether this hit
//     should trigger a compile: an eagerly-qualifying expression (node
//     count >= cfg.EagerCompileNodeCount) compiles on its very first
//     evaluation; a smaller one compiles once its hit counter crosses
//     cfg.PromotionHitCount.
//
// Either path is evaluated at most once per call; compiling is never on
// the hot path for a hit that doesn't cross a threshold.
func Evaluate(entry *CachedExpression, ctx rulectx.Reader, cfg Config, opts EvalOptions) (value.Value, error) {
	if bc := entry.Bytecode(); bc != nil {
		return vm.Run(bc, ctx, opts.StackLimit)
	}

	hits := entry.recordHit()
	result, err := interpreter.Eval(entry.Expr, ctx, opts.Interpreter)

	shouldCompile := entry.NodeCount >= cfg.EagerCompileNodeCount && hits == 1
	shouldCompile = shouldCompile || hits >= int64(cfg.PromotionHitCount)
	if shouldCompile {
		entry.ensureCompiled()
	}

	return result, err
}
