package interpreter

// EvalOptions bounds the cost of a single expression evaluation. Hard-coded
// iteration limits are a known smell, so callers set this explicitly (the
// tier package supplies its own configured defaults).
type EvalOptions struct {
	// MaxIterations bounds the element count map/filter/reduce/all/some/
	// none will walk before failing with ArrayIterationLimitExceeded.
	MaxIterations int
}

// DefaultEvalOptions returns a sane default; callers
// evaluating untrusted or unusually large rule sets should tighten them.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{MaxIterations: 10_000}
}
