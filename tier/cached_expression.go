package tier

import (
	"sync/atomic"

	"rulecore/ast"
	"rulecore/compiler"
)

// CachedExpression wraps one parsed rule expression with its compile
// state and usage statistics. Bytecode is published exactly once, by
// whichever goroutine's compile attempt wins the CompareAndSwap in
// ensureCompiled — readers only ever see either nil or a fully-formed
// *compiler.Bytecode, never a partially-built one.
type CachedExpression struct {
	Expr      ast.Expression
	VarPaths  []string
	NodeCount int

	compilable bool
	bytecode   atomic.Pointer[compiler.Bytecode]
	hits       atomic.Int64
}

// NewCachedExpression precomputes the var-path and node-count metadata
// once, at insertion time, rather than on every evaluation.
func NewCachedExpression(expr ast.Expression) *CachedExpression {
	return &CachedExpression{
		Expr:       expr,
		VarPaths:   ast.VarPaths(expr),
		NodeCount:  ast.NodeCount(expr),
		compilable: ast.IsFullyCompilable(expr),
	}
}

// Hits returns the number of times this entry has been evaluated.
func (c *CachedExpression) Hits() int64 {
	return c.hits.Load()
}

// Bytecode returns the published compiled form, or nil if none has been
// compiled yet (or the expression isn't compilable at all).
func (c *CachedExpression) Bytecode() *compiler.Bytecode {
	return c.bytecode.Load()
}

// recordHit increments the hit counter and returns the post-increment
// count.
func (c *CachedExpression) recordHit() int64 {
	return c.hits.Add(1)
}

// ensureCompiled compiles and publishes bytecode if not already present.
// Safe for concurrent callers: a losing CompareAndSwap just discards its
// own compile result and defers to whichever goroutine published first,
// since compilation is a pure function of Expr and any published result
// is equivalent.
func (c *CachedExpression) ensureCompiled() {
	if !c.compilable || c.bytecode.Load() != nil {
		return
	}
	bc, ok := compiler.Compile(c.Expr)
	if !ok {
		return
	}
	c.bytecode.CompareAndSwap(nil, bc)
}
