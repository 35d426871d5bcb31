package ast

// VarPaths walks expr and returns the set of distinct, non-empty dotted
// paths referenced by "var" nodes anywhere in the tree. Package tier
// stores the result on each CachedExpression as the rule's referenced
// variable paths.
func VarPaths(expr Expression) []string {
	seen := make(map[string]struct{})
	var walk func(Expression)
	walk = func(e Expression) {
		if e.Op == OpVar && e.Path != "" {
			seen[e.Path] = struct{}{}
		}
		if e.Default != nil {
			walk(*e.Default)
		}
		for _, arg := range e.Args {
			walk(arg)
		}
	}
	walk(expr)

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	return paths
}

// NodeCount returns the total number of nodes in expr's tree, used by the
// tiered executor as the compile-threshold complexity metric.
func NodeCount(expr Expression) int {
	count := 1
	if expr.Default != nil {
		count += NodeCount(*expr.Default)
	}
	for _, arg := range expr.Args {
		count += NodeCount(arg)
	}
	return count
}

// IsFullyCompilable reports whether every node in expr's tree (not just its
// root) is individually compilable: a single non-compilable subtree forces
// the whole expression onto the AST path. A Var carrying a default is a
// non-trivial fallback and stays on the AST path even though a bare Var
// does not.
func IsFullyCompilable(expr Expression) bool {
	if !expr.Op.IsCompilable() {
		return false
	}
	if expr.Op == OpVar && expr.Default != nil {
		return false
	}
	if expr.Default != nil && !IsFullyCompilable(*expr.Default) {
		return false
	}
	for _, arg := range expr.Args {
		if !IsFullyCompilable(arg) {
			return false
		}
	}
	return true
}
