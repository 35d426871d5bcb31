// Package rule defines the declarative rule data model shared by the DAG
// builder and the executor: a rule's identity, its declared inputs and
// outputs, and the JSON-shaped expression that computes those outputs.
package rule

// Rule is one unit of computation in a rule set: Logic, once parsed,
// reads Inputs (plus any prior rule's Outputs already in context) and
// writes Outputs. Order is a declaration-order tiebreaker used by the
// leveller (package dag) when multiple rules land in the same level.
type Rule struct {
	ID      string
	Type    string
	Inputs  []string
	Outputs []string
	// Logic is the rule's JSON-shaped expression tree, as decoded by
	// encoding/json into map[string]any/[]any/scalars — the same shape
	// package parser accepts.
	Logic   any
	Enabled bool
	Order   int
}

// Node is the DAG-only projection of a Rule: just enough to build and
// level the dependency graph without ever touching Logic. Keeping this
// separate from Rule means dag.Build never needs to parse an expression
// just to learn a rule's edges.
type Node struct {
	ID      string
	Inputs  []string
	Outputs []string
	Order   int
}

// ToNode projects r down to its DAG-relevant fields.
func (r Rule) ToNode() Node {
	return Node{ID: r.ID, Inputs: r.Inputs, Outputs: r.Outputs, Order: r.Order}
}
