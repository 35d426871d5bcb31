// Package dag builds and levels the rule dependency graph: an edge
// producer → consumer exists whenever the consumer declares an input
// path the producer declares as an output. Building enforces the
// single-producer and acyclic invariants a valid rule set requires; Level
// partitions the resulting DAG into parallelizable antichains.
package dag

import (
	"fmt"
	"sort"

	"rulecore/rule"
	"rulecore/value"
)

// Graph is a built, validated rule dependency graph.
type Graph struct {
	// Nodes preserves the input rule order — used as the deterministic
	// tiebreak for nodes sharing both a level and an Order value.
	Nodes []rule.Node
	// Producer maps an output path to the rule ID that writes it.
	Producer map[string]string
	// edges maps a producer rule ID to the consumer rule IDs that depend
	// on one of its outputs (may contain duplicates if a consumer reads
	// more than one of the producer's outputs; harmless for both cycle
	// detection and leveling, which only care about node identity).
	edges map[string][]string
}

// ErrMultipleProducers reports that more than one rule declares the same
// output path.
type ErrMultipleProducers struct {
	Path  string
	Rules []string
}

func (e *ErrMultipleProducers) Error() string {
	return fmt.Sprintf("multiple producers for output %q: %v", e.Path, e.Rules)
}

// ErrCyclicDependency reports a dependency cycle, naming every rule ID on
// the cycle in dependency order.
type ErrCyclicDependency struct {
	Cycle []string
}

func (e *ErrCyclicDependency) Error() string {
	return fmt.Sprintf("cyclic dependency: %v", e.Cycle)
}

// Build derives the producer map and dependency edges from rules,
// enforcing single-producer-per-path and acyclicity.
func Build(rules []rule.Rule) (*Graph, error) {
	g := &Graph{
		Nodes:    make([]rule.Node, 0, len(rules)),
		Producer: make(map[string]string),
		edges:    make(map[string][]string),
	}

	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		node := r.ToNode()
		g.Nodes = append(g.Nodes, node)
		for _, out := range r.Outputs {
			if existing, ok := g.Producer[out]; ok && existing != r.ID {
				return nil, &ErrMultipleProducers{Path: out, Rules: []string{existing, r.ID}}
			}
			g.Producer[out] = r.ID
		}
	}

	for _, node := range g.Nodes {
		for _, in := range node.Inputs {
			producer, ok := g.Producer[in]
			if !ok {
				continue
			}
			g.edges[producer] = append(g.edges[producer], node.ID)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &ErrCyclicDependency{Cycle: cycle}
	}

	return g, nil
}

// findCycle runs DFS with three-color marking (white/gray/black) over
// every node, returning the first cycle found as a rule-ID path, or nil
// if the graph is acyclic. Iterating Nodes in declaration order makes
// the result deterministic for a fixed rule set.
func (g *Graph) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		color[n.ID] = white
	}

	var path []string
	var cycle []string
	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		path = append(path, id)
		for _, next := range g.edges[id] {
			switch color[next] {
			case gray:
				// Found the closing edge; extract the cycle from where
				// `next` first appears on the current path.
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				cycle = append([]string(nil), path[start:]...)
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return false
	}

	for _, n := range g.Nodes {
		if color[n.ID] == white {
			if visit(n.ID) {
				return cycle
			}
		}
	}
	return nil
}

// Edges returns the producer-rule-ID -> consumer-rule-IDs adjacency built
// by Build, for callers (viz) that need to walk dependency edges directly
// rather than just levels.
func (g *Graph) Edges() map[string][]string {
	return g.edges
}

// FindMissingInputs returns every input path declared by some rule that
// has no producer in the graph and is absent from available, sorted for
// determinism. These must be satisfied by the caller's external input
// map before evaluation.
func (g *Graph) FindMissingInputs(available map[string]value.Value) []string {
	missing := make(map[string]struct{})
	for _, n := range g.Nodes {
		for _, in := range n.Inputs {
			if _, produced := g.Producer[in]; produced {
				continue
			}
			if _, ok := available[in]; ok {
				continue
			}
			missing[in] = struct{}{}
		}
	}
	out := make([]string, 0, len(missing))
	for p := range missing {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
