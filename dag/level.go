package dag

import (
	"sort"

	"rulecore/rule"
)

// Level partitions g into maximal antichains: level 0
// holds every node with no unresolved predecessor; level k+1 holds every
// node whose predecessors all lie in levels ≤ k. Within a level, nodes
// are stable-sorted by their declared Order, ties broken by original
// declaration order (sort.SliceStable over a slice already built in
// Graph.Nodes order preserves that tiebreak for free).
func Level(g *Graph) [][]rule.Node {
	indegree := make(map[string]int, len(g.Nodes))
	byID := make(map[string]rule.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
		indegree[n.ID] = 0
	}
	for _, consumers := range g.edges {
		for _, c := range consumers {
			indegree[c]++
		}
	}

	remaining := make(map[string]int, len(indegree))
	for id, d := range indegree {
		remaining[id] = d
	}

	var levels [][]rule.Node
	placed := make(map[string]bool, len(g.Nodes))

	for len(placed) < len(g.Nodes) {
		var current []rule.Node
		for _, n := range g.Nodes {
			if placed[n.ID] {
				continue
			}
			if remaining[n.ID] == 0 {
				current = append(current, n)
			}
		}
		// Build unreachable under a correctly validated (acyclic) graph;
		// Build always runs cycle detection before returning a *Graph.
		if len(current) == 0 {
			break
		}

		sort.SliceStable(current, func(i, j int) bool {
			return current[i].Order < current[j].Order
		})
		levels = append(levels, current)

		for _, n := range current {
			placed[n.ID] = true
			for _, consumer := range g.edges[n.ID] {
				remaining[consumer]--
			}
		}
	}

	return levels
}
