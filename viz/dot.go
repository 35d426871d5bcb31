// Package viz renders a built rule dependency graph as DOT, Mermaid, or a
// plain-text ASCII level listing, for diagnostic use by the root facade's
// GetExecutionPlan. These renderers build human-readable text with
// strings.Builder directly rather than pulling in a rendering library.
package viz

import (
	"fmt"
	"sort"
	"strings"

	"rulecore/dag"
)

// DOT renders g as a Graphviz "digraph" listing every rule node and every
// producer -> consumer dependency edge, sorted for a stable diff-friendly
// rendering across calls on an unchanged graph.
func DOT(g *dag.Graph) string {
	var b strings.Builder
	b.WriteString("digraph rules {\n")
	b.WriteString("  rankdir=LR;\n")

	ids := nodeIDs(g)
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("  %q;\n", id))
	}

	for _, from := range ids {
		tos := append([]string(nil), g.Edges()[from]...)
		sort.Strings(tos)
		for _, to := range tos {
			b.WriteString(fmt.Sprintf("  %q -> %q;\n", from, to))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func nodeIDs(g *dag.Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	sort.Strings(ids)
	return ids
}
