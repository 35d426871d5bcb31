package viz

import (
	"fmt"
	"sort"
	"strings"

	"rulecore/dag"
)

// Mermaid renders g as a Mermaid flowchart (top-down), using the same
// sorted node/edge ordering as DOT for a stable rendering.
func Mermaid(g *dag.Graph) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	ids := nodeIDs(g)
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("  %s[%q]\n", mermaidID(id), id))
	}

	for _, from := range ids {
		tos := append([]string(nil), g.Edges()[from]...)
		sort.Strings(tos)
		for _, to := range tos {
			b.WriteString(fmt.Sprintf("  %s --> %s\n", mermaidID(from), mermaidID(to)))
		}
	}

	return b.String()
}

// mermaidID sanitizes a rule ID into a bare Mermaid node identifier:
// Mermaid node IDs may not contain spaces or most punctuation, so the
// original ID is kept only as the quoted label text.
func mermaidID(id string) string {
	replacer := strings.NewReplacer(" ", "_", ".", "_", "-", "_")
	return "n_" + replacer.Replace(id)
}
