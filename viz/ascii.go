package viz

import (
	"fmt"
	"strings"

	"rulecore/rule"
)

// ASCII renders a level partition (as returned by dag.Level) as a plain-text
// listing: a header line per level, then one line per rule of that level
// in evaluation order with the rule's declared inputs/outputs, for quick
// inspection without a graph-rendering tool.
func ASCII(levels [][]rule.Node) string {
	var b strings.Builder
	for i, level := range levels {
		b.WriteString(fmt.Sprintf("level %d:\n", i))
		for _, n := range level {
			b.WriteString(fmt.Sprintf("  %s  in=%v out=%v\n", n.ID, n.Inputs, n.Outputs))
		}
	}
	return b.String()
}
