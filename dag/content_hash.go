package dag

import (
	"fmt"

	"github.com/mitchellh/hashstructure"

	"rulecore/rule"
)

// ContentHash derives a stable identifier for a rule set, so a built DAG
// and its level partition may be cached across evaluations keyed on this
// value rather than rebuilt every call, provided the rule set is
// unchanged.
func ContentHash(rules []rule.Rule) (string, error) {
	h, err := hashstructure.Hash(rules, nil)
	if err != nil {
		return "", fmt.Errorf("dag: hashing rule set: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}
