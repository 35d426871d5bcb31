package ruleexec

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrUnsatisfiedInputs reports that one or more input paths have no
// producing rule and were absent from the caller's external input map.
// Surfaced before any rule runs.
type ErrUnsatisfiedInputs struct {
	Paths []string
}

func (e *ErrUnsatisfiedInputs) Error() string {
	return fmt.Sprintf("unsatisfied inputs: %v", e.Paths)
}

// RuleFailure pairs a failed rule with the error it produced.
type RuleFailure struct {
	RuleID string
	Err    error
}

// ErrMultipleRuleFailures aggregates every rule failure observed within a
// single level: every failure in the level is collected, not just the
// first. Failures preserves the structured (rule-id,
// error) pairs for the root facade's ErrorKind mapping; Combined carries
// the same failures folded through go-multierror for human-readable
// formatting.
type ErrMultipleRuleFailures struct {
	Failures []RuleFailure
	Combined *multierror.Error
}

// NewMultipleRuleFailures builds the aggregate from the observed
// per-rule failures, in level order.
func NewMultipleRuleFailures(failures []RuleFailure) *ErrMultipleRuleFailures {
	var combined *multierror.Error
	for _, f := range failures {
		combined = multierror.Append(combined, fmt.Errorf("%s: %w", f.RuleID, f.Err))
	}
	return &ErrMultipleRuleFailures{Failures: failures, Combined: combined}
}

func (e *ErrMultipleRuleFailures) Error() string {
	return e.Combined.Error()
}

// ErrTimeout reports that the configured wall-clock budget elapsed before
// every level finished.
type ErrTimeout struct{}

func (e *ErrTimeout) Error() string { return "evaluation timed out" }

// ErrCancelled reports that the caller's context was cancelled before
// every level finished.
type ErrCancelled struct{}

func (e *ErrCancelled) Error() string { return "evaluation cancelled" }

// ErrInvalidOutputShape reports that a rule declares more than one output
// path but its expression did not evaluate to an object carrying each of
// them — see Executor.runRule for the single-value-vs-object convention.
type ErrInvalidOutputShape struct {
	RuleID string
	Detail string
}

func (e *ErrInvalidOutputShape) Error() string {
	return fmt.Sprintf("rule %s: invalid output shape: %s", e.RuleID, e.Detail)
}
