package rulecore

import (
	"errors"
	"fmt"

	"rulecore/dag"
	"rulecore/interpreter"
	"rulecore/parser"
	"rulecore/rulectx"
	"rulecore/ruleexec"
	"rulecore/value"
	"rulecore/vm"
)

// The twelve ErrorKind tags the facade surfaces. Each wraps the internal
// package error that produced it (via Unwrap) so a caller that only cares
// about the host-language-agnostic tag can type-switch on these, while
// errors.As still reaches the structural payload one layer down.

// ParseError reports a malformed JSON-shape rule expression.
type ParseError struct{ Wrapped error }

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %v", e.Wrapped) }
func (e *ParseError) Unwrap() error { return e.Wrapped }

// CyclicDependency carries the cycle, in dependency order.
type CyclicDependency struct {
	Cycle   []string
	Wrapped error
}

func (e *CyclicDependency) Error() string { return e.Wrapped.Error() }
func (e *CyclicDependency) Unwrap() error { return e.Wrapped }

// MultipleProducers carries the duplicated output path and the rule ids
// that both claim to produce it.
type MultipleProducers struct {
	Path    string
	Rules   []string
	Wrapped error
}

func (e *MultipleProducers) Error() string { return e.Wrapped.Error() }
func (e *MultipleProducers) Unwrap() error { return e.Wrapped }

// UnsatisfiedInputs carries the list of missing input paths.
type UnsatisfiedInputs struct {
	Paths   []string
	Wrapped error
}

func (e *UnsatisfiedInputs) Error() string { return e.Wrapped.Error() }
func (e *UnsatisfiedInputs) Unwrap() error { return e.Wrapped }

// TypeMismatch reports an arithmetic or comparison operator applied to
// operands coercion rules give no answer for.
type TypeMismatch struct{ Wrapped error }

func (e *TypeMismatch) Error() string { return e.Wrapped.Error() }
func (e *TypeMismatch) Unwrap() error { return e.Wrapped }

// DivisionByZero reports a "/" or "%" with a zero divisor.
type DivisionByZero struct{ Wrapped error }

func (e *DivisionByZero) Error() string { return e.Wrapped.Error() }
func (e *DivisionByZero) Unwrap() error { return e.Wrapped }

// ArrayIterationLimitExceeded carries the operator and the configured
// limit it exceeded.
type ArrayIterationLimitExceeded struct {
	Op      string
	Limit   int
	Wrapped error
}

func (e *ArrayIterationLimitExceeded) Error() string { return e.Wrapped.Error() }
func (e *ArrayIterationLimitExceeded) Unwrap() error { return e.Wrapped }

// VmStackOverflow carries the configured stack depth limit.
type VmStackOverflow struct {
	Limit   int
	Wrapped error
}

func (e *VmStackOverflow) Error() string { return e.Wrapped.Error() }
func (e *VmStackOverflow) Unwrap() error { return e.Wrapped }

// DuplicateOutput reports that a rule emitted a path already written by
// another rule.
type DuplicateOutput struct {
	Path    string
	Wrapped error
}

func (e *DuplicateOutput) Error() string { return e.Wrapped.Error() }
func (e *DuplicateOutput) Unwrap() error { return e.Wrapped }

// MultipleRuleFailures aggregates every per-rule failure observed within
// one DAG level, each passed through wrapError (a failure with no
// ErrorKind mapping keeps its internal type).
type MultipleRuleFailures struct {
	Failures []RuleFailure
	Wrapped  error
}

// RuleFailure pairs a failed rule with the ErrorKind it produced.
type RuleFailure struct {
	RuleID string
	Kind   error
}

func (e *MultipleRuleFailures) Error() string { return e.Wrapped.Error() }
func (e *MultipleRuleFailures) Unwrap() error { return e.Wrapped }

// Timeout reports that the configured wall-clock budget elapsed before
// every level finished.
type Timeout struct{ Wrapped error }

func (e *Timeout) Error() string { return e.Wrapped.Error() }
func (e *Timeout) Unwrap() error { return e.Wrapped }

// Cancelled reports that the caller's context was cancelled before every
// level finished.
type Cancelled struct{ Wrapped error }

func (e *Cancelled) Error() string { return e.Wrapped.Error() }
func (e *Cancelled) Unwrap() error { return e.Wrapped }

// wrapError maps any error surfaced by an internal package onto one of
// the twelve ErrorKind tags. Internal errors with no mapping (for example
// ruleexec.ErrInvalidOutputShape, or an interpreter.RuntimeError that
// wraps none of the mapped errors) are returned unwrapped rather than
// silently misclassified.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var cyc *dag.ErrCyclicDependency
	if errors.As(err, &cyc) {
		return &CyclicDependency{Cycle: cyc.Cycle, Wrapped: err}
	}
	var mp *dag.ErrMultipleProducers
	if errors.As(err, &mp) {
		return &MultipleProducers{Path: mp.Path, Rules: mp.Rules, Wrapped: err}
	}
	var unsat *ruleexec.ErrUnsatisfiedInputs
	if errors.As(err, &unsat) {
		return &UnsatisfiedInputs{Paths: unsat.Paths, Wrapped: err}
	}
	var dup *rulectx.DuplicateOutputError
	if errors.As(err, &dup) {
		return &DuplicateOutput{Path: dup.Path, Wrapped: err}
	}
	var parseErr parser.ParseError
	if errors.As(err, &parseErr) {
		return &ParseError{Wrapped: err}
	}
	var overflow *vm.ErrStackOverflow
	if errors.As(err, &overflow) {
		return &VmStackOverflow{Limit: overflow.Limit, Wrapped: err}
	}
	var iterLimit *interpreter.IterationLimitError
	if errors.As(err, &iterLimit) {
		return &ArrayIterationLimitExceeded{Op: iterLimit.Op, Limit: iterLimit.Limit, Wrapped: err}
	}
	if errors.Is(err, value.ErrDivisionByZero) {
		return &DivisionByZero{Wrapped: err}
	}
	var mismatch value.ErrTypeMismatch
	if errors.As(err, &mismatch) {
		return &TypeMismatch{Wrapped: err}
	}
	var timeout *ruleexec.ErrTimeout
	if errors.As(err, &timeout) {
		return &Timeout{Wrapped: err}
	}
	var cancelled *ruleexec.ErrCancelled
	if errors.As(err, &cancelled) {
		return &Cancelled{Wrapped: err}
	}
	var multi *ruleexec.ErrMultipleRuleFailures
	if errors.As(err, &multi) {
		failures := make([]RuleFailure, len(multi.Failures))
		for i, f := range multi.Failures {
			failures[i] = RuleFailure{RuleID: f.RuleID, Kind: wrapError(f.Err)}
		}
		return &MultipleRuleFailures{Failures: failures, Wrapped: err}
	}

	return err
}
