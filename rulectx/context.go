// Package rulectx holds the execution context a rule set is evaluated
// against: the caller-supplied input attributes and the outputs computed
// by rules that have already run. It is a two-tier, mostly-immutable map
// suited to a DAG of pure rules: input never changes once an evaluation
// starts, and computed only ever grows.
package rulectx

import (
	"fmt"
	"strconv"
	"strings"

	"rulecore/value"
)

// DuplicateOutputError reports that a rule tried to write a path already
// written by a different rule, or by itself with a different value.
type DuplicateOutputError struct {
	Path          string
	WriterRuleID  string
	ExistingValue value.Value
	NewValue      value.Value
}

func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("path %q already written by rule %q", e.Path, e.WriterRuleID)
}

// Reader is the read-only view of a Context. interpreter and vm depend on
// Reader rather than *Context so neither of them can accidentally
// call Write: only the rule executor, after a rule succeeds, may mutate
// computed state.
type Reader interface {
	Get(path string) (value.Value, bool)
}

// Context is the execution context for a single evaluation. Input is
// fixed for the lifetime of the evaluation; computed accumulates one
// rule's outputs at a time, merged single-threaded between DAG levels.
type Context struct {
	input value.Value

	computed   map[string]value.Value
	writerRule map[string]string
}

// New builds a Context over the given input attributes. input must
// already be a KindObject value (the facade converts the caller's
// map[string]value.Value at the boundary).
func New(input value.Value) *Context {
	return &Context{
		input:      input,
		computed:   make(map[string]value.Value),
		writerRule: make(map[string]string),
	}
}

// Get resolves a dotted path, searching computed first, then input.
// Segments that parse as an integer index into arrays (a negative one
// never resolves); everything else indexes into objects. A missing path
// returns (Null, false).
func (c *Context) Get(path string) (value.Value, bool) {
	if path == "" {
		return c.wholeContext(), true
	}
	if v, ok := lookupFlat(c.computed, path); ok {
		return v, true
	}
	return navigate(c.input, splitPath(path))
}

// wholeContext merges input and computed into a single Object, computed
// taking precedence, for the {"var": ""} "whole context" reference.
func (c *Context) wholeContext() value.Value {
	obj := value.NewObject()
	if io, ok := c.input.AsObject(); ok {
		for pair := io.Oldest(); pair != nil; pair = pair.Next() {
			obj.Set(pair.Key, pair.Value)
		}
	}
	for path, v := range c.computed {
		setFlat(obj, path, v)
	}
	return value.ObjectValue(obj)
}

// Write applies ruleID's outputs to the computed map. A path already
// written by a different rule is always a DuplicateOutputError. A path
// already written by the same rule is a no-op if the value is identical
// (idempotent re-computation), and a DuplicateOutputError otherwise.
func (c *Context) Write(ruleID string, outputs map[string]value.Value) error {
	for path, v := range outputs {
		existingWriter, written := c.writerRule[path]
		if written {
			existing := c.computed[path]
			if existingWriter == ruleID && existing.StrictEquals(v) {
				continue
			}
			return &DuplicateOutputError{
				Path:          path,
				WriterRuleID:  existingWriter,
				ExistingValue: existing,
				NewValue:      v,
			}
		}
	}
	for path, v := range outputs {
		c.computed[path] = v
		c.writerRule[path] = ruleID
	}
	return nil
}

// Computed returns a shallow copy of every output path written so far,
// for callers (the root facade) that need the full result set rather
// than one path at a time.
func (c *Context) Computed() map[string]value.Value {
	out := make(map[string]value.Value, len(c.computed))
	for k, v := range c.computed {
		out[k] = v
	}
	return out
}

// lookupFlat resolves path against a flat path->value map, falling back
// to structural navigation when path names a prefix of a stored key
// (e.g. "a.b" looked up when only "a.b.c" was ever written directly).
func lookupFlat(flat map[string]value.Value, path string) (value.Value, bool) {
	if v, ok := flat[path]; ok {
		return v, true
	}
	for storedPath, v := range flat {
		if rest, ok := strings.CutPrefix(storedPath, path+"."); ok {
			navigated, found := navigate(v, splitPath(rest))
			if found {
				return navigated, true
			}
		}
	}
	return value.Value{}, false
}

// setFlat writes v into obj at the dotted path, creating intermediate
// objects as needed. Used only to build the synthetic whole-context view.
func setFlat(obj *value.Object, path string, v value.Value) {
	segments := splitPath(path)
	if len(segments) == 1 {
		obj.Set(segments[0], v)
		return
	}
	head := segments[0]
	existing, ok := obj.Get(head)
	var child *value.Object
	if ok {
		if childObj, isObj := existing.AsObject(); isObj {
			child = childObj
		}
	}
	if child == nil {
		child = value.NewObject()
	}
	setFlat(child, strings.Join(segments[1:], "."), v)
	obj.Set(head, value.ObjectValue(child))
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// navigate descends v through segments, indexing into arrays for
// integer segments and into objects otherwise.
func navigate(v value.Value, segments []string) (value.Value, bool) {
	current := v
	for _, seg := range segments {
		if idx, err := strconv.Atoi(seg); err == nil {
			arr, ok := current.AsArray()
			if !ok || idx < 0 || idx >= len(arr) {
				return value.Value{}, false
			}
			current = arr[idx]
			continue
		}
		obj, ok := current.AsObject()
		if !ok {
			return value.Value{}, false
		}
		next, found := obj.Get(seg)
		if !found {
			return value.Value{}, false
		}
		current = next
	}
	return current, true
}
