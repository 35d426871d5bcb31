package rulectx

import "rulecore/value"

// valueReader adapts a single value.Value into a Reader, used by array
// operators (map/filter/reduce/all/some/none) to scope "var" lookups
// inside a lambda body to the current element: the lambda runs with
// data = element, not against the outer context.
type valueReader struct {
	v value.Value
}

// FromValue returns a Reader whose Get resolves paths against v alone. An
// empty path returns v itself.
func FromValue(v value.Value) Reader {
	return valueReader{v: v}
}

func (r valueReader) Get(path string) (value.Value, bool) {
	if path == "" {
		return r.v, true
	}
	return navigate(r.v, splitPath(path))
}
