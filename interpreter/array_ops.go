package interpreter

import (
	"strings"

	"rulecore/ast"
	"rulecore/rulectx"
	"rulecore/value"
)

// collectionOf evaluates expr and normalizes the result to a slice:
// non-array values (including Null) become an empty slice — map/filter on
// a non-array input yields the empty array, never a failure.
func collectionOf(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) ([]value.Value, error) {
	v, err := Eval(expr, ctx, opts)
	if err != nil {
		return nil, err
	}
	arr, ok := v.AsArray()
	if !ok {
		return nil, nil
	}
	return arr, nil
}

func checkIterationLimit(op string, n int, opts EvalOptions) error {
	if opts.MaxIterations > 0 && n > opts.MaxIterations {
		return &IterationLimitError{Op: op, Limit: opts.MaxIterations}
	}
	return nil
}

func evalMap(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	items, err := collectionOf(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	if err := checkIterationLimit("map", len(items), opts); err != nil {
		return value.Value{}, err
	}
	lambda := expr.Args[1]
	out := make([]value.Value, len(items))
	for i, item := range items {
		v, err := Eval(lambda, rulectx.FromValue(item), opts)
		if err != nil {
			return value.Value{}, err
		}
		out[i] = v
	}
	return value.Array(out), nil
}

func evalFilter(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	items, err := collectionOf(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	if err := checkIterationLimit("filter", len(items), opts); err != nil {
		return value.Value{}, err
	}
	lambda := expr.Args[1]
	out := make([]value.Value, 0, len(items))
	for _, item := range items {
		v, err := Eval(lambda, rulectx.FromValue(item), opts)
		if err != nil {
			return value.Value{}, err
		}
		if v.Truthy() {
			out = append(out, item)
		}
	}
	return value.Array(out), nil
}

// evalReduce binds {"current": element, "accumulator": acc} for each
// lambda evaluation. A non-array collection yields the initial
// accumulator unchanged.
func evalReduce(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	collection, err := Eval(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	acc, err := Eval(expr.Args[2], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}

	items, ok := collection.AsArray()
	if !ok {
		return acc, nil
	}
	if err := checkIterationLimit("reduce", len(items), opts); err != nil {
		return value.Value{}, err
	}

	lambda := expr.Args[1]
	for _, item := range items {
		binding := value.NewObject()
		binding.Set("current", item)
		binding.Set("accumulator", acc)
		acc, err = Eval(lambda, rulectx.FromValue(value.ObjectValue(binding)), opts)
		if err != nil {
			return value.Value{}, err
		}
	}
	return acc, nil
}

// evalQuantifier implements all/some/none. An empty or non-array
// collection yields all=false, some=false, none=true, matching the
// conventional jsonlogic reading that vacuous truth on "all" would be
// surprising to rule authors.
func evalQuantifier(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	items, err := collectionOf(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	if err := checkIterationLimit(expr.Op.String(), len(items), opts); err != nil {
		return value.Value{}, err
	}
	if len(items) == 0 {
		return value.Bool(expr.Op == ast.OpNone), nil
	}

	lambda := expr.Args[1]
	switch expr.Op {
	case ast.OpAll:
		for _, item := range items {
			v, err := Eval(lambda, rulectx.FromValue(item), opts)
			if err != nil {
				return value.Value{}, err
			}
			if !v.Truthy() {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	case ast.OpSome:
		for _, item := range items {
			v, err := Eval(lambda, rulectx.FromValue(item), opts)
			if err != nil {
				return value.Value{}, err
			}
			if v.Truthy() {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	default: // ast.OpNone
		for _, item := range items {
			v, err := Eval(lambda, rulectx.FromValue(item), opts)
			if err != nil {
				return value.Value{}, err
			}
			if v.Truthy() {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	}
}

// evalMerge flattens each array argument by one level and appends any
// non-array argument as-is.
func evalMerge(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	operands, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	out := make([]value.Value, 0, len(operands))
	for _, v := range operands {
		if arr, ok := v.AsArray(); ok {
			out = append(out, arr...)
			continue
		}
		out = append(out, v)
	}
	return value.Array(out), nil
}

// evalIn dispatches on the runtime kind of the haystack: array membership
// (loose-equals against every element) or string substring search.
func evalIn(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	needle, err := Eval(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	haystack, err := Eval(expr.Args[1], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}

	if arr, ok := haystack.AsArray(); ok {
		if err := checkIterationLimit("in", len(arr), opts); err != nil {
			return value.Value{}, err
		}
		for _, item := range arr {
			if needle.LooseEquals(item) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}
	if haystackStr, ok := haystack.AsString(); ok {
		return value.Bool(strings.Contains(haystackStr, needle.String())), nil
	}
	return value.Value{}, runtimeErr("in", "haystack must be an array or string, got %s", haystack.Kind())
}

func evalMissing(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	paths, err := evalArgs(expr.Args, ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	return value.Array(missingAmong(ctx, flattenPathStrings(paths))), nil
}

// evalMissingSome returns an empty array once at least minRequired of the
// given paths are present; otherwise it returns the full list of missing
// paths, per the standard jsonlogic missing_some contract.
func evalMissingSome(expr ast.Expression, ctx rulectx.Reader, opts EvalOptions) (value.Value, error) {
	minV, err := Eval(expr.Args[0], ctx, opts)
	if err != nil {
		return value.Value{}, err
	}
	minRequired, ok := minV.AsInt()
	if !ok {
		return value.Value{}, runtimeErr("missing_some", "first argument must be an integer count")
	}

	pathsV, evalErr := Eval(expr.Args[1], ctx, opts)
	if evalErr != nil {
		return value.Value{}, evalErr
	}
	pathArr, _ := pathsV.AsArray()

	missing := missingAmong(ctx, flattenPathStrings(pathArr))
	present := len(pathArr) - len(missing)
	if int64(present) >= minRequired {
		return value.Array(nil), nil
	}
	return value.Array(missing), nil
}

func flattenPathStrings(values []value.Value) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

func missingAmong(ctx rulectx.Reader, paths []string) []value.Value {
	out := make([]value.Value, 0, len(paths))
	for _, p := range paths {
		if _, ok := ctx.Get(p); !ok {
			out = append(out, value.String(p))
		}
	}
	return out
}
