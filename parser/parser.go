// Package parser turns a JSON-shaped rule tree into an ast.Expression, and
// serializes an ast.Expression back into that same shape. The input
// already arrives as a decoded JSON value, so the parser walks that tree
// directly instead of running a lexer and a precedence-climbing grammar
// over a token stream.
package parser

import (
	"fmt"

	"rulecore/ast"
	"rulecore/value"
)

// Parse converts a decoded JSON value (as produced by json.Unmarshal(data,
// &any) or equivalent) into an ast.Expression.
//
// A one-key object names an operator; its value is the argument list, or a
// bare scalar as unary sugar for a single argument. {"var": "a.b"} and
// {"var": ["a.b", default]} both produce an OpVar node. Anything else
// (bool, string, number, null, or a bare array) is data: arrays parse
// element-wise into an OpArrayLiteral node so that var references nested
// inside them still resolve dynamically; every other scalar becomes an
// OpLiteral.
func Parse(raw any) (ast.Expression, error) {
	return parseNode(raw, "$")
}

func parseNode(raw any, path string) (ast.Expression, error) {
	switch v := raw.(type) {
	case map[string]any:
		return parseObject(v, path)
	case []any:
		return parseArrayLiteral(v, path)
	default:
		val, err := value.FromJSON(raw)
		if err != nil {
			return ast.Expression{}, errAt(path, "%s", err)
		}
		return ast.Literal(val), nil
	}
}

func parseArrayLiteral(items []any, path string) (ast.Expression, error) {
	args := make([]ast.Expression, len(items))
	for i, item := range items {
		elem, err := parseNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return ast.Expression{}, err
		}
		args[i] = elem
	}
	return ast.Node(ast.OpArrayLiteral, args...), nil
}

func parseObject(obj map[string]any, path string) (ast.Expression, error) {
	if len(obj) != 1 {
		return ast.Expression{}, errAt(path, "operator object must have exactly one key, got %d", len(obj))
	}

	var key string
	var rawArgs any
	for k, v := range obj {
		key, rawArgs = k, v
	}
	opPath := path + "." + key

	if key == "var" {
		return parseVar(rawArgs, opPath)
	}

	op, ok := keyToOp[key]
	if !ok {
		return ast.Expression{}, errAt(path, "unknown operator %q", key)
	}

	args, err := parseArgList(rawArgs, opPath)
	if err != nil {
		return ast.Expression{}, err
	}

	if op == ast.OpIf {
		if len(args) == 0 || len(args)%2 == 0 {
			return ast.Expression{}, errAt(opPath, "if requires an odd number of arguments (cond,then,... ,else), got %d", len(args))
		}
		return ast.Node(op, args...), nil
	}

	if bounds, ok := opArity[op]; ok && !bounds.accepts(len(args)) {
		return ast.Expression{}, errAt(opPath, "%q accepts %s arguments, got %d", key, describeArity(bounds), len(args))
	}

	return ast.Node(op, args...), nil
}

// parseArgList parses an operator's argument-list value. A bare array is
// the argument list itself (each element is one operand); any other value
// is unary sugar for a single operand.
func parseArgList(rawArgs any, opPath string) ([]ast.Expression, error) {
	items, isList := rawArgs.([]any)
	if !isList {
		arg, err := parseNode(rawArgs, opPath)
		if err != nil {
			return nil, err
		}
		return []ast.Expression{arg}, nil
	}

	args := make([]ast.Expression, len(items))
	for i, item := range items {
		arg, err := parseNode(item, fmt.Sprintf("%s[%d]", opPath, i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

// parseVar handles {"var": "a.b"} and {"var": ["a.b", default]}. The
// default, when present, is itself parsed recursively so it may reference
// other variables or nested operators.
func parseVar(rawArgs any, opPath string) (ast.Expression, error) {
	switch v := rawArgs.(type) {
	case string:
		return ast.Var(v, nil), nil
	case []any:
		switch len(v) {
		case 1:
			pathStr, ok := v[0].(string)
			if !ok {
				return ast.Expression{}, errAt(opPath, "var path must be a string")
			}
			return ast.Var(pathStr, nil), nil
		case 2:
			pathStr, ok := v[0].(string)
			if !ok {
				return ast.Expression{}, errAt(opPath, "var path must be a string")
			}
			def, err := parseNode(v[1], opPath+"[1]")
			if err != nil {
				return ast.Expression{}, err
			}
			return ast.Var(pathStr, &def), nil
		default:
			return ast.Expression{}, errAt(opPath, "var accepts 1 or 2 arguments, got %d", len(v))
		}
	default:
		return ast.Expression{}, errAt(opPath, "var requires a string path or [path, default]")
	}
}

func describeArity(a arity) string {
	if a.Max == unbounded {
		if a.Min == 0 {
			return "any number of"
		}
		return fmt.Sprintf("at least %d", a.Min)
	}
	if a.Min == a.Max {
		return fmt.Sprintf("exactly %d", a.Min)
	}
	return fmt.Sprintf("between %d and %d", a.Min, a.Max)
}
