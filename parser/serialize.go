package parser

import (
	"fmt"

	"rulecore/ast"
)

// Serialize is the inverse of Parse: it converts an ast.Expression back
// into a plain JSON-shaped value (map[string]any / []any / scalar)
// suitable for json.Marshal. The output need not match the original input
// byte-for-byte (unary sugar is always expanded to its canonical form),
// but re-parsing it always yields an equal Expression.
func Serialize(expr ast.Expression) (any, error) {
	switch expr.Op {
	case ast.OpLiteral:
		return expr.Literal.ToJSON(), nil
	case ast.OpArrayLiteral:
		return serializeArgs(expr.Args)
	case ast.OpVar:
		return serializeVar(expr)
	default:
		return serializeOperator(expr)
	}
}

func serializeVar(expr ast.Expression) (any, error) {
	if expr.Default == nil {
		return map[string]any{"var": expr.Path}, nil
	}
	def, err := Serialize(*expr.Default)
	if err != nil {
		return nil, err
	}
	return map[string]any{"var": []any{expr.Path, def}}, nil
}

func serializeOperator(expr ast.Expression) (any, error) {
	key := expr.Op.String()
	if key == "unknown" {
		return nil, fmt.Errorf("cannot serialize unrecognized op %d", int(expr.Op))
	}

	args, err := serializeArgs(expr.Args)
	if err != nil {
		return nil, err
	}
	return map[string]any{key: args}, nil
}

func serializeArgs(exprs []ast.Expression) ([]any, error) {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		v, err := Serialize(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
