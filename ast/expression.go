package ast

import "rulecore/value"

// Expression is the single tagged node type for the whole operator tree.
// The operator set is flat and data-driven, so one struct carrying an Op
// tag plus whichever fields that Op needs is the better fit over a
// per-node-type visitor hierarchy: every consumer switches on Op,
// exhaustively, with no interface dispatch indirection.
type Expression struct {
	Op Op

	// Literal holds the value for OpLiteral nodes.
	Literal value.Value

	// Path holds the dotted attribute path for OpVar nodes.
	Path string

	// Default holds the optional default expression for OpVar nodes
	// ({"var": ["a.b", default]}).
	Default *Expression

	// Args holds operand sub-expressions for every other operator. Their
	// count and meaning are operator-specific: binary operators expect 2+
	// (folded left-to-right when more than 2 are given), "if" expects an
	// odd count >= 1, array operators expect [collection, lambda] (plus an
	// initial accumulator for reduce), and so on.
	Args []Expression
}

// Literal constructs a literal expression node.
func Literal(v value.Value) Expression {
	return Expression{Op: OpLiteral, Literal: v}
}

// Var constructs a variable-reference node with an optional default.
func Var(path string, def *Expression) Expression {
	return Expression{Op: OpVar, Path: path, Default: def}
}

// Node constructs a non-leaf node for the given operator and operands.
func Node(op Op, args ...Expression) Expression {
	return Expression{Op: op, Args: args}
}
