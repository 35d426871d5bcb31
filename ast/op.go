// Package ast defines the expression tree produced by the parser and
// consumed by the interpreter and bytecode compiler. Op is a closed sum
// type in place of reflective, string-keyed operator dispatch, so every
// downstream switch over it is exhaustive and compiler-checked.
package ast

// Op tags the operator (or literal/var) an Expression node represents.
type Op int

const (
	OpLiteral Op = iota
	OpVar

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	// comparison
	OpLt
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
	OpStrictEq
	OpStrictNeq

	// logical
	OpAnd
	OpOr
	OpNot
	OpNotNot

	// conditional
	OpIf

	// array
	OpMap
	OpFilter
	OpReduce
	OpAll
	OpSome
	OpNone
	OpMerge

	// in is overloaded: {"in": [needle, haystack]} means array membership
	// when haystack is an array and substring search when it is a string.
	// Both meanings share one Op; the interpreter dispatches on the
	// runtime kind of the evaluated haystack.
	OpIn

	// string
	OpCat
	OpSubstr

	// data
	OpMissing
	OpMissingSome
	OpLog

	// extremum
	OpMin
	OpMax

	// OpArrayLiteral has no JSON operator key of its own: the parser emits
	// it for a bare JSON array found in an argument position (as opposed
	// to the outer argument-list array of an operator object), so that
	// var references nested inside it still evaluate dynamically instead
	// of being frozen at parse time.
	OpArrayLiteral
)

var opNames = map[Op]string{
	OpLiteral:     "literal",
	OpVar:         "var",
	OpAdd:         "+",
	OpSub:         "-",
	OpMul:         "*",
	OpDiv:         "/",
	OpMod:         "%",
	OpLt:          "<",
	OpLte:         "<=",
	OpGt:          ">",
	OpGte:         ">=",
	OpEq:          "==",
	OpNeq:         "!=",
	OpStrictEq:    "===",
	OpStrictNeq:   "!==",
	OpAnd:         "and",
	OpOr:          "or",
	OpNot:         "!",
	OpNotNot:      "!!",
	OpIf:          "if",
	OpMap:         "map",
	OpFilter:      "filter",
	OpReduce:      "reduce",
	OpAll:         "all",
	OpSome:        "some",
	OpNone:        "none",
	OpMerge:       "merge",
	OpIn:          "in",
	OpCat:         "cat",
	OpSubstr:      "substr",
	OpMissing:     "missing",
	OpMissingSome: "missing_some",
	OpLog:         "log",
	OpMin:          "min",
	OpMax:          "max",
	OpArrayLiteral: "array",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// IsCompilable reports whether the bytecode compiler (package compiler)
// handles nodes tagged with op in isolation. Array operators, missing*,
// and log are excluded; the tiered executor falls back to
// the AST path for any expression containing one of these anywhere in its
// tree. OpIn joins them: its array-vs-substring behavior is chosen at
// evaluation time from the runtime kind of its second operand, which the
// linear bytecode form has no safe way to branch on ahead of time.
func (op Op) IsCompilable() bool {
	switch op {
	case OpMap, OpFilter, OpReduce, OpAll, OpSome, OpNone, OpMerge, OpIn,
		OpMissing, OpMissingSome, OpLog, OpArrayLiteral:
		return false
	default:
		return true
	}
}
