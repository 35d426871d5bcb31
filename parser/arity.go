package parser

import "rulecore/ast"

// unbounded marks an operator's Max as having no upper argument limit.
const unbounded = -1

// arity bounds the number of arguments an operator accepts. Min and Max
// are inclusive; Max == unbounded means any count >= Min is valid.
type arity struct {
	Min, Max int
}

// keyToOp maps a rule's single JSON key to the Op it names. var is handled
// separately by parseVar because its shape ({"var": "a.b"} or {"var":
// ["a.b", default]}) does not fit the generic "key -> arg list" pattern.
var keyToOp = map[string]ast.Op{
	"+":            ast.OpAdd,
	"-":            ast.OpSub,
	"*":            ast.OpMul,
	"/":            ast.OpDiv,
	"%":            ast.OpMod,
	"<":            ast.OpLt,
	"<=":           ast.OpLte,
	">":            ast.OpGt,
	">=":           ast.OpGte,
	"==":           ast.OpEq,
	"!=":           ast.OpNeq,
	"===":          ast.OpStrictEq,
	"!==":          ast.OpStrictNeq,
	"and":          ast.OpAnd,
	"or":           ast.OpOr,
	"!":            ast.OpNot,
	"!!":           ast.OpNotNot,
	"if":           ast.OpIf,
	"?:":           ast.OpIf,
	"map":          ast.OpMap,
	"filter":       ast.OpFilter,
	"reduce":       ast.OpReduce,
	"all":          ast.OpAll,
	"some":         ast.OpSome,
	"none":         ast.OpNone,
	"merge":        ast.OpMerge,
	"in":           ast.OpIn,
	"cat":          ast.OpCat,
	"substr":       ast.OpSubstr,
	"missing":      ast.OpMissing,
	"missing_some": ast.OpMissingSome,
	"log":          ast.OpLog,
	"min":          ast.OpMin,
	"max":          ast.OpMax,
}

// opArity gives the accepted argument count range for every operator
// reachable through keyToOp. Chain comparisons (<, <=, >, >=) and the
// value-returning and/or accept three or more operands; if accepts an odd
// count >= 1 representing cond,then pairs plus a trailing else, validated
// separately in parseIf since "odd count" isn't expressible as a Min/Max
// pair.
var opArity = map[ast.Op]arity{
	ast.OpAdd:         {1, unbounded},
	ast.OpSub:         {1, unbounded},
	ast.OpMul:         {1, unbounded},
	ast.OpDiv:         {2, unbounded},
	ast.OpMod:         {2, 2},
	ast.OpLt:          {2, unbounded},
	ast.OpLte:         {2, unbounded},
	ast.OpGt:          {2, unbounded},
	ast.OpGte:         {2, unbounded},
	ast.OpEq:          {2, 2},
	ast.OpNeq:         {2, 2},
	ast.OpStrictEq:    {2, 2},
	ast.OpStrictNeq:   {2, 2},
	ast.OpAnd:         {1, unbounded},
	ast.OpOr:          {1, unbounded},
	ast.OpNot:         {1, 1},
	ast.OpNotNot:      {1, 1},
	ast.OpMap:         {2, 2},
	ast.OpFilter:      {2, 2},
	ast.OpReduce:      {3, 3},
	ast.OpAll:         {2, 2},
	ast.OpSome:        {2, 2},
	ast.OpNone:        {2, 2},
	ast.OpMerge:       {0, unbounded},
	ast.OpIn:          {2, 2},
	ast.OpCat:         {0, unbounded},
	ast.OpSubstr:      {2, 3},
	ast.OpMissing:     {0, unbounded},
	ast.OpMissingSome: {2, 2},
	ast.OpLog:         {1, 1},
	ast.OpMin:         {1, unbounded},
	ast.OpMax:         {1, unbounded},
}

func (a arity) accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max == unbounded || n <= a.Max
}
