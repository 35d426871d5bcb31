package compiler

import (
	"rulecore/ast"
	"rulecore/value"
)

// compiler accumulates instructions and pools while walking one
// ast.Expression. Jump targets are backpatched: emitJump records a
// placeholder instruction and returns its index, patch fills in the
// operand once the destination is known.
type compiler struct {
	instructions []Instruction
	constants    []value.Value
	paths        []string
}

// Compile lowers expr to bytecode. It returns ok=false without error when
// expr (or any subtree) is not compilable per ast.IsFullyCompilable — the
// caller falls back to interpreter.Eval over the AST in that case.
func Compile(expr ast.Expression) (*Bytecode, bool) {
	if !ast.IsFullyCompilable(expr) {
		return nil, false
	}
	c := &compiler{}
	c.compileNode(expr)
	return &Bytecode{
		Instructions: c.instructions,
		Constants:    c.constants,
		Paths:        c.paths,
	}, true
}

func (c *compiler) emit(op Opcode, operand int) int {
	c.instructions = append(c.instructions, Instruction{Op: op, Operand: operand})
	return len(c.instructions) - 1
}

func (c *compiler) here() int {
	return len(c.instructions)
}

func (c *compiler) patchTo(idx int, target int) {
	c.instructions[idx].Operand = target
}

func (c *compiler) addConstant(v value.Value) int {
	c.constants = append(c.constants, v)
	return len(c.constants) - 1
}

func (c *compiler) addPath(path string) int {
	c.paths = append(c.paths, path)
	return len(c.paths) - 1
}

var compareOpcodes = map[ast.Op]Opcode{
	ast.OpLt:  OpLt,
	ast.OpLte: OpLte,
	ast.OpGt:  OpGt,
	ast.OpGte: OpGte,
}

var arithmeticOpcodes = map[ast.Op]Opcode{
	ast.OpAdd: OpAdd,
	ast.OpSub: OpSub,
	ast.OpMul: OpMul,
	ast.OpDiv: OpDiv,
	ast.OpMod: OpMod,
}

func (c *compiler) compileNode(expr ast.Expression) {
	switch expr.Op {
	case ast.OpLiteral:
		c.emit(OpLoadConst, c.addConstant(expr.Literal))

	case ast.OpVar:
		// ast.IsFullyCompilable already rejected any Var carrying a
		// default, so expr.Path is the whole story here.
		c.emit(OpLoadVar, c.addPath(expr.Path))

	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		c.compileArithmeticChain(arithmeticOpcodes[expr.Op], expr.Args)

	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		c.compileChainCompare(compareOpcodes[expr.Op], expr.Args)

	case ast.OpEq:
		c.compileNode(expr.Args[0])
		c.compileNode(expr.Args[1])
		c.emit(OpEq, 0)
	case ast.OpNeq:
		c.compileNode(expr.Args[0])
		c.compileNode(expr.Args[1])
		c.emit(OpNeq, 0)
	case ast.OpStrictEq:
		c.compileNode(expr.Args[0])
		c.compileNode(expr.Args[1])
		c.emit(OpSeq, 0)
	case ast.OpStrictNeq:
		c.compileNode(expr.Args[0])
		c.compileNode(expr.Args[1])
		c.emit(OpSneq, 0)

	case ast.OpAnd:
		c.compileShortCircuit(expr.Args, OpJumpIfFalse)
	case ast.OpOr:
		c.compileShortCircuit(expr.Args, OpJumpIfTrue)

	case ast.OpNot:
		c.compileNode(expr.Args[0])
		c.emit(OpNot, 0)
	case ast.OpNotNot:
		c.compileNode(expr.Args[0])
		c.emit(OpNot, 0)
		c.emit(OpNot, 0)

	case ast.OpIf:
		c.compileIf(expr.Args)

	case ast.OpCat:
		c.compileVariadicFold(OpCat, expr.Args)

	case ast.OpSubstr:
		for _, arg := range expr.Args {
			c.compileNode(arg)
		}
		c.emit(OpSubstr, len(expr.Args))

	case ast.OpMin:
		c.compileVariadicFold(OpMin, expr.Args)
	case ast.OpMax:
		c.compileVariadicFold(OpMax, expr.Args)

	default:
		// ast.IsFullyCompilable should have already excluded every other
		// Op (array operators, missing*, log, OpArrayLiteral); reaching
		// here means the compilability table and this switch disagree.
		panic("compiler: unreachable op " + expr.Op.String())
	}
}

// compileArithmeticChain left-folds n>=1 operands through one binary
// opcode, matching interpreter.evalArithmetic's left-to-right fold.
func (c *compiler) compileArithmeticChain(op Opcode, args []ast.Expression) {
	c.compileNode(args[0])
	for _, arg := range args[1:] {
		c.compileNode(arg)
		c.emit(op, 0)
	}
}

// compileVariadicFold compiles an operator whose bytecode form consumes
// all its operand count in one instruction (the VM pops that many values
// itself), used for cat/min/max which don't fold pairwise (substr is
// emitted the same way inline).
func (c *compiler) compileVariadicFold(op Opcode, args []ast.Expression) {
	for _, arg := range args {
		c.compileNode(arg)
	}
	c.emit(op, len(args))
}

// compileChainCompare implements the pairwise-conjunction semantics of
// a<b<c<...: every adjacent pair must satisfy op, and
// only the adjacent pair's right operand needs to survive to be
// compared again as the next pair's left operand. OpTuck keeps that
// operand alive under the comparison without needing a Rot-style
// three-slot shuffle.
func (c *compiler) compileChainCompare(op Opcode, args []ast.Expression) {
	c.compileNode(args[0])
	pairs := len(args) - 1

	if pairs == 1 {
		c.compileNode(args[1])
		c.emit(op, 0)
		return
	}

	var failJumps []int
	for i := 0; i < pairs; i++ {
		c.compileNode(args[i+1])
		last := i == pairs-1
		if !last {
			c.emit(OpTuck, 0)
		}
		c.emit(op, 0)
		if !last {
			failJumps = append(failJumps, c.emit(OpJumpIfFalse, 0))
		}
	}
	endJump := c.emit(OpJump, 0)

	failLabel := c.here()
	for _, idx := range failJumps {
		c.patchTo(idx, failLabel)
	}
	c.emit(OpPop, 0)
	c.emit(OpLoadConst, c.addConstant(value.Bool(false)))

	c.patchTo(endJump, c.here())
}

// compileShortCircuit compiles and/or: the result is
// whichever operand decided the outcome, not a coerced boolean. Each
// intermediate operand is duplicated, tested, and discarded if it
// didn't decide the outcome; the surviving copy becomes the result.
func (c *compiler) compileShortCircuit(args []ast.Expression, testOp Opcode) {
	c.compileNode(args[0])
	var endJumps []int
	for _, arg := range args[1:] {
		c.emit(OpDup, 0)
		endJumps = append(endJumps, c.emit(testOp, 0))
		c.emit(OpPop, 0)
		c.compileNode(arg)
	}
	end := c.here()
	for _, idx := range endJumps {
		c.patchTo(idx, end)
	}
}

// compileIf compiles alternating cond/then pairs with a trailing else,
// the ternary/if-elseif-else form. No else arm yields Null.
func (c *compiler) compileIf(args []ast.Expression) {
	var endJumps []int
	i := 0
	for ; i+1 < len(args); i += 2 {
		cond, then := args[i], args[i+1]
		c.compileNode(cond)
		skip := c.emit(OpJumpIfFalse, 0)
		c.compileNode(then)
		endJumps = append(endJumps, c.emit(OpJump, 0))
		c.patchTo(skip, c.here())
	}
	if i < len(args) {
		c.compileNode(args[i])
	} else {
		c.emit(OpLoadConst, c.addConstant(value.Null))
	}
	end := c.here()
	for _, idx := range endJumps {
		c.patchTo(idx, end)
	}
}
