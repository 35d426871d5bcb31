// Package compiler translates the compilable subset of ast.Expression
// (everything except array operators, missing*, log, and a Var carrying
// a default) into linear bytecode for package vm. Bytecode carries a
// constant pool and a variable-path pool, and every jump/const-load
// opcode carries an explicit integer operand, needed to express
// conditional branches and chained comparisons on a stack machine.
package compiler

import "rulecore/value"

// Opcode tags one bytecode instruction.
type Opcode int

const (
	OpLoadConst Opcode = iota
	OpLoadVar

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpLt
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
	OpSeq
	OpSneq

	OpNot

	OpCat
	OpSubstr
	OpMin
	OpMax

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	// OpTuck implements the chain-comparison retained-operand discipline:
	// given a stack ending in (..., a, b), it leaves
	// (..., b, a, b) so the comparison that follows still consumes (a, b)
	// while a copy of b survives underneath for the next pair.
	OpTuck

	OpDup
	OpPop
)

// Instruction is one bytecode opcode plus its operand. Operand means:
//   - OpLoadConst: index into Bytecode.Constants
//   - OpLoadVar:   index into Bytecode.Paths
//   - OpJump, OpJumpIfFalse, OpJumpIfTrue: absolute instruction index
//   - OpCat, OpSubstr, OpMin, OpMax: number of operands to pop
//   - everything else: unused (0)
type Instruction struct {
	Op      Opcode
	Operand int
}

// Bytecode is a linear instruction stream plus its constant pool and
// variable-path pool, the compiled form of one ast.Expression.
type Bytecode struct {
	Instructions []Instruction
	Constants    []value.Value
	Paths        []string
}
