// Package asm defines the typed instruction-stream model produced by the
// parser (asmparser/riscv) and consumed by the CFG builder: a node stream
// with per-operand typing, structured enough for RV32I's branch and
// pseudo-instruction set.
package asm

import (
	"github.com/riscvlint/rva/register"
	"github.com/riscvlint/rva/source"
)

// NodeID stably identifies a Node after interning; all cross-references
// inside the CFG use NodeID rather than pointers.
type NodeID int

// OperandKind tags the variant held by an Operand.
type OperandKind int

const (
	OperandReg OperandKind = iota
	OperandImm
	OperandLabel
	OperandMem
)

// Operand is a tagged union over {Reg, Imm, Label, MemRef}, since a single
// instruction's operand can mean any of the four depending on its shape.
type Operand struct {
	Kind OperandKind

	Reg register.Register // valid when Kind == OperandReg or OperandMem (base)

	Imm int32 // valid when Kind == OperandImm or OperandMem (offset)

	Label string // valid when Kind == OperandLabel
}

// Node is a single parsed instruction or directive.
type Node struct {
	ID     NodeID
	Op     string // canonical lowercase mnemonic, e.g. "addi", "jal", "ret"
	Args   []Operand
	Labels []string // labels attached to this node (a labeled node always starts a block)
	Range  source.Range
}

// IsReg, IsMem, IsImm and IsLabel report which operand kind o holds.
func (o Operand) IsReg() bool   { return o.Kind == OperandReg }
func (o Operand) IsMem() bool   { return o.Kind == OperandMem }
func (o Operand) IsImm() bool   { return o.Kind == OperandImm }
func (o Operand) IsLabel() bool { return o.Kind == OperandLabel }

// Program is the parser's output: an ordered node sequence.
type Program struct {
	Nodes []*Node
}
