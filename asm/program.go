package asm

import (
	"github.com/riscvlint/rva/register"
	"github.com/riscvlint/rva/source"
)

// Builder interns Nodes in parse order and assigns stable NodeIDs.
type Builder struct {
	prog Program
}

// Add interns a new Node, assigns it the next NodeID, and returns it.
func (b *Builder) Add(op string, args []Operand, labels []string, rng source.Range) *Node {
	n := &Node{
		ID:     NodeID(len(b.prog.Nodes)),
		Op:     op,
		Args:   args,
		Labels: labels,
		Range:  rng,
	}
	b.prog.Nodes = append(b.prog.Nodes, n)
	return n
}

// Program returns the built node sequence.
func (b *Builder) Program() *Program { return &b.prog }

// RegOperand builds a register operand.
func RegOperand(r register.Register) Operand { return Operand{Kind: OperandReg, Reg: r} }

// ImmOperand builds an immediate operand.
func ImmOperand(v int32) Operand { return Operand{Kind: OperandImm, Imm: v} }

// LabelOperand builds a symbolic label operand.
func LabelOperand(l string) Operand { return Operand{Kind: OperandLabel, Label: l} }

// MemOperand builds a base(offset) memory operand.
func MemOperand(base register.Register, offset int32) Operand {
	return Operand{Kind: OperandMem, Reg: base, Imm: offset}
}

// ByID looks a node up by its stable id.
func (p *Program) ByID(id NodeID) *Node {
	if int(id) < 0 || int(id) >= len(p.Nodes) {
		return nil
	}
	return p.Nodes[id]
}
