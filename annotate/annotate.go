// Package annotate computes the per-node defs/uses register sets the
// dataflow engine's transfer functions are built from. The table is keyed
// by opcode class rather than a single switch over every mnemonic:
// instructions that share an operand shape (register-register arithmetic,
// immediate arithmetic, loads, stores, branches) share one classifier.
package annotate

import (
	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/register"
)

// Info holds the registers a node writes (Defs) and reads (Uses).
type Info struct {
	Defs register.Set
	Uses register.Set
}

var rType = map[string]bool{
	"add": true, "sub": true, "and": true, "or": true, "xor": true,
	"sll": true, "srl": true, "sra": true, "slt": true, "sltu": true,
	"mul": true, "mulh": true, "mulhsu": true, "mulhu": true,
	"div": true, "divu": true, "rem": true, "remu": true,
}

var iArith = map[string]bool{
	"addi": true, "andi": true, "ori": true, "xori": true,
	"slti": true, "sltiu": true, "slli": true, "srli": true, "srai": true,
}

var loads = map[string]bool{"lb": true, "lh": true, "lw": true, "lbu": true, "lhu": true}
var stores = map[string]bool{"sb": true, "sh": true, "sw": true}
var branches = map[string]bool{
	"beq": true, "bne": true, "blt": true, "bge": true, "bltu": true, "bgeu": true,
}

// Of returns the registers n writes and reads.
func Of(n *asm.Node) Info {
	switch {
	case rType[n.Op]:
		return reg2(n)
	case iArith[n.Op]:
		return iType(n)
	case loads[n.Op]:
		return load(n)
	case stores[n.Op]:
		return store(n)
	case branches[n.Op]:
		return branch(n)
	}

	switch n.Op {
	case "li", "lui", "auipc", "la":
		return def1(n)
	case "jal":
		return jal(n)
	case "jalr":
		return jalr(n)
	case "ret":
		return Info{Uses: register.NewSet(register.RA)}
	case "call":
		return Info{Defs: register.CallerSaved()}
	case "tail":
		// A sibling call: control leaves the function without returning
		// here, so it neither defines nor uses anything from this
		// function's point of view.
		return Info{}
	case "j":
		return Info{}
	case "ecall", "ebreak":
		// The syscall number is never resolved, so every trap is treated
		// as reading the number (a7) and the first argument (a0) and as
		// writing its result to a0. Reads of a1-a6 by syscalls that take
		// more arguments are not modeled.
		return Info{Uses: register.NewSet(register.A0, register.A7), Defs: register.NewSet(register.A0)}
	default:
		return Info{}
	}
}

func regOf(o asm.Operand) (register.Register, bool) {
	if o.IsReg() {
		return o.Reg, true
	}
	return 0, false
}

func reg2(n *asm.Node) Info {
	var info Info
	if len(n.Args) > 0 {
		if r, ok := regOf(n.Args[0]); ok {
			info.Defs = info.Defs.Add(r)
		}
	}
	for _, a := range n.Args[min(1, len(n.Args)):] {
		if r, ok := regOf(a); ok {
			info.Uses = info.Uses.Add(r)
		}
	}
	return info
}

func iType(n *asm.Node) Info {
	var info Info
	if len(n.Args) > 0 {
		if r, ok := regOf(n.Args[0]); ok {
			info.Defs = info.Defs.Add(r)
		}
	}
	if len(n.Args) > 1 {
		if r, ok := regOf(n.Args[1]); ok {
			info.Uses = info.Uses.Add(r)
		}
	}
	return info
}

func def1(n *asm.Node) Info {
	var info Info
	if len(n.Args) > 0 {
		if r, ok := regOf(n.Args[0]); ok {
			info.Defs = info.Defs.Add(r)
		}
	}
	return info
}

func load(n *asm.Node) Info {
	var info Info
	if len(n.Args) > 0 {
		if r, ok := regOf(n.Args[0]); ok {
			info.Defs = info.Defs.Add(r)
		}
	}
	if len(n.Args) > 1 && n.Args[1].IsMem() {
		info.Uses = info.Uses.Add(n.Args[1].Reg)
	}
	return info
}

func store(n *asm.Node) Info {
	var info Info
	if len(n.Args) > 0 {
		if r, ok := regOf(n.Args[0]); ok {
			info.Uses = info.Uses.Add(r)
		}
	}
	if len(n.Args) > 1 && n.Args[1].IsMem() {
		info.Uses = info.Uses.Add(n.Args[1].Reg)
	}
	return info
}

func branch(n *asm.Node) Info {
	var info Info
	for _, a := range n.Args {
		if r, ok := regOf(a); ok {
			info.Uses = info.Uses.Add(r)
		}
	}
	return info
}

func jal(n *asm.Node) Info {
	rd, plainJump := asm.ClassifyJal(n)
	if plainJump {
		return Info{}
	}
	var info Info
	info.Defs = info.Defs.Add(rd)
	if asm.IsCall(n) {
		info.Defs = info.Defs.Union(register.CallerSaved())
	}
	return info
}

func jalr(n *asm.Node) Info {
	rd, isReturn := asm.ClassifyJalr(n)
	if isReturn {
		return Info{Uses: register.NewSet(register.RA)}
	}
	var info Info
	info.Defs = info.Defs.Add(rd)
	if len(n.Args) > 1 && n.Args[1].IsMem() {
		info.Uses = info.Uses.Add(n.Args[1].Reg)
	}
	if asm.IsCall(n) {
		info.Defs = info.Defs.Union(register.CallerSaved())
	}
	return info
}
