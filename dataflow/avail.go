package dataflow

import (
	"github.com/riscvlint/rva/annotate"
	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/register"
)

// AbsKind tags the abstract value a register holds in the available-value
// lattice: unknown, a known immediate, a known stack offset, or top.
type AbsKind int

const (
	// AbsUnknown is the bottom element: the register has not been
	// assigned along this path (a true "never defined" fact, which is
	// what UseBeforeDefCheck looks for).
	AbsUnknown AbsKind = iota
	// AbsImm is a known constant value.
	AbsImm
	// AbsStack is a known offset relative to the function's entry sp.
	AbsStack
	// AbsTop means two paths assigned conflicting values; the value is
	// unconstrained from here on.
	AbsTop
)

// AbsVal is one lattice element.
type AbsVal struct {
	Kind AbsKind
	N    int32
}

func unknown() AbsVal   { return AbsVal{Kind: AbsUnknown} }
func imm(v int32) AbsVal { return AbsVal{Kind: AbsImm, N: v} }
func top() AbsVal       { return AbsVal{Kind: AbsTop} }

func meetVal(a, b AbsVal) AbsVal {
	if a.Kind == AbsUnknown {
		return b
	}
	if b.Kind == AbsUnknown {
		return a
	}
	if a.Kind == b.Kind && a.N == b.N {
		return a
	}
	return top()
}

// AvailState is the available-value domain: a fixed-size map from
// register to AbsVal.
type AvailState struct {
	regs [register.NumRegisters]AbsVal
}

func (s AvailState) Get(r register.Register) AbsVal { return s.regs[r] }

func (s AvailState) set(r register.Register, v AbsVal) AvailState {
	s.regs[r] = v
	return s
}

func availBottom() AvailState {
	var s AvailState
	for i := range s.regs {
		s.regs[i] = unknown()
	}
	return s
}

func availMeet(a, b AvailState) AvailState {
	var out AvailState
	for i := range out.regs {
		out.regs[i] = meetVal(a.regs[i], b.regs[i])
	}
	return out
}

func availEqual(a, b AvailState) bool {
	for i := range a.regs {
		if a.regs[i] != b.regs[i] {
			return false
		}
	}
	return true
}

// foldConst applies RV32I's non-trapping arithmetic semantics to two known
// immediates. Division/remainder by zero follow RISC-V's defined
// (non-trapping) results rather than collapsing to Top, so the
// available-value lattice keeps propagating a concrete value through a
// divu-by-zero instead of losing all precision.
func foldConst(op string, a, b int32) (int32, bool) {
	switch op {
	case "add":
		return a + b, true
	case "sub":
		return a - b, true
	case "and":
		return a & b, true
	case "or":
		return a | b, true
	case "xor":
		return a ^ b, true
	case "sll":
		return a << uint32(b&31), true
	case "srl":
		return int32(uint32(a) >> uint32(b&31)), true
	case "sra":
		return a >> uint32(b&31), true
	case "slt":
		if a < b {
			return 1, true
		}
		return 0, true
	case "sltu":
		if uint32(a) < uint32(b) {
			return 1, true
		}
		return 0, true
	case "mul":
		return a * b, true
	case "div":
		if b == 0 {
			return -1, true
		}
		if a == -2147483648 && b == -1 {
			return a, true
		}
		return a / b, true
	case "divu":
		if b == 0 {
			return -1, true // 2^32-1 as int32
		}
		return int32(uint32(a) / uint32(b)), true
	case "rem":
		if b == 0 {
			return a, true
		}
		return a % b, true
	case "remu":
		if b == 0 {
			return a, true
		}
		return int32(uint32(a) % uint32(b)), true
	default:
		return 0, false
	}
}

var mathOps = map[string]bool{
	"add": true, "sub": true, "and": true, "or": true, "xor": true,
	"sll": true, "srl": true, "sra": true, "slt": true, "sltu": true,
	"mul": true, "div": true, "divu": true, "rem": true, "remu": true,
}

var iMathOps = map[string]string{
	"addi": "add", "andi": "and", "ori": "or", "xori": "xor",
	"slti": "slt", "sltiu": "sltu", "slli": "sll", "srli": "srl", "srai": "sra",
}

func availTransfer(n *asm.Node, in AvailState) AvailState {
	out := in
	switch {
	case n.Op == "li":
		out = out.set(regAt(n, 0), imm(immAt(n, 1)))
	case n.Op == "lui" || n.Op == "auipc" || n.Op == "la":
		out = out.set(regAt(n, 0), top())
	case n.Op == "addi" && len(n.Args) == 3 && n.Args[1].IsReg() && n.Args[1].Reg == register.Zero:
		out = out.set(regAt(n, 0), imm(immAt(n, 2)))
	case iMathOps[n.Op] != "" && len(n.Args) == 3:
		rd, rs, k := regAt(n, 0), n.Args[1], immAt(n, 2)
		if rs.IsReg() {
			if v := in.Get(rs.Reg); v.Kind == AbsImm {
				if folded, ok := foldConst(iMathOps[n.Op], v.N, k); ok {
					out = out.set(rd, imm(folded))
					break
				}
			}
		}
		out = out.set(rd, top())
	case mathOps[n.Op] && len(n.Args) == 3:
		rd := regAt(n, 0)
		a, b := n.Args[1], n.Args[2]
		if a.IsReg() && b.IsReg() {
			va, vb := in.Get(a.Reg), in.Get(b.Reg)
			if va.Kind == AbsImm && vb.Kind == AbsImm {
				if folded, ok := foldConst(n.Op, va.N, vb.N); ok {
					out = out.set(rd, imm(folded))
					break
				}
			}
		}
		out = out.set(rd, top())
	case n.Op == "jal" || n.Op == "jalr" || n.Op == "call":
		if asm.IsCall(n) {
			out = clobberCallerSaved(out)
		}
	case n.Op == "ecall":
		out = clobberCallerSaved(out)
	default:
		// Any other def invalidates the destination register's tracked
		// value rather than leaving a stale fact behind.
		for _, r := range annotate.Of(n).Defs.Slice() {
			out = out.set(r, top())
		}
	}
	return out
}

func clobberCallerSaved(s AvailState) AvailState {
	for _, r := range register.CallerSaved().Slice() {
		s = s.set(r, top())
	}
	return s
}

func regAt(n *asm.Node, i int) register.Register {
	if i < len(n.Args) && n.Args[i].IsReg() {
		return n.Args[i].Reg
	}
	return register.Zero
}

func immAt(n *asm.Node, i int) int32 {
	if i < len(n.Args) && n.Args[i].IsImm() {
		return n.Args[i].Imm
	}
	return 0
}

// AvailableValueProblem builds the forward available-value analysis.
func AvailableValueProblem() Problem[AvailState] {
	return Problem[AvailState]{
		Direction: Forward,
		Bottom:    availBottom,
		Meet:      availMeet,
		Equal:     availEqual,
		Transfer:  availTransfer,
	}
}
