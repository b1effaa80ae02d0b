package asm

import "github.com/riscvlint/rva/register"

// TermKind classifies how control leaves a block at its final node, for
// the CFG builder's edge-insertion step.
type TermKind int

const (
	TermNone   TermKind = iota // falls through to the next node
	TermJump                   // unconditional jump: successor is the target only
	TermBranch                 // conditional branch: successor is target + fall-through
	TermCall                   // jal rd,L with rd != zero: successor is fall-through; target recorded as a call edge
	TermReturn                 // ret / jalr x0,0(ra): no intra-procedural successor
	TermTrap                   // ecall/ebreak: falls through unless the next block is a call target
)

// instrInfo is the static per-opcode table the Annotator and CFG builder
// both consult to classify a mnemonic without re-deriving its terminator
// shape at every call site.
type instrInfo struct {
	Term TermKind
}

var isaTable = map[string]instrInfo{
	// unconditional jump
	"j":   {Term: TermJump},
	"jal": {Term: TermNone}, // classified dynamically: call vs plain jump, see ClassifyJal

	// conditional branches
	"beq": {Term: TermBranch}, "bne": {Term: TermBranch},
	"blt": {Term: TermBranch}, "bge": {Term: TermBranch},
	"bltu": {Term: TermBranch}, "bgeu": {Term: TermBranch},
	"beqz": {Term: TermBranch}, "bnez": {Term: TermBranch},
	"bltz": {Term: TermBranch}, "bgez": {Term: TermBranch},
	"blez": {Term: TermBranch}, "bgtz": {Term: TermBranch},

	// indirect jump / return
	"jalr": {Term: TermNone}, // classified dynamically, see ClassifyJalr
	"ret":  {Term: TermReturn},

	// system
	"ecall":  {Term: TermTrap},
	"ebreak": {Term: TermTrap},

	// pseudo call/tail — the parser keeps these mnemonics rather than
	// rewriting them to jal/jalr, so the CFG builder and checkers
	// pattern-match on them directly.
	"call": {Term: TermCall},
	"tail": {Term: TermJump},
}

// IsTerminator reports whether op always ends a basic block.
func IsTerminator(op string) bool {
	if op == "jal" || op == "jalr" {
		return true
	}
	_, ok := isaTable[op]
	return ok
}

// IsBranch reports whether op is a conditional branch (fall-through +
// target successors).
func IsBranch(op string) bool {
	return isaTable[op].Term == TermBranch
}

// IsUnconditionalJump reports whether op is a plain jump (target-only
// successor, no call edge).
func IsUnconditionalJump(op string) bool {
	return op == "j" || op == "tail"
}

// IsReturn reports whether op terminates a function without an
// intra-procedural successor by itself (ret, or jalr x0, 0(ra) — the
// latter is recognized by ClassifyJalr).
func IsReturn(op string) bool {
	return op == "ret"
}

// IsEcall/IsEbreak report the system-call terminators.
func IsEcall(op string) bool  { return op == "ecall" }
func IsEbreak(op string) bool { return op == "ebreak" }

// ClassifyJal determines whether a `jal rd, L` node is a conventional call
// (rd == ra), an unconventional call (rd != ra, not zero — flagged by
// UnconventionalCall), or a plain unconditional jump (rd == zero, the
// encoding of a `j`, which the parser itself keeps as `j`). rd is the
// node's first operand by RV32I encoding order.
func ClassifyJal(n *Node) (rd register.Register, isPlainJump bool) {
	if len(n.Args) == 0 || !n.Args[0].IsReg() {
		return register.RA, false
	}
	rd = n.Args[0].Reg
	return rd, rd == register.Zero
}

// ClassifyJalr determines whether a `jalr rd, offset(rs)` node is a return
// (rd == zero, rs == ra, offset == 0) or a generic indirect call/jump.
func ClassifyJalr(n *Node) (rd register.Register, isReturn bool) {
	if len(n.Args) == 0 || !n.Args[0].IsReg() {
		return register.Zero, false
	}
	rd = n.Args[0].Reg
	if len(n.Args) < 2 || !n.Args[1].IsMem() {
		return rd, false
	}
	mem := n.Args[1]
	return rd, rd == register.Zero && mem.Reg == register.RA && mem.Imm == 0
}

// IsCall reports whether n transfers control to a callee and is expected
// to return (jal with any rd != zero, jalr with any rd != zero, or the
// `call` pseudo-op).
func IsCall(n *Node) bool {
	switch n.Op {
	case "call":
		return true
	case "jal":
		rd, plainJump := ClassifyJal(n)
		return !plainJump && rd != register.Zero || (len(n.Args) > 0 && rd != register.Zero)
	case "jalr":
		rd, isReturn := ClassifyJalr(n)
		return !isReturn && rd != register.Zero
	}
	return false
}

// CallTarget returns the label a call/jump/branch node targets, if any.
func CallTarget(n *Node) (string, bool) {
	for _, a := range n.Args {
		if a.IsLabel() {
			return a.Label, true
		}
	}
	return "", false
}
