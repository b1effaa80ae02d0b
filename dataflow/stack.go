package dataflow

import (
	"sort"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/register"
)

// StackState tracks sp's offset relative to the function's entry sp (0 at
// entry) plus which register most recently wrote each currently-live
// stack slot. Offsets are absolute (relative to function entry), not
// relative to the current sp, so a slot written before a later
// `addi sp,sp,k` stays identifiable.
type StackState struct {
	// Known is false until the first def of sp is seen along a path,
	// acting as this domain's Bottom/identity element for Meet.
	Known  bool
	Offset int32
	Slots  map[int32]register.Register
}

func stackBottom() StackState {
	return StackState{Slots: map[int32]register.Register{}}
}

func stackMeet(a, b StackState) StackState {
	if !a.Known {
		return b
	}
	if !b.Known {
		return a
	}
	out := StackState{Known: true, Slots: map[int32]register.Register{}}
	if a.Offset == b.Offset {
		out.Offset = a.Offset
	} else {
		// Disagreement on sp's offset: the merged state is unknown
		// (Known=false). UnbalancedStack skips unknown states, so this
		// disagreement is not reported at exit.
		out.Known = false
		return out
	}
	for off, r := range a.Slots {
		if r2, ok := b.Slots[off]; ok && r2 == r {
			out.Slots[off] = r
		}
	}
	return out
}

func stackEqual(a, b StackState) bool {
	if a.Known != b.Known {
		return false
	}
	if a.Known && a.Offset != b.Offset {
		return false
	}
	if len(a.Slots) != len(b.Slots) {
		return false
	}
	for off, r := range a.Slots {
		if b.Slots[off] != r {
			return false
		}
	}
	return true
}

func stackTransfer(n *asm.Node, in StackState) StackState {
	out := StackState{Known: in.Known, Offset: in.Offset, Slots: cloneSlots(in.Slots)}

	switch n.Op {
	case "addi":
		if len(n.Args) == 3 && n.Args[0].IsReg() && n.Args[0].Reg == register.SP &&
			n.Args[1].IsReg() && n.Args[1].Reg == register.SP {
			if !out.Known {
				out.Known = true
				out.Offset = 0
			}
			out.Offset += immAt(n, 2)
			dropOutOfFrame(&out)
		}
	case "sw", "sh", "sb":
		if len(n.Args) == 2 && n.Args[0].IsReg() && n.Args[1].IsMem() && n.Args[1].Reg == register.SP && out.Known {
			out.Slots[out.Offset+n.Args[1].Imm] = n.Args[0].Reg
		}
	}
	return out
}

// dropOutOfFrame removes slots that fall outside the currently allocated
// frame ([Offset, 0)) after sp moves, so a slot freed by an epilogue isn't
// mistaken for a still-live save by SaveRegisterCheck.
func dropOutOfFrame(s *StackState) {
	if s.Offset >= 0 {
		for off := range s.Slots {
			delete(s.Slots, off)
		}
		return
	}
	for off := range s.Slots {
		if off < s.Offset || off >= 0 {
			delete(s.Slots, off)
		}
	}
}

func cloneSlots(m map[int32]register.Register) map[int32]register.Register {
	out := make(map[int32]register.Register, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StackSlotProblem builds the forward stack-slot ownership analysis.
func StackSlotProblem() Problem[StackState] {
	return Problem[StackState]{
		Direction: Forward,
		Bottom:    stackBottom,
		Meet:      stackMeet,
		Equal:     stackEqual,
		Transfer:  stackTransfer,
	}
}

// SavedBy reports whether register r has a live save slot in s, i.e. there
// is an offset whose most recent writer is r.
func (s StackState) SavedBy(r register.Register) bool {
	for _, saved := range s.Slots {
		if saved == r {
			return true
		}
	}
	return false
}

// Offsets returns the live slot offsets in ascending order, for
// deterministic iteration in checkers/tests.
func (s StackState) Offsets() []int32 {
	out := make([]int32, 0, len(s.Slots))
	for off := range s.Slots {
		out = append(out, off)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
