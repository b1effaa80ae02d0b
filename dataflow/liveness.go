package dataflow

import (
	"github.com/riscvlint/rva/annotate"
	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/register"
)

// LivenessProblem builds the backward, union-meet liveness analysis:
// live-in(n) = (live-out(n) \ defs(n)) ∪ uses(n), folded backward across a
// block. exitBoundary seeds OUT[FuncExit] with the function's
// return-register set — {a0,a1} on the bootstrap pass before the argument/
// return inference fixed point has computed a real one.
func LivenessProblem(fn *cfg.Function, exitBoundary register.Set) Problem[register.Set] {
	return Problem[register.Set]{
		Direction: Backward,
		Bottom:    func() register.Set { return register.Set(0) },
		Meet:      func(a, b register.Set) register.Set { return a.Union(b) },
		Equal:     func(a, b register.Set) bool { return a.Equal(b) },
		Transfer: func(n *asm.Node, out register.Set) register.Set {
			info := annotate.Of(n)
			return out.Diff(info.Defs).Union(info.Uses)
		},
		Boundary: map[cfg.BlockID]register.Set{
			fn.ExitBlock: exitBoundary,
		},
	}
}
