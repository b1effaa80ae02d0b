package check

import (
	"github.com/riscvlint/rva/annotate"
	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/dataflow"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
	"github.com/riscvlint/rva/register"
)

// calleeSavedAcrossCallCheck flags a caller-saved register (t*/a*/ra) that
// is live both before and after a call site, meaning the caller is relying
// on a value a callee is free to clobber without having saved it.
//
// This needs a liveness view distinct from dataflow's LivenessProblem: that
// analysis models every call as clobbering all of CallerSaved() so that
// DeadValueCheck and UseBeforeDefCheck stay sound, which makes a call's own
// IN set always disjoint from CallerSaved() by construction. Detecting
// "still needed across the call" instead requires computing IN at the call
// node as if the call preserved the register, which is exactly what a
// would-be missing save is supposed to guarantee.
type calleeSavedAcrossCallCheck struct{}

func (calleeSavedAcrossCallCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic

	transfer := func(n *asm.Node, liveOut register.Set) register.Set {
		info := annotate.Of(n)
		defs := info.Defs
		if asm.IsCall(n) {
			defs = defs.Diff(register.CallerSaved())
		}
		return liveOut.Diff(defs).Union(info.Uses)
	}
	noClobberProb := dataflow.Problem[register.Set]{Transfer: transfer}

	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		result, ok := outcome.Liveness[fn.ID]
		if !ok {
			continue
		}

		for _, blockID := range sortedBlockIDs(fn) {
			block := g.Blocks[blockID]
			ins, outs := dataflow.PerNodeBackward(noClobberProb, block.Nodes, result.Out[blockID])

			for i, n := range block.Nodes {
				if !asm.IsCall(n) {
					continue
				}
				// a0/a1 double as the return-value convention, so a live
				// value there after a call is ordinarily the callee's
				// result, not a surviving pre-call value; excluding them
				// keeps this check aimed at scratch registers a caller
				// actually expected to preserve across the call itself.
				survivingButClobbered := register.CallerSaved().Diff(register.ReturnCandidates()).
					Intersect(ins[i]).Intersect(outs[i])
				for _, r := range survivingButClobbered.Slice() {
					out = append(out, diagnostic.New(n.Range, diagnostic.CodeCalleeSavedAcrossCall,
						regName(r)+" is live across this call but is caller-saved; the callee may clobber it").
						WithRegister(regName(r)))
				}
			}
		}
	}
	return out
}
