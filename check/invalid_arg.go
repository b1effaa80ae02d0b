package check

import (
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
	"github.com/riscvlint/rva/register"
)

// invalidArgCheck flags a register live at a function's entry that is
// neither an inferred argument (a0-a7) nor one of the ABI-pinned
// sp/ra/gp/tp registers. Such a register can only be live at entry
// because it is read before anything in this function (or the standard
// ABI) defines it.
type invalidArgCheck struct{}

func (invalidArgCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		entryLive := outcome.EntryLiveIn(fn)
		suspect := entryLive.Diff(register.Arguments()).Diff(fixedRegisters())
		if suspect.IsEmpty() {
			continue
		}

		entryBlock := g.Blocks[fn.Entry]
		rng := entryBlock.Entry().Range
		for _, r := range suspect.Slice() {
			out = append(out, diagnostic.New(rng, diagnostic.CodeInvalidArg,
				regName(r)+" is live at "+fnLabel(fn)+"'s entry but is not a standard argument register").
				WithRegister(regName(r)))
		}
	}
	return out
}
