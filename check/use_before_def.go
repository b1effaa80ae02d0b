package check

import (
	"github.com/riscvlint/rva/annotate"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/dataflow"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
)

// useBeforeDefCheck flags a use of a register whose available-value is
// still Unknown (never assigned on this path) when the register is not a
// parameter and not one of sp/gp/tp. Top in this lattice means "assigned
// conflicting values on different paths" rather than "never assigned" —
// Unknown is the bottom element that actually captures use-before-def, so
// that is what this checker tests against (see DESIGN.md).
type useBeforeDefCheck struct{}

func (useBeforeDefCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	availProb := dataflow.AvailableValueProblem()

	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		result, ok := outcome.Avail[fn.ID]
		if !ok {
			continue
		}
		exempt := fn.Args.Union(fixedRegisters())

		for _, blockID := range sortedBlockIDs(fn) {
			block := g.Blocks[blockID]
			ins, _ := dataflow.PerNodeForward(availProb, block.Nodes, result.In[blockID])

			for i, n := range block.Nodes {
				for _, r := range annotate.Of(n).Uses.Slice() {
					if exempt.Contains(r) {
						continue
					}
					if ins[i].Get(r).Kind == dataflow.AbsUnknown {
						out = append(out, diagnostic.New(n.Range, diagnostic.CodeUseBeforeDef,
							regName(r)+" is used before any value reaches it on this path").
							WithRegister(regName(r)))
					}
				}
			}
		}
	}
	return out
}
