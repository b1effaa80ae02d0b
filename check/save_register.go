package check

import (
	"fmt"

	"github.com/riscvlint/rva/annotate"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/dataflow"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
	"github.com/riscvlint/rva/register"
)

// saveRegisterCheck flags a def of a callee-saved register (s0-s11; sp is
// excluded here and covered separately by unbalancedStackCheck) that
// happens with no live stack slot preserving that register's value on the
// path reaching it. A register is exempt only once it has actually been
// pushed to the stack: a later def reached after that push is a legitimate
// overwrite of a value the caller already has a copy of, but a def reached
// before any push clobbers the caller's value outright.
type saveRegisterCheck struct{}

func (saveRegisterCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	stackProb := dataflow.StackSlotProblem()

	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		result, ok := outcome.Stack[fn.ID]
		if !ok {
			continue
		}

		for _, blockID := range sortedBlockIDs(fn) {
			block := g.Blocks[blockID]
			ins, _ := dataflow.PerNodeForward(stackProb, block.Nodes, result.In[blockID])

			for i, n := range block.Nodes {
				for _, r := range annotate.Of(n).Defs.Intersect(register.Saved()).Slice() {
					if ins[i].SavedBy(r) {
						continue
					}
					out = append(out, diagnostic.New(n.Range, diagnostic.CodeSaveRegister,
						fmt.Sprintf("%s is callee-saved but is written here before any save to the stack in %s", regName(r), fnLabel(fn))).
						WithRegister(regName(r)))
				}
			}
		}
	}
	return out
}
