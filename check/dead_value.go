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

// deadValueCheck flags a def whose register is not live immediately after
// the defining node. Defs into zero are exempted from the dead-value rule
// itself (writing to x0 always discards the value by definition) but are
// instead reported under a distinct sub-message for a degenerate store.
// Defs that set up the stack frame (`addi sp,sp,k`) are exempted since
// sp's liveness is tracked by unbalancedStackCheck instead. Calls and
// ecall/ebreak are not checked: their defs are clobbers, not values the
// function itself wrote.
type deadValueCheck struct{}

func (deadValueCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic

	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		result, ok := outcome.Liveness[fn.ID]
		if !ok {
			continue
		}
		liveProb := dataflow.LivenessProblem(fn, fn.Ret)
		for _, blockID := range sortedBlockIDs(fn) {
			block := g.Blocks[blockID]
			_, outs := dataflow.PerNodeBackward(liveProb, block.Nodes, result.Out[blockID])

			for i, n := range block.Nodes {
				if n.Op == "addi" && len(n.Args) == 3 && n.Args[0].IsReg() && n.Args[0].Reg == register.SP {
					continue
				}
				if asm.IsCall(n) || asm.IsEcall(n.Op) || asm.IsEbreak(n.Op) {
					continue
				}
				for _, r := range annotate.Of(n).Defs.Slice() {
					if r == register.Zero {
						out = append(out, diagnostic.New(n.Range, diagnostic.CodeDeadValue,
							"write to x0 discards its value; likely an unintended destination register").
							WithRegister(regName(r)))
						continue
					}
					if !outs[i].Contains(r) {
						out = append(out, diagnostic.New(n.Range, diagnostic.CodeDeadValue,
							regName(r)+" is defined here but never used before its next definition or the function's exit").
							WithRegister(regName(r)))
					}
				}
			}
		}
	}
	return out
}
