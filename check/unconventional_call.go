package check

import (
	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
	"github.com/riscvlint/rva/register"
)

// unconventionalCallCheck flags `jal rd, L` where rd is not ra and not
// zero (zero makes it a plain jump, already excluded upstream in
// annotate/cfg). A call target reached by fall-through instead of by jal
// is the same structural fact the CFG builder already reports as
// UnconventionalEntry (cfg/builder.go's reportUnreachable); it is not
// duplicated here under a second code.
type unconventionalCallCheck struct{}

func (unconventionalCallCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		for _, blockID := range sortedBlockIDs(fn) {
			for _, n := range g.Blocks[blockID].Nodes {
				if n.Op != "jal" {
					continue
				}
				rd, plainJump := asm.ClassifyJal(n)
				if plainJump || rd == register.RA {
					continue
				}
				out = append(out, diagnostic.New(n.Range, diagnostic.CodeUnconventionalCall,
					"call target's return address is saved to "+regName(rd)+" instead of ra").
					WithRegister(regName(rd)))
			}
		}
	}
	return out
}
