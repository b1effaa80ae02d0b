package check

import (
	"fmt"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
)

// unbalancedStackCheck flags a `ret` reached with sp's offset (relative to
// function entry) not back at zero.
type unbalancedStackCheck struct{}

func (unbalancedStackCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		result, ok := outcome.Stack[fn.ID]
		if !ok {
			continue
		}
		for _, blockID := range sortedBlockIDs(fn) {
			block := g.Blocks[blockID]
			if len(block.Nodes) == 0 || !asm.IsReturn(block.Exit().Op) {
				continue
			}
			state, ok := result.Out[blockID]
			if !ok || !state.Known {
				continue
			}
			if state.Offset != 0 {
				out = append(out, diagnostic.New(block.Exit().Range, diagnostic.CodeUnbalancedStack,
					fmt.Sprintf("%s returns with sp offset by %+d bytes relative to entry", fnLabel(fn), state.Offset)))
			}
		}
	}
	return out
}
