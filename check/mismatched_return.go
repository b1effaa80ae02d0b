package check

import (
	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
)

// mismatchedReturnCheck flags a `ret` belonging to no function or to more
// than one. The CFG builder records ownership conflicts in
// Graph.MultiOwned and leaves an orphaned block's Func at cfg.NoFunc, so
// this checker only has to query that state rather than re-derive it.
type mismatchedReturnCheck struct{}

func (mismatchedReturnCheck) Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	for _, blockID := range allBlockIDsSorted(g) {
		block := g.Blocks[blockID]
		if len(block.Nodes) == 0 {
			continue
		}
		last := block.Exit()
		if !asm.IsReturn(last.Op) {
			continue
		}
		switch {
		case g.MultiOwned[blockID]:
			out = append(out, diagnostic.New(last.Range, diagnostic.CodeMismatchedReturn,
				"this return is reachable from more than one function"))
		case block.Func == cfg.NoFunc:
			out = append(out, diagnostic.New(last.Range, diagnostic.CodeMismatchedReturn,
				"this return belongs to no reconstructed function"))
		}
	}
	return out
}

func allBlockIDsSorted(g *cfg.Graph) []cfg.BlockID {
	ids := make([]cfg.BlockID, 0, len(g.Blocks))
	for id := range g.Blocks {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
