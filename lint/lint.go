// Package lint orchestrates the full pipeline — parse, CFG build,
// argument/return inference, checkers, sink — into a single best-effort
// entry point: one call that runs every sub-analysis and returns a flat
// diagnostic list, never stopping the whole run because one stage found
// something to report.
package lint

import (
	"fmt"
	"io"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/asmparser/riscv"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/check"
	"github.com/riscvlint/rva/config"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
	"github.com/riscvlint/rva/register"
	"github.com/riscvlint/rva/source"
)

// Summary is per-function auxiliary metadata reported alongside the
// diagnostic list: entry location, inferred argument/return sets, and
// whether the stack is balanced at every return.
type Summary struct {
	Function      string
	Entry         source.Range
	Args          register.Set
	Ret           register.Set
	StackBalanced bool
}

// Result is Lint's output: the sunk diagnostic list plus a Summary per
// reconstructed function, in entry-block order.
type Result struct {
	Diagnostics []*diagnostic.Diagnostic
	Summaries   []Summary
}

// Lint runs the full pipeline over r (a single translation unit named
// filename) and never fails the whole unit because one stage reported a
// problem — a parse error, a structural CFG error, and a checker finding
// are all just diagnostics. The returned error is reserved for failures
// outside the diagnostic model (an unreadable reader, for instance).
func Lint(filename string, r io.Reader, conf *config.Config) (*Result, error) {
	if conf == nil {
		conf = config.Default()
	}

	prog, parseDiags, err := riscv.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", filename, err)
	}

	g := cfg.Build(prog)

	outcome, inferDiags := infer.Run(g)

	checkDiags := check.Run(g, outcome)

	all := make([]*diagnostic.Diagnostic, 0, len(parseDiags)+len(g.Diagnostics)+len(inferDiags)+len(checkDiags))
	all = append(all, parseDiags...)
	all = append(all, g.Diagnostics...)
	all = append(all, inferDiags...)
	all = append(all, checkDiags...)

	sunk := diagnostic.Sink(all)
	sunk = conf.Apply(sunk)

	return &Result{Diagnostics: sunk, Summaries: summaries(g, outcome)}, nil
}

func summaries(g *cfg.Graph, outcome *infer.Outcome) []Summary {
	var out []Summary
	for _, id := range sortedFuncIDs(g) {
		fn := g.Functions[id]
		out = append(out, Summary{
			Function:      fn.Name,
			Entry:         g.Blocks[fn.Entry].Entry().Range,
			Args:          fn.Args,
			Ret:           fn.Ret,
			StackBalanced: stackBalanced(g, fn, outcome),
		})
	}
	return out
}

func stackBalanced(g *cfg.Graph, fn *cfg.Function, outcome *infer.Outcome) bool {
	result, ok := outcome.Stack[fn.ID]
	if !ok {
		return true
	}
	for blockID := range fn.Blocks {
		block := g.Blocks[blockID]
		if len(block.Nodes) == 0 || !asm.IsReturn(block.Exit().Op) {
			continue
		}
		if state, ok := result.Out[blockID]; ok && state.Known && state.Offset != 0 {
			return false
		}
	}
	return true
}

func sortedFuncIDs(g *cfg.Graph) []cfg.FuncID {
	ids := make([]cfg.FuncID, 0, len(g.Functions))
	for id := range g.Functions {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
