// Package check implements the eight register/calling-convention
// checkers, each a pass over the CFG plus the converged dataflow lattices
// that emits diagnostics.
package check

import (
	"fmt"

	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
	"github.com/riscvlint/rva/register"
)

// Checker is one register/calling-convention pass. Each implementation
// owns exactly one diagnostic.Code.
type Checker interface {
	Check(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic
}

// All returns every checker.
func All() []Checker {
	return []Checker{
		saveRegisterCheck{},
		deadValueCheck{},
		useBeforeDefCheck{},
		calleeSavedAcrossCallCheck{},
		unconventionalCallCheck{},
		mismatchedReturnCheck{},
		unbalancedStackCheck{},
		invalidArgCheck{},
	}
}

// Run executes every checker over g and returns the combined, not-yet-sunk
// diagnostic list.
func Run(g *cfg.Graph, outcome *infer.Outcome) []*diagnostic.Diagnostic {
	var out []*diagnostic.Diagnostic
	for _, c := range All() {
		out = append(out, c.Check(g, outcome)...)
	}
	return out
}

// sortedFuncIDs returns g's function ids in ascending order, for
// deterministic diagnostic emission order.
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

// sortedBlockIDs returns fn's block ids in ascending order.
func sortedBlockIDs(fn *cfg.Function) []cfg.BlockID {
	ids := make([]cfg.BlockID, 0, len(fn.Blocks))
	for id := range fn.Blocks {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// fixedRegisters are always expected to be live regardless of a function's
// inferred argument set: sp/ra/gp/tp are ABI-pinned, not parameters.
func fixedRegisters() register.Set {
	return register.NewSet(register.SP, register.RA, register.GP, register.TP)
}

func regName(r register.Register) string { return r.String() }

func fnLabel(fn *cfg.Function) string {
	if fn.Name == "" {
		return fmt.Sprintf("function@block%d", fn.Entry)
	}
	return fn.Name
}
