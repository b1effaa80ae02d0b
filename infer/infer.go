// Package infer runs the two-phase argument/return register fixed point:
// return-register accumulation across call sites (Phase R), then
// argument-register intersection at each function's entry (Phase A),
// re-running liveness across functions until every Function.Args/
// Function.Ret stabilizes, capped at 10 outer iterations. Argument/return
// sets can depend on each other across a call chain, so a single feedback
// pass isn't enough — this needs the bounded fixed point.
package infer

import (
	"fmt"

	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/dataflow"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/register"
)

// MaxOuterIterations bounds the Phase R/Phase A fixed point: monotone
// growth over at most 8 argument and 2 return registers converges well
// within 10 outer iterations.
const MaxOuterIterations = 10

// bootstrapReturn seeds liveness's OUT[FuncExit] boundary before any
// function's real return set is known.
func bootstrapReturn() register.Set { return register.NewSet(register.A0, register.A1) }

// Outcome bundles the converged per-function liveness, available-value and
// stack-slot results, so checkers never need to re-run the dataflow engine.
type Outcome struct {
	Liveness   map[cfg.FuncID]*dataflow.Result[register.Set]
	Avail      map[cfg.FuncID]*dataflow.Result[dataflow.AvailState]
	Stack      map[cfg.FuncID]*dataflow.Result[dataflow.StackState]
	Iterations int
}

// Run computes Args/Ret for every function in g (mutating cfg.Function in
// place) and returns the converged lattices plus any E_INTERNAL diagnostics
// from dataflow non-convergence.
func Run(g *cfg.Graph) (*Outcome, []*diagnostic.Diagnostic) {
	funcIDs := sortedFuncIDs(g)

	var diags []*diagnostic.Diagnostic
	avail := map[cfg.FuncID]*dataflow.Result[dataflow.AvailState]{}
	stack := map[cfg.FuncID]*dataflow.Result[dataflow.StackState]{}
	for _, id := range funcIDs {
		fn := g.Functions[id]
		if r, err := dataflow.Solve(g, fn, dataflow.AvailableValueProblem()); err != nil {
			diags = append(diags, internalDiag(g, fn, err, "available-value"))
		} else {
			avail[id] = r
		}
		if r, err := dataflow.Solve(g, fn, dataflow.StackSlotProblem()); err != nil {
			diags = append(diags, internalDiag(g, fn, err, "stack-slot"))
		} else {
			stack[id] = r
		}
	}

	liveness := map[cfg.FuncID]*dataflow.Result[register.Set]{}
	iterations := 0
	for iter := 0; iter < MaxOuterIterations; iter++ {
		iterations = iter + 1
		liveness = map[cfg.FuncID]*dataflow.Result[register.Set]{}
		var liveErrs []*diagnostic.Diagnostic

		for _, id := range funcIDs {
			fn := g.Functions[id]
			boundary := fn.Ret
			if iter == 0 {
				boundary = bootstrapReturn()
			}
			r, err := dataflow.Solve(g, fn, dataflow.LivenessProblem(fn, boundary))
			if err != nil {
				liveErrs = append(liveErrs, internalDiag(g, fn, err, "liveness"))
				continue
			}
			liveness[id] = r
		}

		changed := applyPhaseRA(g, funcIDs, liveness)

		if len(liveErrs) == 0 {
			diags = pruneInternal(diags)
		} else {
			diags = append(pruneInternal(diags), liveErrs...)
		}

		if !changed && iter > 0 {
			break
		}
	}

	return &Outcome{Liveness: liveness, Avail: avail, Stack: stack, Iterations: iterations}, diags
}

// applyPhaseRA runs one round of Phase R (return-register accumulation
// across call sites) and Phase A (argument-register intersection at entry)
// and reports whether any function's Args/Ret changed.
func applyPhaseRA(g *cfg.Graph, funcIDs []cfg.FuncID, liveness map[cfg.FuncID]*dataflow.Result[register.Set]) bool {
	newRet := map[cfg.FuncID]register.Set{}
	for _, id := range funcIDs {
		newRet[id] = g.Functions[id].Ret
	}
	for _, edge := range g.CallEdges {
		callerFn := g.FunctionOf(edge.ReturnBlock)
		if callerFn == nil {
			continue
		}
		callerResult, ok := liveness[callerFn.ID]
		if !ok {
			continue
		}
		liveAtReturn := callerResult.In[edge.ReturnBlock]
		newRet[edge.Callee] = newRet[edge.Callee].Union(liveAtReturn.Intersect(register.ReturnCandidates()))
	}

	changed := false
	for _, id := range funcIDs {
		fn := g.Functions[id]
		if newRet[id] != fn.Ret {
			fn.Ret = newRet[id]
			changed = true
		}

		var entryIn register.Set
		if r, ok := liveness[id]; ok {
			entryIn = r.In[fn.Entry]
		}
		newArgs := entryIn.Intersect(register.Arguments())
		if fn.Name == "main" {
			// main is the program entry, which is passed no arguments.
			newArgs = 0
		}
		if newArgs != fn.Args {
			fn.Args = newArgs
			changed = true
		}
	}
	return changed
}

// EntryLiveIn returns the full (not just a0-a7) live-in set at fn's entry,
// for InvalidArg's "non-a* live register" check.
func (o *Outcome) EntryLiveIn(fn *cfg.Function) register.Set {
	r, ok := o.Liveness[fn.ID]
	if !ok {
		return 0
	}
	return r.In[fn.Entry]
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

// pruneInternal drops any previously-recorded liveness non-convergence
// diagnostic so a function that converges on a later outer iteration
// doesn't keep a stale E_INTERNAL finding from an earlier one.
func pruneInternal(diags []*diagnostic.Diagnostic) []*diagnostic.Diagnostic {
	out := diags[:0]
	for _, d := range diags {
		if d.Code != diagnostic.CodeInternal || d.Register != "liveness" {
			out = append(out, d)
		}
	}
	return out
}

func internalDiag(g *cfg.Graph, fn *cfg.Function, err error, tag string) *diagnostic.Diagnostic {
	rng := g.Blocks[fn.Entry].Entry().Range
	return diagnostic.New(rng, diagnostic.CodeInternal, fmt.Sprintf("function %q: %v", fn.Name, err)).WithRegister(tag)
}
