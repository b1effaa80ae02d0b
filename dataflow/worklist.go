// Package dataflow implements a generic worklist fixed-point solver,
// parameterized by direction, meet, and per-node transfer, plus the three
// analyses instantiated from it (liveness, available-value, stack-slot
// ownership). Blocks are processed off a FIFO queue with a membership set
// so that a block already pending is never enqueued twice, keeping
// convergence order stable across runs.
package dataflow

import (
	"fmt"
	"sort"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/cfg"
)

// Direction selects whether IN is derived from predecessors (Forward) or
// OUT is derived from successors (Backward).
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Problem bundles a dataflow analysis's domain-specific behavior: the
// bottom element, meet operator, per-node transfer function, and
// direction. D is the lattice element type.
type Problem[D any] struct {
	Direction Direction
	Bottom    func() D
	Meet      func(a, b D) D
	Equal     func(a, b D) bool

	// Transfer applies one node's effect. For Forward it maps IN to the
	// value after the node; for Backward it maps OUT to the value before
	// the node. Nodes are folded across a block in program order
	// (Forward) or reverse order (Backward).
	Transfer func(n *asm.Node, face D) D

	// Boundary pins a fixed face value for specific blocks instead of
	// computing it from neighbors — e.g. liveness seeds
	// OUT[FuncExit] = returnRegs(f) rather than the meet of zero successors.
	Boundary map[cfg.BlockID]D
}

// Result holds the converged IN/OUT maps for every block in the function.
type Result[D any] struct {
	In  map[cfg.BlockID]D
	Out map[cfg.BlockID]D
}

// NonConvergenceError is returned when a fixed point is not reached within
// the safety cap.
type NonConvergenceError struct {
	FuncName string
	Cap      int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("dataflow analysis for %q did not converge within %d iterations", e.FuncName, e.Cap)
}

// Solve runs Problem p over every block owned by fn, restricted to g, until
// a fixed point. The safety cap is 10x the block count.
func Solve[D any](g *cfg.Graph, fn *cfg.Function, p Problem[D]) (*Result[D], error) {
	blocks := sortedBlocks(fn)
	in := make(map[cfg.BlockID]D, len(blocks))
	out := make(map[cfg.BlockID]D, len(blocks))
	for _, id := range blocks {
		in[id] = p.Bottom()
		out[id] = p.Bottom()
	}

	queue := make([]cfg.BlockID, len(blocks))
	copy(queue, blocks)
	queued := make(map[cfg.BlockID]bool, len(blocks))
	for _, id := range blocks {
		queued[id] = true
	}

	iterCap := 10 * len(blocks)
	if iterCap == 0 {
		iterCap = 10
	}
	iterations := 0

	for len(queue) > 0 {
		iterations++
		if iterations > iterCap {
			return nil, &NonConvergenceError{FuncName: fn.Name, Cap: iterCap}
		}

		id := queue[0]
		queue = queue[1:]
		queued[id] = false
		b := g.Blocks[id]

		if p.Direction == Forward {
			newIn := p.faceOrBoundary(id, in[id], func() D {
				return meetOverNeighbors(p, mapNeighbors(b.Preds, fn, out))
			})
			newOut := foldForward(p, b.Nodes, newIn)
			if !p.Equal(newOut, out[id]) || !p.Equal(newIn, in[id]) {
				in[id] = newIn
				out[id] = newOut
				enqueueSet(b.Succs, fn, queued, &queue)
			}
		} else {
			newOut := p.faceOrBoundary(id, out[id], func() D {
				return meetOverNeighbors(p, mapNeighbors(b.Succs, fn, in))
			})
			newIn := foldBackward(p, b.Nodes, newOut)
			if !p.Equal(newIn, in[id]) || !p.Equal(newOut, out[id]) {
				in[id] = newIn
				out[id] = newOut
				enqueueSet(b.Preds, fn, queued, &queue)
			}
		}
	}

	return &Result[D]{In: in, Out: out}, nil
}

func (p Problem[D]) faceOrBoundary(id cfg.BlockID, current D, compute func() D) D {
	if p.Boundary != nil {
		if v, ok := p.Boundary[id]; ok {
			return v
		}
	}
	return compute()
}

func mapNeighbors[D any](set map[cfg.BlockID]bool, fn *cfg.Function, values map[cfg.BlockID]D) []D {
	ids := make([]cfg.BlockID, 0, len(set))
	for id := range set {
		if fn.Blocks[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]D, len(ids))
	for i, id := range ids {
		out[i] = values[id]
	}
	return out
}

func meetOverNeighbors[D any](p Problem[D], values []D) D {
	acc := p.Bottom()
	for _, v := range values {
		acc = p.Meet(acc, v)
	}
	return acc
}

func foldForward[D any](p Problem[D], nodes []*asm.Node, in D) D {
	cur := in
	for _, n := range nodes {
		cur = p.Transfer(n, cur)
	}
	return cur
}

func foldBackward[D any](p Problem[D], nodes []*asm.Node, out D) D {
	cur := out
	for i := len(nodes) - 1; i >= 0; i-- {
		cur = p.Transfer(nodes[i], cur)
	}
	return cur
}

func enqueueSet(set map[cfg.BlockID]bool, fn *cfg.Function, queued map[cfg.BlockID]bool, out *[]cfg.BlockID) {
	ids := make([]cfg.BlockID, 0, len(set))
	for id := range set {
		if fn.Blocks[id] && !queued[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		queued[id] = true
		*out = append(*out, id)
	}
}

func sortedBlocks(fn *cfg.Function) []cfg.BlockID {
	ids := make([]cfg.BlockID, 0, len(fn.Blocks))
	for id := range fn.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
