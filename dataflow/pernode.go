package dataflow

import "github.com/riscvlint/rva/asm"

// PerNodeForward folds a forward Problem's Transfer across nodes starting
// from blockIn, returning the IN/OUT value at each node position. Checkers
// need this because Result only carries block-granularity IN/OUT, but a
// diagnostic's trigger (e.g. a use whose available-value is still Unknown)
// is a property of one instruction inside the block.
func PerNodeForward[D any](p Problem[D], nodes []*asm.Node, blockIn D) (ins, outs []D) {
	ins = make([]D, len(nodes))
	outs = make([]D, len(nodes))
	cur := blockIn
	for i, n := range nodes {
		ins[i] = cur
		cur = p.Transfer(n, cur)
		outs[i] = cur
	}
	return ins, outs
}

// PerNodeBackward is PerNodeForward's mirror for a Backward Problem, folding
// from blockOut back to the front of the block.
func PerNodeBackward[D any](p Problem[D], nodes []*asm.Node, blockOut D) (ins, outs []D) {
	ins = make([]D, len(nodes))
	outs = make([]D, len(nodes))
	cur := blockOut
	for i := len(nodes) - 1; i >= 0; i-- {
		outs[i] = cur
		cur = p.Transfer(nodes[i], cur)
		ins[i] = cur
	}
	return ins, outs
}
