// Package cfg builds the basic-block control-flow graph and reconstructs
// function boundaries from the textual label/call structure. Blocks are
// keyed by a stable BlockID rather than an address, since RV32I source has
// no fixed-width address to key on until after assembly, which this
// analyzer never performs.
package cfg

import (
	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/register"
)

// BlockID stably identifies a basic block.
type BlockID int

// FuncID stably identifies a reconstructed function.
type FuncID int

// NoFunc is the owning-function id of a block that belongs to no function
// (data, unreachable, or not-yet-assigned).
const NoFunc FuncID = -1

// Block is a non-empty contiguous node sequence with a single entry (first
// node) and single exit (last node).
type Block struct {
	ID    BlockID
	Nodes []*asm.Node

	Preds map[BlockID]bool
	Succs map[BlockID]bool

	Func FuncID
}

func newBlock(id BlockID) *Block {
	return &Block{ID: id, Preds: map[BlockID]bool{}, Succs: map[BlockID]bool{}, Func: NoFunc}
}

// Entry returns the block's first node.
func (b *Block) Entry() *asm.Node { return b.Nodes[0] }

// Exit returns the block's last node.
func (b *Block) Exit() *asm.Node { return b.Nodes[len(b.Nodes)-1] }

// IsSynthetic reports whether b is a FuncExit block with no source node.
func (b *Block) IsSynthetic() bool { return len(b.Nodes) == 1 && b.Nodes[0].Range.File == "" }

// Function is an entry block, its synthetic unified exit, the set of
// blocks it owns, and its inferred argument/return register sets.
type Function struct {
	ID    FuncID
	Name  string
	Entry BlockID

	// ExitBlock is the synthetic unified-exit block every `ret` in the
	// function is redirected into.
	ExitBlock BlockID

	Blocks map[BlockID]bool

	Args register.Set
	Ret  register.Set
}

// CallEdge records one interprocedural call site.
type CallEdge struct {
	CallerBlock BlockID
	Callee      FuncID
	ReturnBlock BlockID
	Site        *asm.Node
}

// Graph is the CFG builder's output: nodes, blocks, functions, the
// label->block entry map, and the call-edge table.
type Graph struct {
	Nodes     []*asm.Node
	Blocks    map[BlockID]*Block
	Functions map[FuncID]*Function
	EntryMap  map[string]BlockID
	CallEdges []CallEdge

	// MultiOwned marks blocks reached by more than one function's forward
	// reachability walk, for checkers (e.g. MismatchedReturn) to consult
	// without re-deriving the conflict.
	MultiOwned map[BlockID]bool

	Diagnostics []*diagnostic.Diagnostic

	nextBlock BlockID
	nextFunc  FuncID
}

func newGraph() *Graph {
	return &Graph{
		Blocks:     map[BlockID]*Block{},
		Functions:  map[FuncID]*Function{},
		EntryMap:   map[string]BlockID{},
		MultiOwned: map[BlockID]bool{},
	}
}

func (g *Graph) addBlock() *Block {
	b := newBlock(g.nextBlock)
	g.Blocks[b.ID] = b
	g.nextBlock++
	return b
}

func (g *Graph) addFunc(name string, entry BlockID) *Function {
	f := &Function{ID: g.nextFunc, Name: name, Entry: entry, Blocks: map[BlockID]bool{}}
	g.Functions[f.ID] = f
	g.nextFunc++
	return f
}

func (g *Graph) link(from, to BlockID) {
	g.Blocks[from].Succs[to] = true
	g.Blocks[to].Preds[from] = true
}

// FunctionOf returns the function owning block id, or nil.
func (g *Graph) FunctionOf(id BlockID) *Function {
	b, ok := g.Blocks[id]
	if !ok || b.Func == NoFunc {
		return nil
	}
	return g.Functions[b.Func]
}

func (g *Graph) diag(d *diagnostic.Diagnostic) { g.Diagnostics = append(g.Diagnostics, d) }
