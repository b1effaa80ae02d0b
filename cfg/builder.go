package cfg

import (
	"fmt"
	"sort"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/common/lifo"
	"github.com/riscvlint/rva/diagnostic"
)

// pendingCall is a call edge whose callee is still a label, recorded during
// block construction and resolved once function discovery has run.
type pendingCall struct {
	callerBlock BlockID
	targetLabel string
	returnBlock BlockID
	site        *asm.Node
}

// Build runs the leader-set / block-formation / edge-insertion /
// function-discovery / synthetic-exit / call-edge pipeline over prog and
// returns the resulting Graph. Structural problems are reported as
// diagnostics on Graph.Diagnostics rather than a Go error, so a problem in
// one function never prevents analysis of another.
func Build(prog *asm.Program) *Graph {
	g := newGraph()
	g.Nodes = prog.Nodes
	if len(prog.Nodes) == 0 {
		return g
	}

	blockOf := g.formBlocks(prog.Nodes)
	pending := g.insertEdges(prog.Nodes, blockOf)
	g.discoverFunctions(prog.Nodes, blockOf)
	g.resolveCallEdges(pending)
	g.reportUnreachable(prog.Nodes, blockOf)
	return g
}

// formBlocks partitions nodes into leader-delimited blocks and returns the
// node-index -> owning-BlockID mapping.
func (g *Graph) formBlocks(nodes []*asm.Node) []BlockID {
	n := len(nodes)
	leader := make([]bool, n)
	leader[0] = true
	for i, nd := range nodes {
		if len(nd.Labels) > 0 {
			leader[i] = true
		}
		if i > 0 && asm.IsTerminator(nodes[i-1].Op) {
			leader[i] = true
		}
	}

	blockOf := make([]BlockID, n)
	var cur *Block
	for i, nd := range nodes {
		if leader[i] {
			cur = g.addBlock()
			for _, lbl := range nd.Labels {
				g.EntryMap[lbl] = cur.ID
			}
		}
		cur.Nodes = append(cur.Nodes, nd)
		blockOf[i] = cur.ID
	}
	return blockOf
}

// insertEdges wires intra-procedural successor/predecessor edges per the
// block's final node, and returns the tentative call edges for later
// resolution once function ownership is known.
func (g *Graph) insertEdges(nodes []*asm.Node, blockOf []BlockID) []pendingCall {
	var pending []pendingCall

	callTargets := map[BlockID]bool{}
	for _, n := range nodes {
		if label, ok := asm.CallTarget(n); ok && asm.IsCall(n) {
			if id, ok := g.EntryMap[label]; ok {
				callTargets[id] = true
			}
		}
	}

	blockIDs := sortedBlockIDs(g.Blocks)
	nextOf := make(map[BlockID]BlockID, len(blockIDs))
	for i, id := range blockIDs {
		if i+1 < len(blockIDs) {
			nextOf[id] = blockIDs[i+1]
		}
	}

	for _, id := range blockIDs {
		b := g.Blocks[id]
		last := b.Exit()
		fallthroughID, hasFallthrough := nextOf[id]

		switch {
		case asm.IsBranch(last.Op):
			if target, ok := g.resolveTarget(last); ok {
				g.link(id, target)
			}
			if hasFallthrough {
				g.link(id, fallthroughID)
			}

		case last.Op == "j" || last.Op == "tail":
			if target, ok := g.resolveTarget(last); ok {
				g.link(id, target)
			}

		case last.Op == "jal" && !asm.IsCall(last):
			// jal zero, L: the destination is discarded, so this is a
			// plain unconditional jump rather than a call.
			if target, ok := g.resolveTarget(last); ok {
				g.link(id, target)
			}

		case last.Op == "jal" || last.Op == "call":
			if label, ok := asm.CallTarget(last); ok && hasFallthrough {
				pending = append(pending, pendingCall{callerBlock: id, targetLabel: label, returnBlock: fallthroughID, site: last})
			}
			if hasFallthrough {
				g.link(id, fallthroughID)
			}

		case last.Op == "jalr":
			if _, isReturn := asm.ClassifyJalr(last); isReturn {
				// Redirected to the owning function's synthetic exit once
				// functions are discovered; no intra-procedural successor
				// here.
				break
			}
			if asm.IsCall(last) && hasFallthrough {
				// Indirect call through a register: the target function is
				// unknown statically, so no call edge can be recorded, but
				// control still returns to the fallthrough block.
				g.link(id, fallthroughID)
			}
			// Generic indirect jump: target unknown statically, so no
			// successor can be inferred. Acknowledged limitation.

		case asm.IsReturn(last.Op):
			// No intra-procedural successor; redirected to FuncExit later.

		case asm.IsEcall(last.Op), asm.IsEbreak(last.Op):
			// A trap falls through unless the next block is a call
			// target: that code is another function's body, not a
			// continuation of this one (e.g. an exit syscall at the end
			// of main).
			if hasFallthrough && !callTargets[fallthroughID] {
				g.link(id, fallthroughID)
			}

		default:
			if hasFallthrough {
				g.link(id, fallthroughID)
			}
		}
	}
	return pending
}

func (g *Graph) resolveTarget(n *asm.Node) (BlockID, bool) {
	label, ok := asm.CallTarget(n)
	if !ok {
		return 0, false
	}
	id, ok := g.EntryMap[label]
	if !ok {
		g.diag(diagnostic.New(n.Range, diagnostic.CodeParse, fmt.Sprintf("undefined label %q", label)))
		return 0, false
	}
	return id, true
}

// discoverFunctions seeds a function at every call target (plus `main`,
// or, in a unit without `main`, the first node when it is labeled) and
// assigns every block reachable by forward walk to that function. It also
// builds the synthetic FuncExit block for each function.
func (g *Graph) discoverFunctions(nodes []*asm.Node, blockOf []BlockID) {
	seeds := map[BlockID]string{}
	for _, n := range nodes {
		if !asm.IsCall(n) {
			continue
		}
		label, ok := asm.CallTarget(n)
		if !ok {
			continue
		}
		if id, ok := g.EntryMap[label]; ok {
			seeds[id] = label
		}
	}
	if id, ok := g.EntryMap["main"]; ok {
		seeds[id] = "main"
	} else if _, seeded := seeds[blockOf[0]]; !seeded && len(nodes[0].Labels) > 0 {
		seeds[blockOf[0]] = nodes[0].Labels[0]
	}

	owner := map[BlockID]FuncID{}
	for _, id := range sortedSeedIDs(seeds) {
		fn := g.addFunc(seeds[id], id)
		g.walkFunction(fn, id, owner)
	}

	funcIDs := make([]FuncID, 0, len(g.Functions))
	for id := range g.Functions {
		funcIDs = append(funcIDs, id)
	}
	sort.Slice(funcIDs, func(i, j int) bool { return funcIDs[i] < funcIDs[j] })
	for _, id := range funcIDs {
		g.addSyntheticExit(g.Functions[id])
	}
}

func sortedSeedIDs(m map[BlockID]string) []BlockID {
	ids := make([]BlockID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedBlockIDs(m map[BlockID]*Block) []BlockID {
	ids := make([]BlockID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// walkFunction assigns every block forward-reachable from entry to fn,
// stopping at return-terminated blocks (they have no intra-procedural
// successor to follow). A block already owned by a different function
// triggers MultipleOwners and is left with its original owner.
func (g *Graph) walkFunction(fn *Function, entry BlockID, owner map[BlockID]FuncID) {
	pending := &lifo.Stack[BlockID]{}
	pending.Push(entry)
	visited := map[BlockID]bool{}
	for !pending.IsEmpty() {
		id, _ := pending.Pop()
		if visited[id] {
			continue
		}
		visited[id] = true

		if prevOwner, ok := owner[id]; ok && prevOwner != fn.ID {
			if !g.MultiOwned[id] {
				g.MultiOwned[id] = true
				g.diag(diagnostic.New(g.Blocks[id].Entry().Range, diagnostic.CodeMultipleOwners,
					fmt.Sprintf("block reachable from both %q and %q", g.Functions[prevOwner].Name, fn.Name)))
			}
			continue
		}
		owner[id] = fn.ID
		fn.Blocks[id] = true
		g.Blocks[id].Func = fn.ID

		for succ := range g.Blocks[id].Succs {
			if !visited[succ] {
				pending.Push(succ)
			}
		}
	}
}

func (g *Graph) addSyntheticExit(fn *Function) {
	exit := g.addBlock()
	exit.Func = fn.ID
	exit.Nodes = []*asm.Node{{ID: -1, Op: "$funcexit"}}
	fn.Blocks[exit.ID] = true
	fn.ExitBlock = exit.ID

	for id := range fn.Blocks {
		if id == exit.ID {
			continue
		}
		b := g.Blocks[id]
		last := b.Exit()
		if asm.IsReturn(last.Op) {
			g.link(id, exit.ID)
			continue
		}
		if last.Op == "jalr" {
			if _, isReturn := asm.ClassifyJalr(last); isReturn {
				g.link(id, exit.ID)
			}
		}
	}
}

// resolveCallEdges finalizes pending call edges once every label's owning
// function is known.
func (g *Graph) resolveCallEdges(pending []pendingCall) {
	for _, p := range pending {
		targetBlock, ok := g.EntryMap[p.targetLabel]
		if !ok {
			continue
		}
		fn := g.FunctionOf(targetBlock)
		if fn == nil {
			continue
		}
		g.CallEdges = append(g.CallEdges, CallEdge{
			CallerBlock: p.callerBlock,
			Callee:      fn.ID,
			ReturnBlock: p.returnBlock,
			Site:        p.site,
		})
	}
}

// reportUnreachable flags blocks with no predecessor that are not a
// function entry.
func (g *Graph) reportUnreachable(nodes []*asm.Node, blockOf []BlockID) {
	entries := map[BlockID]*Function{}
	for _, fn := range g.Functions {
		entries[fn.Entry] = fn
	}
	for _, id := range sortedBlockIDs(g.Blocks) {
		b := g.Blocks[id]
		if b.IsSynthetic() {
			continue
		}
		if id == 0 {
			continue
		}
		if fn, ok := entries[id]; ok {
			if len(b.Preds) > 0 {
				g.diag(diagnostic.New(b.Entry().Range, diagnostic.CodeUnconventionalEntry,
					fmt.Sprintf("function %q is reachable by fall-through, not only by call", fn.Name)))
			}
			continue
		}
		if len(b.Preds) == 0 {
			g.diag(diagnostic.New(b.Entry().Range, diagnostic.CodeUnreachableBlock, "block is not reachable from any entry point"))
		}
	}
}
