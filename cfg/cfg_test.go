package cfg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscvlint/rva/asmparser/riscv"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/diagnostic"
)

func build(t *testing.T, src string) *cfg.Graph {
	t.Helper()
	prog, diags, err := riscv.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	require.Empty(t, diags)
	return cfg.Build(prog)
}

func TestSingleFunctionSingleBlock(t *testing.T) {
	g := build(t, "main: addi a0, a0, 1\nret\n")
	require.Len(t, g.Functions, 1)
	for _, fn := range g.Functions {
		assert.Equal(t, "main", fn.Name)
		assert.Len(t, fn.Blocks, 2, "the single source block plus the synthetic exit block it returns into")
	}
}

func TestBranchSplitsBlocks(t *testing.T) {
	g := build(t, `
main: beq zero,a0,L2
li a1, 1
L2: ret
`)
	var fn *cfg.Function
	for _, f := range g.Functions {
		fn = f
	}
	require.NotNil(t, fn)
	assert.GreaterOrEqual(t, len(fn.Blocks), 3)
}

func TestCallEdgeRecorded(t *testing.T) {
	g := build(t, `
main: jal addone
li a7,10
ecall
addone: addi a0, a0, 1
ret
`)
	require.Len(t, g.CallEdges, 1)
	edge := g.CallEdges[0]
	callee := g.Functions[edge.Callee]
	assert.Equal(t, "addone", callee.Name)
}

func TestUnknownCallTargetLeavesNoEdge(t *testing.T) {
	g := build(t, "main: jal missing\nli a7,10\necall\n")
	assert.Empty(t, g.CallEdges, "a call to an undefined label resolves to no edge rather than crashing")
}

func TestMultiplyOwnedBlockFlagged(t *testing.T) {
	g := build(t, `
main: jal fnA
jal fnB
li a7,10
ecall
fnA: addi a0,a0,1
j common
fnB: addi a0,a0,2
common: ret
`)
	var found bool
	for _, d := range g.Diagnostics {
		if d.Code == diagnostic.CodeMultipleOwners {
			found = true
		}
	}
	assert.True(t, found, "common falls through from fnB and is also jumped to from fnA, so two function walks both claim it")
}

func TestRetOutsideAnyFunctionHasNoFunc(t *testing.T) {
	g := build(t, "ret\n")
	var sawOwned bool
	for _, b := range g.Blocks {
		if b.Func != cfg.NoFunc {
			sawOwned = true
		}
	}
	assert.False(t, sawOwned, "a bare ret is not forward-reachable from any label, so no function claims its block")
}
