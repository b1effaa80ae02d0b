package infer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscvlint/rva/asmparser/riscv"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/infer"
	"github.com/riscvlint/rva/register"
)

func build(t *testing.T, src string) *cfg.Graph {
	t.Helper()
	prog, diags, err := riscv.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	require.Empty(t, diags)
	return cfg.Build(prog)
}

func funcNamed(g *cfg.Graph, name string) *cfg.Function {
	for _, fn := range g.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func TestInfersSingleArgAndReturn(t *testing.T) {
	g := build(t, `
main: jal addone
li a7,10
ecall
addone: addi a0, a0, 1
ret
`)
	outcome, diags := infer.Run(g)
	require.Empty(t, diags)

	addone := funcNamed(g, "addone")
	require.NotNil(t, addone)
	assert.Equal(t, register.NewSet(register.A0), addone.Args)
	assert.Equal(t, register.NewSet(register.A0), addone.Ret)
	assert.LessOrEqual(t, outcome.Iterations, infer.MaxOuterIterations)
}

func TestUnusedArgumentRegisterNotInferred(t *testing.T) {
	g := build(t, `
main: jal touchesA1
li a7,10
ecall
touchesA1: addi a1, a1, 1
ret
`)
	_, diags := infer.Run(g)
	require.Empty(t, diags)

	fn := funcNamed(g, "touchesA1")
	require.NotNil(t, fn)
	assert.True(t, fn.Args.Contains(register.A1))
	// a0 is returned unchanged, so it is live at entry as well; a2 is
	// neither read nor returned.
	assert.False(t, fn.Args.Contains(register.A2))
}

func TestEntryLiveInSurfacesNonArgRegisters(t *testing.T) {
	g := build(t, "main: add a0, a0, a1\nli a7,10\necall\n")
	outcome, diags := infer.Run(g)
	require.Empty(t, diags)

	main := funcNamed(g, "main")
	require.NotNil(t, main)
	liveIn := outcome.EntryLiveIn(main)
	assert.True(t, liveIn.Contains(register.A0))
	assert.True(t, liveIn.Contains(register.A1))
}
