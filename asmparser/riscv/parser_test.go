package riscv_test

import (
	"strings"
	"testing"

	"github.com/riscvlint/rva/asmparser/riscv"
	"github.com/riscvlint/rva/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicInstructions(t *testing.T) {
	src := `main:
  li a0, 10
  jal func1
  li a7, 10
  ecall
func1:
  addi sp, sp, -4
  sw s0, (sp)
  li s0, 32
  ret
`
	prog, diags, err := riscv.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, prog.Nodes, 8)

	assert.Equal(t, []string{"main"}, prog.Nodes[0].Labels)
	assert.Equal(t, "li", prog.Nodes[0].Op)
	assert.True(t, prog.Nodes[0].Args[0].IsReg())
	assert.Equal(t, register.A0, prog.Nodes[0].Args[0].Reg)
	assert.True(t, prog.Nodes[0].Args[1].IsImm())
	assert.Equal(t, int32(10), prog.Nodes[0].Args[1].Imm)

	assert.Equal(t, "jal", prog.Nodes[1].Op)
	assert.True(t, prog.Nodes[1].Args[0].IsLabel())
	assert.Equal(t, "func1", prog.Nodes[1].Args[0].Label)

	assert.Equal(t, []string{"func1"}, prog.Nodes[4].Labels)
	assert.Equal(t, "addi", prog.Nodes[4].Op)

	memNode := prog.Nodes[5]
	assert.Equal(t, "sw", memNode.Op)
	require.Len(t, memNode.Args, 2)
	assert.True(t, memNode.Args[1].IsMem())
	assert.Equal(t, register.SP, memNode.Args[1].Reg)
	assert.Equal(t, int32(0), memNode.Args[1].Imm)
}

func TestParseExpandsPseudoInstructions(t *testing.T) {
	src := `f:
  mv a0, a1
  not t0, t1
  neg t0, t1
  nop
  beqz a0, done
done:
  ret
`
	prog, diags, err := riscv.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, "addi", prog.Nodes[0].Op)
	assert.Equal(t, int32(0), prog.Nodes[0].Args[2].Imm)

	assert.Equal(t, "xori", prog.Nodes[1].Op)
	assert.Equal(t, int32(-1), prog.Nodes[1].Args[2].Imm)

	assert.Equal(t, "sub", prog.Nodes[2].Op)
	assert.Equal(t, register.Zero, prog.Nodes[2].Args[1].Reg)

	assert.Equal(t, "addi", prog.Nodes[3].Op)
	assert.Equal(t, register.Zero, prog.Nodes[3].Args[0].Reg)

	assert.Equal(t, "beq", prog.Nodes[4].Op)
	assert.Equal(t, register.Zero, prog.Nodes[4].Args[1].Reg)
	assert.True(t, prog.Nodes[4].Args[2].IsLabel())
}

func TestParseReportsDuplicateLabel(t *testing.T) {
	src := "a:\n  nop\na:\n  nop\n"
	_, diags, err := riscv.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "E_PARSE", string(diags[0].Code))
}

func TestParseSkipsUnrecognizedLineAndContinues(t *testing.T) {
	src := "main:\n  li a0, 1\n  $$$bogus$$$\n  li a1, 2\n"
	prog, diags, err := riscv.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "E_PARSE", string(diags[0].Code))
	require.Len(t, prog.Nodes, 2)
}
