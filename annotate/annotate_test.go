package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/register"
)

func node(op string, args ...asm.Operand) *asm.Node {
	return &asm.Node{Op: op, Args: args}
}

func TestRTypeDefsAndUses(t *testing.T) {
	n := node("add", asm.RegOperand(register.A0), asm.RegOperand(register.A1), asm.RegOperand(register.A2))
	info := Of(n)
	assert.True(t, info.Defs.Contains(register.A0))
	assert.True(t, info.Uses.Contains(register.A1))
	assert.True(t, info.Uses.Contains(register.A2))
	assert.False(t, info.Defs.Contains(register.A1))
}

func TestLoadUsesBaseDefsDest(t *testing.T) {
	n := node("lw", asm.RegOperand(register.A0), asm.MemOperand(register.SP, 4))
	info := Of(n)
	assert.True(t, info.Defs.Contains(register.A0))
	assert.True(t, info.Uses.Contains(register.SP))
}

func TestStoreUsesValueAndBase(t *testing.T) {
	n := node("sw", asm.RegOperand(register.S0), asm.MemOperand(register.SP, 0))
	info := Of(n)
	assert.True(t, info.Uses.Contains(register.S0))
	assert.True(t, info.Uses.Contains(register.SP))
	assert.True(t, info.Defs.IsEmpty())
}

func TestLiDefinesOnly(t *testing.T) {
	n := node("li", asm.RegOperand(register.S1), asm.ImmOperand(64))
	info := Of(n)
	assert.True(t, info.Defs.Contains(register.S1))
	assert.True(t, info.Uses.IsEmpty())
}

func TestConventionalCallClobbersCallerSaved(t *testing.T) {
	n := node("jal", asm.RegOperand(register.RA), asm.LabelOperand("func1"))
	info := Of(n)
	assert.True(t, info.Defs.Contains(register.RA))
	assert.True(t, info.Defs.Contains(register.A0))
	assert.True(t, info.Defs.Contains(register.T0))
	assert.False(t, info.Defs.Contains(register.S0), "callee-saved registers are never clobbered by a call")
}

func TestPlainJumpDefinesNothing(t *testing.T) {
	n := node("jal", asm.RegOperand(register.Zero), asm.LabelOperand("L1"))
	info := Of(n)
	assert.True(t, info.Defs.IsEmpty())
	assert.True(t, info.Uses.IsEmpty())
}

func TestUnconventionalCallStillClobbers(t *testing.T) {
	n := node("jal", asm.RegOperand(register.T0), asm.LabelOperand("foo"))
	info := Of(n)
	assert.True(t, info.Defs.Contains(register.T0))
	assert.True(t, info.Defs.Contains(register.A0))
}

func TestReturnUsesRA(t *testing.T) {
	info := Of(node("ret"))
	assert.True(t, info.Uses.Contains(register.RA))
	assert.True(t, info.Defs.IsEmpty())
}

func TestEcallUsesSyscallNumberAndDefinesA0(t *testing.T) {
	info := Of(node("ecall"))
	assert.True(t, info.Uses.Contains(register.A7))
	assert.True(t, info.Defs.Contains(register.A0))
}

func TestTailAndJAreInvisibleLocally(t *testing.T) {
	assert.Equal(t, Info{}, Of(node("tail", asm.LabelOperand("foo"))))
	assert.Equal(t, Info{}, Of(node("j", asm.LabelOperand("L1"))))
}
