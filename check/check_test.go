package check_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscvlint/rva/asmparser/riscv"
	"github.com/riscvlint/rva/cfg"
	"github.com/riscvlint/rva/check"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/infer"
)

func checkSrc(t *testing.T, src string) []*diagnostic.Diagnostic {
	t.Helper()
	prog, diags, err := riscv.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	require.Empty(t, diags)
	g := cfg.Build(prog)
	outcome, inferDiags := infer.Run(g)
	require.Empty(t, inferDiags)
	return check.Run(g, outcome)
}

func codesOf(diags []*diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = string(d.Code)
	}
	return out
}

func TestSaveRegisterFlagsUnsavedCalleeSavedWrite(t *testing.T) {
	diags := checkSrc(t, `
main: jal func1
li a7,10
ecall
func1: addi sp,sp,-4
sw s0,(sp)
li s0,32
L1: beq zero,s0,L2
li s1,64
addi s0,s0,-1
j L1
L2: mv a0,s0
lw s0,(sp)
addi sp,sp,4
ret
`)
	codes := codesOf(diags)
	assert.Contains(t, codes, string(diagnostic.CodeSaveRegister))
	assert.Contains(t, codes, string(diagnostic.CodeDeadValue))
}

func TestSaveRegisterFlagsWriteBeforeItsOwnSave(t *testing.T) {
	diags := checkSrc(t, `
func1: li s0,10
addi sp,sp,-4
sw s0,(sp)
li s0,20
lw s0,(sp)
addi sp,sp,4
mv a0,s0
ret
`)
	var flagged []string
	for _, d := range diags {
		if d.Code == diagnostic.CodeSaveRegister {
			flagged = append(flagged, d.Range.String())
		}
	}
	require.Len(t, flagged, 1, "only the write before the save should be flagged, not the one after it")
}

func TestCalleeSavedAcrossCallFlagsScratchClobber(t *testing.T) {
	diags := checkSrc(t, `
main: li t0, 1
jal helper
addi a0, t0, 0
ret
helper: addi a0,a0,1
ret
`)
	assert.Contains(t, codesOf(diags), string(diagnostic.CodeCalleeSavedAcrossCall))
}

func TestCalleeSavedAcrossCallIgnoresReturnValueIdiom(t *testing.T) {
	diags := checkSrc(t, `
main: jal helper
addi a0,a0,1
ret
helper: addi a0,a0,1
ret
`)
	for _, d := range diags {
		if d.Code == diagnostic.CodeCalleeSavedAcrossCall {
			assert.NotEqual(t, "a0", d.Register, "a0 surviving a call to carry its return value is not a scratch-register bug")
		}
	}
}

func TestInvalidArgFlagsNonArgumentLiveIn(t *testing.T) {
	diags := checkSrc(t, `
main: addi s2, s2, 1
ret
`)
	assert.Contains(t, codesOf(diags), string(diagnostic.CodeInvalidArg))
}

func TestUnconventionalCallFlagsNonRAReturnRegister(t *testing.T) {
	diags := checkSrc(t, "main: jal t0, foo\nfoo: ret\n")
	assert.Contains(t, codesOf(diags), string(diagnostic.CodeUnconventionalCall))
}

func TestUnbalancedStackFlagsMismatchedFrame(t *testing.T) {
	diags := checkSrc(t, "main: addi sp, sp, -8\nret\n")
	assert.Contains(t, codesOf(diags), string(diagnostic.CodeUnbalancedStack))
}
