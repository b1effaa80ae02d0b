// Package e2etest runs the full lint pipeline over literal assembly
// fixtures and checks the resulting diagnostic codes. It calls lint.Lint
// in-process rather than exec a built binary — this repo is never built
// by its own tooling — and fixtures are packed with
// golang.org/x/tools/txtar instead of one file per testdata directory, so
// a case's source and its expectations live side by side.
package e2etest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/riscvlint/rva/config"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/lint"
	"github.com/riscvlint/rva/register"
)

func codesOf(diags []*diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = string(d.Code)
	}
	return out
}

func run(t *testing.T, archive string) *lint.Result {
	t.Helper()
	a := txtar.Parse([]byte(archive))
	require.Len(t, a.Files, 1, "fixture must carry exactly one source file")
	f := a.Files[0]
	res, err := lint.Lint(f.Name, strings.NewReader(string(f.Data)), config.Default())
	require.NoError(t, err)
	return res
}

func TestCalleeSavedOverwriteAcrossLoop(t *testing.T) {
	res := run(t, `
-- s1.s --
main: li a0, 10
jal func1
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
	codes := codesOf(res.Diagnostics)
	assert.Contains(t, codes, string(diagnostic.CodeSaveRegister))
	assert.Contains(t, codes, string(diagnostic.CodeDeadValue))
}

func TestUnconventionalCall(t *testing.T) {
	res := run(t, `
-- s2.s --
main: jal t0, foo
foo: ret
`)
	assert.Contains(t, codesOf(res.Diagnostics), string(diagnostic.CodeUnconventionalCall))
}

func TestMissingReturnValueIsClean(t *testing.T) {
	res := run(t, `
-- s3.s --
main: jal addone
li a7,10
ecall
addone: addi a0, a0, 1
ret
`)
	assert.Empty(t, res.Diagnostics)

	var addone lint.Summary
	for _, s := range res.Summaries {
		if s.Function == "addone" {
			addone = s
		}
	}
	assert.True(t, addone.Args.Contains(register.A0))
	assert.True(t, addone.Ret.Contains(register.A0))
}

func TestUnbalancedStack(t *testing.T) {
	res := run(t, `
-- s4.s --
foo: addi sp, sp, -8
ret
`)
	assert.Contains(t, codesOf(res.Diagnostics), string(diagnostic.CodeUnbalancedStack))
}

func TestUseBeforeDef(t *testing.T) {
	res := run(t, `
-- s5.s --
main: add a0, a0, a1
li a7,10
ecall
`)
	var uses int
	for _, d := range res.Diagnostics {
		if d.Code == diagnostic.CodeUseBeforeDef {
			uses++
		}
	}
	assert.Equal(t, 2, uses, "expected one UseBeforeDefCheck for a0 and one for a1")
}

func TestRetOutsideAnyFunction(t *testing.T) {
	res := run(t, `
-- s6.s --
ret
`)
	assert.Contains(t, codesOf(res.Diagnostics), string(diagnostic.CodeMismatchedReturn))
}
