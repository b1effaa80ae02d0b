package lint_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscvlint/rva/config"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/lint"
)

func TestLintCleanProgramHasNoDiagnostics(t *testing.T) {
	res, err := lint.Lint("t.s", strings.NewReader(`
main: jal addone
li a7,10
ecall
addone: addi a0, a0, 1
ret
`), config.Default())
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Summaries, 2)
}

func TestLintAppliesConfigSeverityFloor(t *testing.T) {
	conf := config.Default()
	conf.MinSeverity = diagnostic.SeverityError

	res, err := lint.Lint("t.s", strings.NewReader(`
main: jal t0, foo
li a7,10
ecall
foo: ret
`), conf)
	require.NoError(t, err)
	for _, d := range res.Diagnostics {
		assert.LessOrEqual(t, int(d.Severity), int(diagnostic.SeverityError))
	}
	assert.Empty(t, res.Diagnostics, "UnconventionalCall's default Warning severity is below the Error floor")
}

func TestLintSummaryReflectsUnbalancedStack(t *testing.T) {
	res, err := lint.Lint("t.s", strings.NewReader("foo: addi sp, sp, -8\nret\n"), config.Default())
	require.NoError(t, err)
	require.Len(t, res.Summaries, 1)
	assert.False(t, res.Summaries[0].StackBalanced)
}

func TestLintPropagatesParseDiagnostics(t *testing.T) {
	res, err := lint.Lint("t.s", strings.NewReader("main: frobnicate a0, a1\nret\n"), config.Default())
	require.NoError(t, err)
	var found bool
	for _, d := range res.Diagnostics {
		if d.Code == diagnostic.CodeParse {
			found = true
		}
	}
	assert.True(t, found)
}
