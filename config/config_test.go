package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscvlint/rva/config"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/source"
)

func TestDefaultReportsEverything(t *testing.T) {
	c := config.Default()
	assert.Equal(t, diagnostic.SeverityHint, c.MinSeverity)
	assert.Empty(t, c.Disabled)
	assert.Empty(t, c.Overrides)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
min_severity: warning
disabled_checks:
  - DeadValueCheck
severity_overrides:
  UnconventionalCall: error
`), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, diagnostic.SeverityWarning, c.MinSeverity)
	assert.True(t, c.Disabled[diagnostic.CodeDeadValue])
	assert.Equal(t, diagnostic.SeverityError, c.Overrides[diagnostic.CodeUnconventionalCall])
}

func TestLoadRejectsUnknownSeverity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_severity: critical\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApplyFiltersDisabledAndBelowFloor(t *testing.T) {
	c := config.Default()
	c.Disabled[diagnostic.CodeDeadValue] = true
	c.MinSeverity = diagnostic.SeverityWarning

	diags := []*diagnostic.Diagnostic{
		diagnostic.New(source.Range{}, diagnostic.CodeDeadValue, "dead"),
		diagnostic.New(source.Range{}, diagnostic.CodeUnconventionalCall, "warn"),
		diagnostic.New(source.Range{}, diagnostic.CodeSaveRegister, "error"),
	}
	out := c.Apply(diags)
	require.Len(t, out, 2)
	for _, d := range out {
		assert.NotEqual(t, diagnostic.CodeDeadValue, d.Code)
	}
}

func TestApplyRewritesSeverityViaOverride(t *testing.T) {
	c := config.Default()
	c.Overrides[diagnostic.CodeDeadValue] = diagnostic.SeverityError

	out := c.Apply([]*diagnostic.Diagnostic{
		diagnostic.New(source.Range{}, diagnostic.CodeDeadValue, "dead"),
	})
	require.Len(t, out, 1)
	assert.Equal(t, diagnostic.SeverityError, out[0].Severity)
}
