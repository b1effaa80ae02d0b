package render_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/render"
	"github.com/riscvlint/rva/source"
)

func sample() []*diagnostic.Diagnostic {
	return []*diagnostic.Diagnostic{
		diagnostic.New(source.Range{File: "t.s", Start: source.Position{Line: 3, Col: 1}, End: source.Position{Line: 3, Col: 10}},
			diagnostic.CodeSaveRegister, "s1 written without a matching save").WithRegister("s1"),
	}
}

func TestForResolvesKnownFormats(t *testing.T) {
	r, ok := render.For("json")
	require.True(t, ok)
	assert.Equal(t, "json", r.Format())

	r, ok = render.For("")
	require.True(t, ok)
	assert.Equal(t, "text", r.Format())

	_, ok = render.For("xml")
	assert.False(t, ok)
}

func TestTextRenderIncludesRegisterAndRange(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.NewTextRenderer().Render(sample(), &buf))
	out := buf.String()
	assert.Contains(t, out, "SaveRegisterCheck")
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "t.s:3:1-10")
}

func TestTextRenderEmptyIsClean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.NewTextRenderer().Render(nil, &buf))
	assert.Contains(t, buf.String(), "no register or calling-convention violations found")
}

func TestJSONRenderRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.NewJSONRenderer().Render(sample(), &buf))

	var decoded []*diagnostic.Diagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, diagnostic.CodeSaveRegister, decoded[0].Code)
	assert.Equal(t, diagnostic.SeverityError, decoded[0].Severity)
	assert.Equal(t, "s1", decoded[0].Register)
}
