package render

import (
	"encoding/json"
	"io"

	"github.com/riscvlint/rva/diagnostic"
)

// JSONRenderer renders diagnostics as a JSON array.
type JSONRenderer struct{}

// NewJSONRenderer builds the JSON Renderer.
func NewJSONRenderer() Renderer { return &JSONRenderer{} }

func (r *JSONRenderer) Format() string { return "json" }

func (r *JSONRenderer) Render(diags []*diagnostic.Diagnostic, output io.Writer) error {
	return json.NewEncoder(output).Encode(diags)
}
