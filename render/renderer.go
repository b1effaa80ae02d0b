// Package render formats a diagnostic batch for a CLI.
package render

import (
	"io"

	"github.com/riscvlint/rva/diagnostic"
)

// Renderer formats a diagnostic batch to output.
type Renderer interface {
	Render(diags []*diagnostic.Diagnostic, output io.Writer) error
	Format() string
}

// For resolves a CLI/config format name to a Renderer.
func For(format string) (Renderer, bool) {
	switch format {
	case "text", "":
		return NewTextRenderer(), true
	case "json":
		return NewJSONRenderer(), true
	default:
		return nil, false
	}
}
