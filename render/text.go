package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/riscvlint/rva/diagnostic"
)

// TextRenderer formats diagnostics as a grouped, human-readable report,
// adapted from renderer/text.go's header/summary/detail structure.
type TextRenderer struct{}

// NewTextRenderer builds the default text Renderer.
func NewTextRenderer() Renderer { return &TextRenderer{} }

func (r *TextRenderer) Format() string { return "text" }

func (r *TextRenderer) Render(diags []*diagnostic.Diagnostic, output io.Writer) error {
	if len(diags) == 0 {
		_, err := io.WriteString(output, "no register or calling-convention violations found\n")
		return err
	}

	counts := map[diagnostic.Severity]int{}
	for _, d := range diags {
		counts[d.Severity]++
	}

	var report strings.Builder
	report.WriteString("RISC-V register convention report\n")
	report.WriteString("------------------------------------\n")
	report.WriteString(fmt.Sprintf("errors: %d  warnings: %d  info: %d  hints: %d  total: %d\n\n",
		counts[diagnostic.SeverityError], counts[diagnostic.SeverityWarning],
		counts[diagnostic.SeverityInfo], counts[diagnostic.SeverityHint], len(diags)))

	for i, d := range diags {
		report.WriteString(fmt.Sprintf("%d. [%s] %s: %s\n", i+1, strings.ToUpper(d.Severity.String()), d.Code, d.Message))
		report.WriteString(fmt.Sprintf("   at %s\n", d.Range.String()))
		if d.Register != "" {
			report.WriteString(fmt.Sprintf("   register: %s\n", d.Register))
		}
		for _, rel := range d.Related {
			report.WriteString(fmt.Sprintf("   related: %s (%s)\n", rel.Range.String(), rel.Message))
		}
	}

	_, err := io.WriteString(output, report.String())
	return err
}
