// Package diagnostic defines the output contract of the lint pipeline: a
// severity-ranked, source-located finding, and the sink that deduplicates
// and orders a batch of them for a renderer.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/riscvlint/rva/source"
)

// Severity ranks a Diagnostic for filtering and LSP publication.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// LSP maps Severity to the textDocument/publishDiagnostics severity scale
// (1=Error .. 4=Hint).
func (s Severity) LSP() int {
	return int(s) + 1
}

// MarshalJSON renders Severity as its name rather than its ordinal, so a
// rendered diagnostic reads "error"/"warning" instead of 0/1.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON is MarshalJSON's inverse, for config/test fixtures that
// round-trip a rendered diagnostic.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("diagnostic: unrecognized severity %q", name)
	}
	*s = sev
	return nil
}

// ParseSeverity parses a CLI/config severity name, defaulting to false on
// an unrecognized spelling so callers can report a usage error.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return 0, false
	}
}

// Code is a stable diagnostic identifier.
type Code string

const (
	CodeSaveRegister         Code = "SaveRegisterCheck"
	CodeDeadValue            Code = "DeadValueCheck"
	CodeUseBeforeDef         Code = "UseBeforeDefCheck"
	CodeCalleeSavedAcrossCall Code = "CalleeSavedAcrossCall"
	CodeUnconventionalCall   Code = "UnconventionalCall"
	CodeMismatchedReturn     Code = "MismatchedReturn"
	CodeUnbalancedStack      Code = "UnbalancedStack"
	CodeInvalidArg           Code = "InvalidArg"

	// Structural CFG diagnostics.
	CodeMultipleOwners     Code = "MultipleOwners"
	CodeUnreachableBlock   Code = "UnreachableBlock"
	CodeUnconventionalEntry Code = "UnconventionalEntry"

	CodeParse    Code = "E_PARSE"
	CodeInternal Code = "E_INTERNAL"
)

// defaultSeverity is the out-of-the-box severity for each code, overridable
// via config.Config.
var defaultSeverity = map[Code]Severity{
	CodeSaveRegister:          SeverityError,
	CodeDeadValue:             SeverityWarning,
	CodeUseBeforeDef:          SeverityError,
	CodeCalleeSavedAcrossCall: SeverityError,
	CodeUnconventionalCall:    SeverityWarning,
	CodeMismatchedReturn:      SeverityError,
	CodeUnbalancedStack:       SeverityError,
	CodeInvalidArg:            SeverityWarning,
	CodeMultipleOwners:        SeverityError,
	CodeUnreachableBlock:      SeverityWarning,
	CodeUnconventionalEntry:   SeverityWarning,
	CodeParse:                 SeverityError,
	CodeInternal:              SeverityError,
}

// DefaultSeverity returns the unconfigured severity for code.
func DefaultSeverity(code Code) Severity {
	if s, ok := defaultSeverity[code]; ok {
		return s
	}
	return SeverityWarning
}

// Related is a secondary location attached to a Diagnostic, e.g. the save
// site a restore is missing relative to, or the call site an inferred
// argument set is derived from.
type Related struct {
	Range   source.Range `json:"range"`
	Message string       `json:"message"`
}

// Diagnostic is one finding.
type Diagnostic struct {
	Range    source.Range `json:"range"`
	Severity Severity     `json:"severity"`
	Code     Code         `json:"code"`
	Message  string       `json:"message"`

	// Register is the primary register the diagnostic concerns, if any. It
	// participates in the dedup key alongside (Code, Range) since the same
	// node can carry independent violations for two different registers
	// (an `add a0, a0, a1` with both operands undefined reports
	// UseBeforeDefCheck once each for a0 and a1).
	Register string `json:"register,omitempty"`

	Related []Related `json:"related,omitempty"`
}

func New(rng source.Range, code Code, message string) *Diagnostic {
	return &Diagnostic{Range: rng, Severity: DefaultSeverity(code), Code: code, Message: message}
}

// WithRegister sets the primary register and returns the receiver, for
// fluent construction at call sites.
func (d *Diagnostic) WithRegister(reg string) *Diagnostic {
	d.Register = reg
	return d
}

// WithRelated appends a related location.
func (d *Diagnostic) WithRelated(rng source.Range, message string) *Diagnostic {
	d.Related = append(d.Related, Related{Range: rng, Message: message})
	return d
}

type dedupKey struct {
	code     Code
	register string
	rng      string
}

// Sink deduplicates by (code, range, primary register) and orders by
// (file, line, column, code).
func Sink(diags []*Diagnostic) []*Diagnostic {
	seen := make(map[dedupKey]bool, len(diags))
	out := make([]*Diagnostic, 0, len(diags))
	for _, d := range diags {
		key := dedupKey{code: d.Code, register: d.Register, rng: d.Range.String()}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Range.File != b.Range.File {
			return a.Range.File < b.Range.File
		}
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}
		if a.Range.Start.Col != b.Range.Start.Col {
			return a.Range.Start.Col < b.Range.Start.Col
		}
		return a.Code < b.Code
	})
	return out
}
