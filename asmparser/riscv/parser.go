// Package riscv turns RV32I assembly text into an *asm.Program, expanding
// pseudo-instructions before the core (cfg/annotate/dataflow/check) ever
// sees them.
package riscv

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/register"
	"github.com/riscvlint/rva/source"
)

var (
	labelLineRe  = regexp.MustCompile(`^([A-Za-z_.$][\w.$]*)\s*:\s*(.*)$`)
	memOperandRe = regexp.MustCompile(`^(-?\w*)\(([A-Za-z][\w]*)\)$`)
)

// Parse reads filename's contents from r and returns the expanded node
// stream plus any salvageable parse diagnostics. A line that fails to
// parse is skipped (reported as E_PARSE) and parsing continues with the
// rest of the file.
func Parse(filename string, r io.Reader) (*asm.Program, []*diagnostic.Diagnostic, error) {
	p := &parser{filename: filename, seenLabels: map[string]bool{}}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := p.parseLine(line, scanner.Text()); err != nil {
			p.diags = append(p.diags, diagnostic.New(p.lineRange(line, 1, len(scanner.Text())+1), diagnostic.CodeParse, err.Error()))
		}
	}
	if err := scanner.Err(); err != nil {
		return p.builder.Program(), p.diags, fmt.Errorf("reading %s: %w", filename, err)
	}
	return p.builder.Program(), p.diags, nil
}

type parser struct {
	filename   string
	builder    asm.Builder
	pending    []string
	seenLabels map[string]bool
	diags      []*diagnostic.Diagnostic
}

func (p *parser) lineRange(line, colStart, colEnd int) source.Range {
	return source.Range{File: p.filename, Start: source.Position{Line: line, Col: colStart}, End: source.Position{Line: line, Col: colEnd}}
}

func (p *parser) parseLine(lineNo int, raw string) error {
	text := stripComment(raw)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if m := labelLineRe.FindStringSubmatch(text); m != nil {
		label, rest := m[1], strings.TrimSpace(m[2])
		p.addLabel(label, lineNo)
		if rest == "" {
			return nil
		}
		return p.parseInstruction(lineNo, rest)
	}
	return p.parseInstruction(lineNo, text)
}

func (p *parser) addLabel(label string, lineNo int) {
	if p.seenLabels[label] {
		p.diags = append(p.diags, diagnostic.New(p.lineRange(lineNo, 1, len(label)+2), diagnostic.CodeParse,
			fmt.Sprintf("duplicate label %q", label)))
	}
	p.seenLabels[label] = true
	p.pending = append(p.pending, label)
}

func (p *parser) parseInstruction(lineNo int, text string) error {
	labels := p.pending
	p.pending = nil

	fields := strings.SplitN(text, " ", 2)
	mnemonic := strings.ToLower(strings.TrimSpace(fields[0]))
	var operandText string
	if len(fields) == 2 {
		operandText = strings.TrimSpace(fields[1])
	}

	rng := p.lineRange(lineNo, 1, len(text)+1)

	if strings.HasPrefix(mnemonic, ".") {
		// Directive: not part of control flow. Kept as a Node with no
		// operand typing so a label attached to it still resolves.
		p.builder.Add(mnemonic, nil, labels, rng)
		return nil
	}

	operands, err := splitOperands(operandText)
	if err != nil {
		return err
	}

	args := make([]asm.Operand, 0, len(operands))
	for _, tok := range operands {
		op, err := parseOperand(tok)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		args = append(args, op)
	}

	op, args, err := expand(mnemonic, args)
	if err != nil {
		return fmt.Errorf("line %d: %w", lineNo, err)
	}
	if !knownMnemonics[op] {
		return fmt.Errorf("line %d: unknown mnemonic %q", lineNo, mnemonic)
	}

	p.builder.Add(op, args, labels, rng)
	return nil
}

// knownMnemonics is every real RV32I mnemonic plus the pseudo-ops this
// parser keeps unexpanded (li, la, ret, call, tail, j), used to reject
// garbage input as E_PARSE rather than silently fabricating an opcode the
// rest of the pipeline has never heard of.
var knownMnemonics = buildKnownMnemonics()

func buildKnownMnemonics() map[string]bool {
	ops := []string{
		"add", "sub", "and", "or", "xor", "sll", "srl", "sra", "slt", "sltu",
		"mul", "mulh", "mulhsu", "mulhu", "div", "divu", "rem", "remu",
		"addi", "andi", "ori", "xori", "slti", "sltiu", "slli", "srli", "srai",
		"li", "la", "lui", "auipc",
		"lb", "lh", "lw", "lbu", "lhu",
		"sb", "sh", "sw",
		"beq", "bne", "blt", "bge", "bltu", "bgeu",
		"j", "jal", "jalr", "ret", "call", "tail",
		"ecall", "ebreak", "fence",
	}
	m := make(map[string]bool, len(ops))
	for _, op := range ops {
		m[op] = true
	}
	return m
}

func stripComment(s string) string {
	if i := strings.IndexAny(s, "#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	return s
}

func splitOperands(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty operand in %q", s)
		}
		out = append(out, part)
	}
	return out, nil
}

func parseOperand(tok string) (asm.Operand, error) {
	if m := memOperandRe.FindStringSubmatch(tok); m != nil {
		base, ok := register.Parse(m[2])
		if !ok {
			return asm.Operand{}, fmt.Errorf("unknown base register %q in %q", m[2], tok)
		}
		offset := int32(0)
		if m[1] != "" {
			v, err := strconv.ParseInt(m[1], 0, 32)
			if err != nil {
				return asm.Operand{}, fmt.Errorf("invalid offset %q in %q: %w", m[1], tok, err)
			}
			offset = int32(v)
		}
		return asm.MemOperand(base, offset), nil
	}
	if r, ok := register.Parse(tok); ok {
		return asm.RegOperand(r), nil
	}
	if v, err := strconv.ParseInt(tok, 0, 32); err == nil {
		return asm.ImmOperand(int32(v)), nil
	}
	if isIdentifier(tok) {
		return asm.LabelOperand(tok), nil
	}
	return asm.Operand{}, fmt.Errorf("unrecognized operand %q", tok)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.', c == '$':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
