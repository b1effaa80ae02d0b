package riscv

import (
	"fmt"

	"github.com/riscvlint/rva/asm"
	"github.com/riscvlint/rva/register"
)

// expand rewrites a parsed pseudo-instruction into the real (or
// core-convenient) mnemonic and operand list the rest of the pipeline
// consumes, so downstream passes never special-case a pseudo-op's syntax.
//
// `li`, `la`, `call`, `tail`, `ret`, `j` are accepted as pseudo-ops but are
// kept as their own mnemonics rather than rewritten to `addi`/`jal`/`jalr`,
// because the CFG builder (asm.IsCall, asm.ClassifyJal, asm.IsReturn) and
// the dataflow transfer functions pattern-match on them directly —
// rewriting them away would just force those consumers to re-synthesize
// the same pattern match. See DESIGN.md.
func expand(mnemonic string, args []asm.Operand) (string, []asm.Operand, error) {
	switch mnemonic {
	case "mv":
		if err := arity(mnemonic, args, 2); err != nil {
			return "", nil, err
		}
		return "addi", []asm.Operand{args[0], args[1], asm.ImmOperand(0)}, nil

	case "not":
		if err := arity(mnemonic, args, 2); err != nil {
			return "", nil, err
		}
		return "xori", []asm.Operand{args[0], args[1], asm.ImmOperand(-1)}, nil

	case "neg":
		if err := arity(mnemonic, args, 2); err != nil {
			return "", nil, err
		}
		return "sub", []asm.Operand{args[0], asm.RegOperand(register.Zero), args[1]}, nil

	case "seqz":
		if err := arity(mnemonic, args, 2); err != nil {
			return "", nil, err
		}
		return "sltiu", []asm.Operand{args[0], args[1], asm.ImmOperand(1)}, nil

	case "snez":
		if err := arity(mnemonic, args, 2); err != nil {
			return "", nil, err
		}
		return "sltu", []asm.Operand{args[0], asm.RegOperand(register.Zero), args[1]}, nil

	case "nop":
		if err := arity(mnemonic, args, 0); err != nil {
			return "", nil, err
		}
		return "addi", []asm.Operand{asm.RegOperand(register.Zero), asm.RegOperand(register.Zero), asm.ImmOperand(0)}, nil

	case "jr":
		if err := arity(mnemonic, args, 1); err != nil {
			return "", nil, err
		}
		if !args[0].IsReg() {
			return "", nil, fmt.Errorf("jr expects a register operand")
		}
		return "jalr", []asm.Operand{asm.RegOperand(register.Zero), asm.MemOperand(args[0].Reg, 0)}, nil

	case "beqz", "bnez", "bltz", "bgez", "blez", "bgtz":
		if err := arity(mnemonic, args, 2); err != nil {
			return "", nil, err
		}
		if !args[0].IsReg() {
			return "", nil, fmt.Errorf("%s expects a register operand", mnemonic)
		}
		rs, target := args[0], args[1]
		zero := asm.RegOperand(register.Zero)
		switch mnemonic {
		case "beqz":
			return "beq", []asm.Operand{rs, zero, target}, nil
		case "bnez":
			return "bne", []asm.Operand{rs, zero, target}, nil
		case "bltz":
			return "blt", []asm.Operand{rs, zero, target}, nil
		case "bgez":
			return "bge", []asm.Operand{rs, zero, target}, nil
		case "blez": // rs <= 0  <=>  0 >= rs
			return "bge", []asm.Operand{zero, rs, target}, nil
		default: // bgtz: rs > 0 <=> 0 < rs
			return "blt", []asm.Operand{zero, rs, target}, nil
		}

	default:
		// li, la, ret, call, tail, j and every real RV32I mnemonic pass
		// through unchanged; their arity/shape is validated by the
		// annotator and CFG builder, which are the components that give
		// each mnemonic its meaning.
		return mnemonic, args, nil
	}
}

func arity(mnemonic string, args []asm.Operand, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s expects %d operand(s), got %d", mnemonic, want, len(args))
	}
	return nil
}
