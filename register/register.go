// Package register models the RV32I general-purpose register file and the
// role classes the calling convention assigns to it.
package register

import "strings"

// Register identifies one of the 32 general-purpose registers, plus the
// synthetic PC slot used by the CFG builder to model control transfer.
type Register uint8

const (
	Zero Register = iota // x0
	RA                   // x1
	SP                   // x2
	GP                   // x3
	TP                   // x4
	T0                   // x5
	T1                   // x6
	T2                   // x7
	S0                   // x8 / fp
	S1                   // x9
	A0                   // x10
	A1                   // x11
	A2                   // x12
	A3                   // x13
	A4                   // x14
	A5                   // x15
	A6                   // x16
	A7                   // x17
	S2                   // x18
	S3                   // x19
	S4                   // x20
	S5                   // x21
	S6                   // x22
	S7                   // x23
	S8                   // x24
	S9                   // x25
	S10                  // x26
	S11                  // x27
	T3                   // x28
	T4                   // x29
	T5                   // x30
	T6                   // x31
	PC                   // not a GPR; tracked for completeness of the role model
	numRegisters
)

// Role classifies a register under the RISC-V calling convention.
type Role int

const (
	RoleZero Role = iota
	RoleRA
	RoleSP
	RoleGP
	RoleTP
	RoleTemp
	RoleSaved
	RoleArg
	RolePC
)

var names = [numRegisters]string{
	Zero: "zero", RA: "ra", SP: "sp", GP: "gp", TP: "tp",
	T0: "t0", T1: "t1", T2: "t2",
	S0: "s0", S1: "s1",
	A0: "a0", A1: "a1", A2: "a2", A3: "a3", A4: "a4", A5: "a5", A6: "a6", A7: "a7",
	S2: "s2", S3: "s3", S4: "s4", S5: "s5", S6: "s6", S7: "s7", S8: "s8", S9: "s9", S10: "s10", S11: "s11",
	T3: "t3", T4: "t4", T5: "t5", T6: "t6",
	PC: "pc",
}

var roles = [numRegisters]Role{
	Zero: RoleZero, RA: RoleRA, SP: RoleSP, GP: RoleGP, TP: RoleTP,
	T0: RoleTemp, T1: RoleTemp, T2: RoleTemp,
	S0: RoleSaved, S1: RoleSaved,
	A0: RoleArg, A1: RoleArg, A2: RoleArg, A3: RoleArg, A4: RoleArg, A5: RoleArg, A6: RoleArg, A7: RoleArg,
	S2: RoleSaved, S3: RoleSaved, S4: RoleSaved, S5: RoleSaved, S6: RoleSaved, S7: RoleSaved, S8: RoleSaved, S9: RoleSaved, S10: RoleSaved, S11: RoleSaved,
	T3: RoleTemp, T4: RoleTemp, T5: RoleTemp, T6: RoleTemp,
	PC: RolePC,
}

// aliases maps every accepted spelling (ABI name or xN form) to a Register.
var aliases = buildAliases()

func buildAliases() map[string]Register {
	m := make(map[string]Register, numRegisters*2)
	for r := Register(0); r < numRegisters; r++ {
		m[names[r]] = r
	}
	m["fp"] = S0
	for i := 0; i < int(numRegisters)-1; i++ { // PC has no xN form
		m["x"+itoa(i)] = Register(i)
	}
	return m
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [4]byte
	n := len(buf)
	for i > 0 {
		n--
		buf[n] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[n:])
}

// NumRegisters is the number of distinct Register values, including PC, as
// a compile-time constant usable for fixed-size array declarations.
const NumRegisters = numRegisters

// Count returns the number of distinct Register values, including PC.
func Count() int { return int(numRegisters) }

// Parse resolves a register operand's textual form (case-insensitive) to a
// Register. It accepts both ABI names ("a0", "sp", "fp") and numeric names
// ("x10").
func Parse(s string) (Register, bool) {
	r, ok := aliases[strings.ToLower(s)]
	return r, ok
}

// String renders the register's canonical ABI name.
func (r Register) String() string {
	if r >= numRegisters {
		return "?"
	}
	return names[r]
}

// RoleOf returns the calling-convention role class for r.
func (r Register) RoleOf() Role {
	if r >= numRegisters {
		return RoleZero
	}
	return roles[r]
}

// IsCalleeSaved reports whether r must be preserved across a call by the
// callee if the callee writes to it: s0-s11 and sp.
func (r Register) IsCalleeSaved() bool {
	return r == SP || r.RoleOf() == RoleSaved
}

// IsCallerSaved reports whether r may be clobbered by a call: t*, a*, ra.
func (r Register) IsCallerSaved() bool {
	switch r.RoleOf() {
	case RoleTemp, RoleArg, RoleRA:
		return true
	}
	return false
}
