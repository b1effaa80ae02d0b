package register

import (
	"sort"
	"strings"
)

// Set is a bitset over the register file. The bit at index i is set iff
// register i is a member. uint64 rather than uint32 so PC gets its own bit
// alongside the 32 GPRs.
type Set uint64

// NewSet builds a Set containing the given registers.
func NewSet(regs ...Register) Set {
	var s Set
	for _, r := range regs {
		s = s.Add(r)
	}
	return s
}

func (s Set) Add(r Register) Set      { return s | (1 << Set(r)) }
func (s Set) Remove(r Register) Set   { return s &^ (1 << Set(r)) }
func (s Set) Contains(r Register) bool { return s&(1<<Set(r)) != 0 }
func (s Set) IsEmpty() bool           { return s == 0 }

func (s Set) Union(o Set) Set     { return s | o }
func (s Set) Intersect(o Set) Set { return s & o }
func (s Set) Diff(o Set) Set      { return s &^ o }
func (s Set) Equal(o Set) bool    { return s == o }

// Len returns the number of member registers.
func (s Set) Len() int {
	n := 0
	for b := s; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// Slice returns the members in ascending register-index order.
func (s Set) Slice() []Register {
	out := make([]Register, 0, s.Len())
	for r := Register(0); r < numRegisters; r++ {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s Set) String() string {
	regs := s.Slice()
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.String()
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}

// Temporaries is the caller-saved temporary register class t0-t6.
func Temporaries() Set { return NewSet(T0, T1, T2, T3, T4, T5, T6) }

// Arguments is a0-a7, used both as the argument and return-value class.
func Arguments() Set { return NewSet(A0, A1, A2, A3, A4, A5, A6, A7) }

// Saved is s0-s11, the callee-saved class excluding sp.
func Saved() Set { return NewSet(S0, S1, S2, S3, S4, S5, S6, S7, S8, S9, S10, S11) }

// CallerSaved is every register a call may clobber: t*, a*, ra.
func CallerSaved() Set { return Temporaries().Union(Arguments()).Add(RA) }

// CalleeSaved is every register a callee must restore if it writes to it:
// s0-s11 plus sp.
func CalleeSaved() Set { return Saved().Add(SP) }

// ReturnCandidates is the subset of a0-a7 usable as a return value: a0-a1,
// per the GLOSSARY's "Return register set of F" definition.
func ReturnCandidates() Set { return NewSet(A0, A1) }
