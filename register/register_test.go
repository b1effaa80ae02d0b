package register_test

import (
	"testing"

	"github.com/riscvlint/rva/register"
	"github.com/stretchr/testify/assert"
)

func TestParseAliases(t *testing.T) {
	cases := map[string]register.Register{
		"a0": register.A0,
		"A0": register.A0,
		"x10": register.A0,
		"fp":  register.S0,
		"s0":  register.S0,
		"sp":  register.SP,
		"x2":  register.SP,
		"zero": register.Zero,
		"x0":   register.Zero,
	}
	for input, want := range cases {
		got, ok := register.Parse(input)
		assert.True(t, ok, "expected %q to parse", input)
		assert.Equal(t, want, got, "parsing %q", input)
	}

	_, ok := register.Parse("not-a-register")
	assert.False(t, ok)
}

func TestRoleClasses(t *testing.T) {
	assert.True(t, register.S0.IsCalleeSaved())
	assert.True(t, register.SP.IsCalleeSaved())
	assert.False(t, register.T0.IsCalleeSaved())

	assert.True(t, register.T0.IsCallerSaved())
	assert.True(t, register.A0.IsCallerSaved())
	assert.True(t, register.RA.IsCallerSaved())
	assert.False(t, register.S0.IsCallerSaved())
	assert.False(t, register.SP.IsCallerSaved())
}

func TestSetOperations(t *testing.T) {
	s := register.NewSet(register.A0, register.A1)
	assert.True(t, s.Contains(register.A0))
	assert.False(t, s.Contains(register.A2))
	assert.Equal(t, 2, s.Len())

	s2 := s.Add(register.A2)
	assert.Equal(t, 3, s2.Len())
	assert.Equal(t, 2, s.Len(), "Add must not mutate the receiver")

	diff := s2.Diff(s)
	assert.Equal(t, register.NewSet(register.A2), diff)

	union := register.Temporaries().Union(register.Arguments()).Add(register.RA)
	assert.Equal(t, register.CallerSaved(), union)
}

func TestReturnCandidatesSubsetOfArguments(t *testing.T) {
	assert.True(t, register.Arguments().Intersect(register.ReturnCandidates()).Equal(register.ReturnCandidates()))
}
