package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaArityInvariants(t *testing.T) {
	_, err := NewFormula(NOT, 0, Event("a"), Event("b"))
	assert.Error(t, err, "NOT must have exactly one child")

	_, err = NewFormula(XOR, 0, Event("a"))
	assert.Error(t, err, "XOR must have exactly two children")

	_, err = NewFormula(AND, 0, Event("a"))
	assert.Error(t, err, "AND must have at least two children")

	f, err := NewFormula(OR, 0, Event("a"), Event("b"))
	require.NoError(t, err)
	assert.Equal(t, OR, f.Kind)
}

func TestAtleastVoteNumberBounds(t *testing.T) {
	_, err := NewFormula(ATLEAST, 0, Event("a"), Event("b"), Event("c"))
	assert.Error(t, err, "vote number must be >= 1")

	_, err = NewFormula(ATLEAST, 3, Event("a"), Event("b"), Event("c"))
	assert.Error(t, err, "vote number must be < number of children")

	f, err := NewFormula(ATLEAST, 2, Event("a"), Event("b"), Event("c"))
	require.NoError(t, err)
	assert.Equal(t, 2, f.VoteNumber)
}

func TestNestedFormula(t *testing.T) {
	inner, err := NewFormula(AND, 0, Event("a"), Event("b"))
	require.NoError(t, err)

	outer, err := NewFormula(OR, 0, Nested(inner), Event("c"))
	require.NoError(t, err)
	require.Len(t, outer.Args, 2)
	assert.Equal(t, ArgFormula, outer.Args[0].Kind)
	assert.Same(t, inner, outer.Args[0].Nested)
}

func TestNewGateRejectsInvalidFormula(t *testing.T) {
	bad := &Formula{Kind: AND, Args: []FormulaArg{Event("a")}}
	_, err := NewGate("G1", bad)
	assert.Error(t, err)

	good, err := NewFormula(OR, 0, Event("a"), Event("b"))
	require.NoError(t, err)
	gate, err := NewGate("TopEvent", good)
	require.NoError(t, err)
	assert.Equal(t, "topevent", gate.ID)
	assert.Equal(t, "TopEvent", gate.OrigID)
}
