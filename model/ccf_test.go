package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCcfGroupBetaFactorRequiresTwoMembers(t *testing.T) {
	_, err := NewCcfGroup("G", CcfBeta, []string{"a", "b", "c"}, []float64{0.1, 0.1})
	require.Error(t, err)

	g, err := NewCcfGroup("G", CcfBeta, []string{"a", "b"}, []float64{0.1})
	require.NoError(t, err)
	require.Equal(t, "g", g.ID)
}

func TestCcfGroupFactorsMustNotExceedOne(t *testing.T) {
	_, err := NewCcfGroup("G", CcfMGL, []string{"a", "b", "c"}, []float64{0.6, 0.6})
	require.Error(t, err)
}

func TestCcfGroupExpandBetaFactor(t *testing.T) {
	g, err := NewCcfGroup("PumpsCCF", CcfBeta, []string{"PumpA", "PumpB"}, []float64{0.1})
	require.NoError(t, err)

	expansion, err := g.Expand(map[string]float64{"pumpa": 0.02, "pumpb": 0.02})
	require.NoError(t, err)

	// One shared level-2 combination event plus two independent events.
	require.Len(t, expansion.BasicEvents, 3)
	require.Len(t, expansion.Replacement, 2)

	for _, member := range g.Members {
		formula, ok := expansion.Replacement[normalizeID(member)]
		require.True(t, ok)
		require.Equal(t, OR, formula.Kind)
		require.Len(t, formula.Args, 2) // independent + the one shared ccf event
	}

	var total float64
	for _, be := range expansion.BasicEvents {
		total += be.Prob
	}
	// Independent fractions (0.9*0.02 each) plus the shared ccf event (0.1*0.02).
	require.InDelta(t, 0.9*0.02*2+0.1*0.02, total, 1e-12)
}

func TestCcfGroupExpandMGLThreeMembers(t *testing.T) {
	g, err := NewCcfGroup("ValvesCCF", CcfMGL, []string{"V1", "V2", "V3"}, []float64{0.05, 0.02})
	require.NoError(t, err)

	expansion, err := g.Expand(map[string]float64{"v1": 0.01, "v2": 0.01, "v3": 0.01})
	require.NoError(t, err)

	// 3 independent events + 3 pair-combination events + 1 triple-combination event.
	require.Len(t, expansion.BasicEvents, 7)

	formula := expansion.Replacement["v1"]
	require.Equal(t, OR, formula.Kind)
	// independent + 2 pair combos containing v1 + 1 triple combo.
	require.Len(t, formula.Args, 4)
}

func TestCcfGroupExpandMissingProbability(t *testing.T) {
	g, err := NewCcfGroup("G", CcfBeta, []string{"a", "b"}, []float64{0.1})
	require.NoError(t, err)
	_, err = g.Expand(map[string]float64{"a": 0.01})
	require.Error(t, err)
}
