package uncertainty

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultgraph/engine/mcs"
	"github.com/faultgraph/engine/model"
)

func constProb(p map[int]float64) EventProbability {
	return func(idx int) float64 { return p[idx] }
}

// TestSampleUnityCaseShortCircuits covers spec.md's UNITY scenario: MCS =
// {{}} must short-circuit to mean=1, sigma=0, CI=(1,1), a singleton
// distribution, all quantiles 1, and a "UNITY case" warning.
func TestSampleUnityCaseShortCircuits(t *testing.T) {
	settings := model.DefaultSettings()
	settings.NumTrials = 100

	res, err := Engine{}.Sample(context.Background(), []mcs.CutSet{{}}, settings, constProb(nil), func(int) *model.Distribution { return nil })
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.Mean)
	assert.Equal(t, 0.0, res.Sigma)
	assert.Equal(t, [2]float64{1, 1}, res.CI)
	require.Len(t, res.Quantiles, 20)
	for _, q := range res.Quantiles {
		assert.Equal(t, 1.0, q)
	}
	assert.Contains(t, res.Warnings, "UNITY case")
}

// TestSampleAllConstantMatchesPointProbability covers the Monte-Carlo
// convergence property from §8: when every basic event is constant (no
// distribution), every trial evaluates the same deterministic P_top, so the
// sample mean must equal the probability engine's own point value exactly,
// and sigma must be zero.
func TestSampleAllConstantMatchesPointProbability(t *testing.T) {
	sets := []mcs.CutSet{{1}, {2}}
	prob := constProb(map[int]float64{1: 0.1, 2: 0.1})

	settings := model.DefaultSettings()
	settings.Approx = model.ApproxMCUB
	settings.NumTrials = 50

	res, err := Engine{}.Sample(context.Background(), sets, settings, prob, func(int) *model.Distribution { return nil })
	require.NoError(t, err)

	assert.InDelta(t, 0.19, res.Mean, 1e-12)
	assert.InDelta(t, 0, res.Sigma, 1e-12)
}

// TestSampleUncertainEventConvergesToDistributionMean checks that sampling
// a single uncertain event under the rare-event approximation converges
// close to its distribution's analytic mean as num_trials grows, per §8's
// Monte-Carlo convergence property (mean ≈ P_top within 4σ/√n).
func TestSampleUncertainEventConvergesToDistributionMean(t *testing.T) {
	sets := []mcs.CutSet{{1}}
	prob := constProb(map[int]float64{1: 0.5})
	dist := &model.Distribution{Kind: model.DistUniform, A: 0.4, B: 0.6}

	settings := model.DefaultSettings()
	settings.Approx = model.ApproxRareEvent
	settings.NumTrials = 5000
	settings.Seed = 42

	res, err := Engine{}.Sample(context.Background(), sets, settings, prob, func(idx int) *model.Distribution {
		if idx == 1 {
			return dist
		}
		return nil
	})
	require.NoError(t, err)

	bound := 4 * res.Sigma / math.Sqrt(float64(settings.NumTrials))
	if bound < 0.01 {
		bound = 0.01
	}
	assert.InDelta(t, 0.5, res.Mean, bound)
}

// TestSampleDeterministicForFixedSeed covers §8's determinism property:
// repeated runs with the same seed and num_trials must be bit-stable.
func TestSampleDeterministicForFixedSeed(t *testing.T) {
	sets := []mcs.CutSet{{1}, {2}}
	prob := constProb(map[int]float64{1: 0.3, 2: 0.4})
	dist := &model.Distribution{Kind: model.DistUniform, A: 0, B: 1}
	distOf := func(idx int) *model.Distribution { return dist }

	settings := model.DefaultSettings()
	settings.Approx = model.ApproxDefault
	settings.NumSums = 2
	settings.NumTrials = 777
	settings.Seed = 99

	a, err := Engine{}.Sample(context.Background(), sets, settings, prob, distOf)
	require.NoError(t, err)
	b, err := Engine{}.Sample(context.Background(), sets, settings, prob, distOf)
	require.NoError(t, err)

	assert.Equal(t, a.Mean, b.Mean)
	assert.Equal(t, a.Sigma, b.Sigma)
	assert.Equal(t, a.Quantiles, b.Quantiles)
}

func TestHistogramBinsCoverFullRange(t *testing.T) {
	samples := []float64{0, 0.25, 0.5, 0.75, 1}
	bins := histogram(samples, 20)
	require.Len(t, bins, 20)
	assert.Equal(t, 0.0, bins[0].Lower)
	assert.Equal(t, 1.0, bins[len(bins)-1].Upper)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, len(samples), total)
}

func TestQuantilesAreNonDecreasingAndCoverFullRange(t *testing.T) {
	samples := []float64{0.1, 0.2, 0.3, 0.4, 0.9}
	qs := quantiles(samples, 20)
	require.Len(t, qs, 20)
	for i := 1; i < len(qs); i++ {
		assert.GreaterOrEqual(t, qs[i], qs[i-1])
	}
	assert.InDelta(t, 0.9, qs[len(qs)-1], 1e-12)
}

func TestSampleDistributionsClampToUnitInterval(t *testing.T) {
	rng := NewMT19937(7)
	dists := []*model.Distribution{
		{Kind: model.DistUniform, A: 0.1, B: 0.9},
		{Kind: model.DistTriangular, Lower: 0, Mode: 0.3, Upper: 1},
		{Kind: model.DistNormal, Mean: 0.5, Sigma: 0.1},
		{Kind: model.DistLogNormal, Mean: -2, Sigma: 0.3},
		{Kind: model.DistGamma, Shape: 2, Scale: 0.1},
		{Kind: model.DistBeta, Alpha: 2, Beta: 5},
		{Kind: model.DistWeibull, Shape: 1.5, Scale: 0.2},
		{Kind: model.DistExponential, Rate: 5},
		{Kind: model.DistPoisson, Mean: 0.2},
	}
	for _, d := range dists {
		for i := 0; i < 200; i++ {
			v := clamp01(Sample(d, rng))
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}
