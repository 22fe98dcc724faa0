// Package uncertainty runs Monte Carlo sampling of the top event probability
// over a minimal cut set collection, drawing per-trial samples from each
// uncertain basic event's attached distribution. Like packages preprocess,
// mcs, and probability, it is pure: no logging, no ambient state.
package uncertainty

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/faultgraph/engine/mcs"
	"github.com/faultgraph/engine/model"
	"github.com/faultgraph/engine/probability"
)

// EventProbability resolves a basic event's point probability, the same
// contract package probability uses.
type EventProbability = probability.EventProbability

// DistributionLookup resolves a basic event's attached distribution, or nil
// if the event is constant for this analysis and should be factored into
// the term's constant multiplier instead of resampled.
type DistributionLookup func(index int) *model.Distribution

// term is one addend (or, for the default approximation's even-k terms,
// subtrahend) of the top-probability expression, with every constant
// literal already folded into a scalar multiplier so a trial only resamples
// the literals that actually vary.
type term struct {
	constMult float64
	uncertain []int
}

// HistogramBin is one bucket of the 20-bin density estimate over the sample
// vector.
type HistogramBin struct {
	Lower, Upper float64
	Count        int
}

// Result collects the uncertainty engine's output statistics.
type Result struct {
	Mean         float64
	Sigma        float64
	CI           [2]float64
	Distribution []HistogramBin
	Quantiles    []float64
	Warnings     []string
}

// Engine runs Monte Carlo sampling of the top event probability over a
// minimal cut set collection's uncertain basic events.
type Engine struct{}

// Sample runs settings.NumTrials Monte Carlo iterations and returns the
// resulting statistics. Trials are partitioned across a fixed worker pool
// via errgroup, but each trial seeds its own MT19937 stream independently
// from (settings.Seed, trial index) -- see rng.go's seedForTrial -- so the
// combined sample vector is identical regardless of how trials are sliced
// across workers or the order in which they complete. ctx is honored only
// between chunks, never mid-trial, per §5's "no cancellation within the
// core" rule.
func (Engine) Sample(ctx context.Context, sets []mcs.CutSet, settings model.Settings, prob EventProbability, distOf DistributionLookup) (Result, error) {
	if len(sets) == 1 && len(sets[0]) == 0 {
		return unityResult(), nil
	}
	if len(sets) == 0 {
		return summarize(make([]float64, settings.NumTrials)), nil
	}

	isConstant := func(idx int) bool { return distOf(idx) == nil }

	filtered := make([]mcs.CutSet, 0, len(sets))
	for _, cs := range sets {
		if probability.CutProbability(cs, prob) >= settings.CutOff {
			filtered = append(filtered, cs)
		}
	}

	pos, neg := buildTerms(filtered, settings, prob, isConstant)

	n := settings.NumTrials
	samples := make([]float64, n)

	const maxWorkers = 8
	workers := maxWorkers
	if n < workers {
		workers = 1
	}
	chunk := (n + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		start := start
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			for trial := start; trial < end; trial++ {
				rng := NewMT19937(seedForTrial(settings.Seed, trial))
				sampled := sampleUncertain(pos, neg, distOf, rng)
				samples[trial] = evaluate(settings.Approx, pos, neg, sampled)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("uncertainty sampling: %w", err)
	}

	return summarize(samples), nil
}

// buildTerms splits the cut set collection into the positive/negative term
// lists the configured approximation needs: one term per cut set for
// rare-event and MCUB (they aggregate MCS independently), or the truncated
// Sylvester-Poincare k-wise intersection terms for the default series.
func buildTerms(sets []mcs.CutSet, settings model.Settings, prob EventProbability, isConstant func(int) bool) (pos, neg []term) {
	switch settings.Approx {
	case model.ApproxRareEvent, model.ApproxMCUB:
		pos = make([]term, 0, len(sets))
		for _, cs := range sets {
			pos = append(pos, splitTerm(cs, prob, isConstant))
		}
		return pos, nil
	default:
		posSets, negSets := probability.SeriesTerms(sets, settings.NumSums)
		for _, cs := range posSets {
			pos = append(pos, splitTerm(cs, prob, isConstant))
		}
		for _, cs := range negSets {
			neg = append(neg, splitTerm(cs, prob, isConstant))
		}
		return pos, neg
	}
}

// splitTerm factors a cut set's constant literals into a scalar multiplier
// and returns the remaining uncertain literals as-is.
func splitTerm(cs mcs.CutSet, prob EventProbability, isConstant func(int) bool) term {
	mult := 1.0
	var uncertain []int
	for _, lit := range cs {
		idx := lit
		if idx < 0 {
			idx = -idx
		}
		if isConstant(idx) {
			p := prob(idx)
			if lit < 0 {
				p = 1 - p
			}
			mult *= p
			continue
		}
		uncertain = append(uncertain, lit)
	}
	return term{constMult: mult, uncertain: uncertain}
}

// sampleUncertain draws one fresh sample per uncertain event referenced by
// pos/neg, in ascending index order, and returns them keyed by index. All
// distributions in the analysis share this one rng stream, per §4.5's "one
// stream shared across all distributions"; the ascending-index draw order
// makes that sharing deterministic regardless of the order in which the
// term lists mention each event.
func sampleUncertain(pos, neg []term, distOf DistributionLookup, rng *MT19937) map[int]float64 {
	seen := make(map[int]struct{})
	collect := func(terms []term) {
		for _, t := range terms {
			for _, lit := range t.uncertain {
				idx := lit
				if idx < 0 {
					idx = -idx
				}
				seen[idx] = struct{}{}
			}
		}
	}
	collect(pos)
	collect(neg)

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make(map[int]float64, len(indices))
	for _, idx := range indices {
		out[idx] = clamp01(Sample(distOf(idx), rng))
	}
	return out
}

// termValue evaluates one term against a trial's sampled uncertain values.
func termValue(t term, sampled map[int]float64) float64 {
	v := t.constMult
	for _, lit := range t.uncertain {
		idx := lit
		if idx < 0 {
			idx = -idx
		}
		s := sampled[idx]
		if lit < 0 {
			s = 1 - s
		}
		v *= s
	}
	return v
}

// evaluate aggregates one trial's term values into the scalar P_top outcome
// under the configured approximation.
func evaluate(approx model.Approximation, pos, neg []term, sampled map[int]float64) float64 {
	switch approx {
	case model.ApproxRareEvent:
		sum := 0.0
		for _, t := range pos {
			sum += termValue(t, sampled)
		}
		return sum
	case model.ApproxMCUB:
		complement := 1.0
		for _, t := range pos {
			complement *= 1 - termValue(t, sampled)
		}
		return 1 - complement
	default:
		sum := 0.0
		for _, t := range pos {
			sum += termValue(t, sampled)
		}
		for _, t := range neg {
			sum -= termValue(t, sampled)
		}
		return sum
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// unityResult implements §4.5's UNITY edge case: a trivial top event that is
// certain regardless of any basic event's sampled value.
func unityResult() Result {
	quantiles := make([]float64, 20)
	for i := range quantiles {
		quantiles[i] = 1
	}
	return Result{
		Mean:         1,
		Sigma:        0,
		CI:           [2]float64{1, 1},
		Distribution: []HistogramBin{{Lower: 1, Upper: 1, Count: 1}},
		Quantiles:    quantiles,
		Warnings:     []string{"UNITY case"},
	}
}

// summarize computes mean, variance/sigma, a 95% CI, a 20-bin histogram,
// and 20 evenly spaced quantiles over the sample vector.
func summarize(samples []float64) Result {
	n := len(samples)
	if n == 0 {
		return Result{}
	}

	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(n)

	variance := 0.0
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	if n > 1 {
		variance /= float64(n - 1)
	}
	sigma := math.Sqrt(variance)

	ciHalf := 1.96 * sigma / math.Sqrt(float64(n))

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	return Result{
		Mean:         mean,
		Sigma:        sigma,
		CI:           [2]float64{mean - ciHalf, mean + ciHalf},
		Distribution: histogram(sorted, 20),
		Quantiles:    quantiles(sorted, 20),
	}
}

// histogram buckets a sorted sample vector into bins evenly spaced bins
// over [min,max].
func histogram(sorted []float64, bins int) []HistogramBin {
	if len(sorted) == 0 {
		return nil
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []HistogramBin{{Lower: lo, Upper: hi, Count: len(sorted)}}
	}
	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Lower: lo + float64(i)*width, Upper: lo + float64(i+1)*width}
	}
	for _, v := range sorted {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// quantiles returns n evenly spaced quantiles at p = 1/n, 2/n, ..., 1.0,
// linearly interpolated between sorted samples.
func quantiles(sorted []float64, n int) []float64 {
	if len(sorted) == 0 {
		return nil
	}
	out := make([]float64, n)
	for i := 1; i <= n; i++ {
		out[i-1] = quantileAt(sorted, float64(i)/float64(n))
	}
	return out
}

func quantileAt(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
