// Package probability computes the top event probability and per-event
// Fussell-Vesely importance from a minimal cut set collection, per the
// rare-event, MCUB, or truncated Sylvester-Poincare approximations. It is
// pure: no logging, no ambient state, same as packages preprocess and mcs.
package probability

import (
	"sort"

	"github.com/faultgraph/engine/mcs"
	"github.com/faultgraph/engine/model"
)

// EventProbability resolves a basic event's point probability from its
// indexed-graph index.
type EventProbability func(index int) float64

// Entry pairs one minimal cut set with its own probability.
type Entry struct {
	Set         mcs.CutSet
	Probability float64
}

// ImportanceEntry is one basic event's Fussell-Vesely contribution.
type ImportanceEntry struct {
	EventIndex   int
	Contribution float64
	Relative     float64
}

// Result collects everything the probability engine computes for one MCS
// collection.
type Result struct {
	// Entries holds every generated cut set's probability, before cut_off
	// filtering, for reporting.
	Entries []Entry
	// NumProbMCS is the number of cut sets that passed cut_off and were
	// used to aggregate PTotal.
	NumProbMCS int
	PTotal     float64
	Importance []ImportanceEntry
	// RareEventOverflow reports PTotal > 1 under the rare-event
	// approximation: a numeric warning per §7, not a fatal condition.
	RareEventOverflow bool
}

// CutProbability computes the product, over a cut set's literals, of each
// literal's probability contribution: p(x) for a positive literal, 1-p(x)
// for its complement.
func CutProbability(cs mcs.CutSet, prob EventProbability) float64 {
	p := 1.0
	for _, lit := range cs {
		idx := lit
		if idx < 0 {
			idx = -idx
		}
		pe := prob(idx)
		if lit < 0 {
			pe = 1 - pe
		}
		p *= pe
	}
	return p
}

// Compute runs the probability engine over sets under settings, resolving
// each literal's point probability through prob.
func Compute(sets []mcs.CutSet, settings model.Settings, prob EventProbability) Result {
	entries := make([]Entry, 0, len(sets))
	for _, cs := range sets {
		entries = append(entries, Entry{Set: cs, Probability: CutProbability(cs, prob)})
	}

	aggregated := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Probability >= settings.CutOff {
			aggregated = append(aggregated, e)
		}
	}

	pTotal, overflow := aggregate(aggregated, settings, prob)

	return Result{
		Entries:           entries,
		NumProbMCS:        len(aggregated),
		PTotal:            pTotal,
		RareEventOverflow: overflow,
		Importance:        importance(aggregated, settings, prob, pTotal),
	}
}

// aggregate dispatches to the configured approximation. Only the rare-event
// path can report an overflow warning; MCUB is bounded to [0,1] by
// construction and the truncated series is a difference of bounded partial
// sums that this engine does not itself flag (the distilled spec only calls
// out the rare-event overflow case).
func aggregate(entries []Entry, settings model.Settings, prob EventProbability) (float64, bool) {
	switch settings.Approx {
	case model.ApproxRareEvent:
		sum := 0.0
		for _, e := range entries {
			sum += e.Probability
		}
		return sum, sum > 1
	case model.ApproxMCUB:
		complement := 1.0
		for _, e := range entries {
			complement *= 1 - e.Probability
		}
		return 1 - complement, false
	default:
		return seriesSum(entries, settings.NumSums, prob), false
	}
}

// importance computes Fussell-Vesely importance for every basic event that
// appears as a positive literal in at least one aggregated cut set: the
// same approximation recomputed over the subset of cut sets containing that
// event's positive literal, divided by the overall PTotal.
func importance(aggregated []Entry, settings model.Settings, prob EventProbability, pTotal float64) []ImportanceEntry {
	seen := make(map[int]struct{})
	for _, e := range aggregated {
		for _, lit := range e.Set {
			if lit > 0 {
				seen[lit] = struct{}{}
			}
		}
	}
	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]ImportanceEntry, 0, len(indices))
	for _, idx := range indices {
		var subset []Entry
		for _, e := range aggregated {
			for _, lit := range e.Set {
				if lit == idx {
					subset = append(subset, e)
					break
				}
			}
		}
		contribution, _ := aggregate(subset, settings, prob)
		relative := 0.0
		if pTotal != 0 {
			relative = contribution / pTotal
		}
		out = append(out, ImportanceEntry{EventIndex: idx, Contribution: contribution, Relative: relative})
	}
	return out
}
