package probability

import "github.com/faultgraph/engine/mcs"

// UnionLiterals combines two cut sets' literals, as the conjunction of the
// two underlying Boolean terms they represent. It fails the moment an
// event's positive and negative literal would both be present, since no
// superset of a clashing intersection can contribute anything either.
//
// Exported so package uncertainty can build the same k-wise intersection
// terms this series walks, once, and reuse them across every Monte Carlo
// trial instead of re-deriving the combinatorics per trial.
func UnionLiterals(a, b mcs.CutSet) (mcs.CutSet, bool) {
	present := make(map[int]int, len(a)+len(b))
	out := make(mcs.CutSet, 0, len(a)+len(b))
	add := func(lit int) bool {
		mag, sign := lit, 1
		if lit < 0 {
			mag, sign = -lit, -1
		}
		if existing, ok := present[mag]; ok {
			return existing == sign
		}
		present[mag] = sign
		out = append(out, lit)
		return true
	}
	for _, lit := range a {
		if !add(lit) {
			return nil, false
		}
	}
	for _, lit := range b {
		if !add(lit) {
			return nil, false
		}
	}
	return out, true
}

// SeriesTerms returns the k-wise literal-union terms of the truncated
// Sylvester-Poincare expansion over sets, for k = 1..numSums, split into the
// odd-k terms (added) and even-k terms (subtracted) — the same pos_terms_/
// neg_terms_ split the original engine builds once and reuses across every
// trial. A partial intersection that already clashes is pruned immediately,
// since extending it with more literals can never make it non-clashing
// again.
func SeriesTerms(sets []mcs.CutSet, numSums int) (pos, neg []mcs.CutSet) {
	n := len(sets)

	var walk func(start, depth, target int, literals mcs.CutSet)
	walk = func(start, depth, target int, literals mcs.CutSet) {
		if depth == target {
			if target%2 == 1 {
				pos = append(pos, literals)
			} else {
				neg = append(neg, literals)
			}
			return
		}
		for i := start; i < n; i++ {
			combined, ok := UnionLiterals(literals, sets[i])
			if !ok {
				continue
			}
			walk(i+1, depth+1, target, combined)
		}
	}

	for k := 1; k <= numSums && k <= n; k++ {
		walk(0, 0, k, mcs.CutSet{})
	}
	return pos, neg
}

// seriesSum implements the truncated Sylvester-Poincare series itself: the
// signed sum of CutProbability over every term SeriesTerms produces.
func seriesSum(entries []Entry, numSums int, prob EventProbability) float64 {
	sets := make([]mcs.CutSet, len(entries))
	for i, e := range entries {
		sets[i] = e.Set
	}
	pos, neg := SeriesTerms(sets, numSums)

	total := 0.0
	for _, t := range pos {
		total += CutProbability(t, prob)
	}
	for _, t := range neg {
		total -= CutProbability(t, prob)
	}
	return total
}
