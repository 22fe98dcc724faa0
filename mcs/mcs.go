// Package mcs generates minimal cut sets from a preprocessed indexed fault
// tree: bottom-up set-of-sets expansion, cartesian product at AND gates,
// union at OR gates, minimization at the root. It is pure and stateless —
// no logging, no config, no ambient state — the same way package preprocess
// is.
package mcs

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/faultgraph/engine/indexed"
	"github.com/faultgraph/engine/model"
)

// CutSet is a minimal cut set candidate: a set of signed basic-event literal
// indices. A positive entry is the event itself; a negative entry is its
// complement.
type CutSet []int

// Generate walks tree bottom-up from its top event and returns the
// minimized, canonically ordered minimal cut sets, each bounded to at most
// limitOrder literals. The top event's own Null/Unity collapse is handled
// first since it short-circuits the whole walk: Unity means the top event
// is certain regardless of any basic event, represented by the single empty
// cut set; Null means it can never occur, represented by no cut sets at all.
func Generate(tree *indexed.IndexedFaultTree, limitOrder int) []CutSet {
	top := tree.TopEvent()
	switch top.GateState() {
	case indexed.StateUnity:
		return []CutSet{{}}
	case indexed.StateNull:
		return nil
	}

	memo := make(map[int][]CutSet)
	raw := generateGate(tree, top.Index(), limitOrder, memo)
	return minimize(raw)
}

// generateGate returns the set-of-sets for the gate at idx, memoized by
// index. Memoization is safe for every gate, module-marked or not: the
// bottom-up expansion is a pure function of a gate's own subtree, never of
// the path used to reach it, so a gate reached through two different
// parents is computed exactly once either way. The module flag preprocess
// sets is not read here.
func generateGate(tree *indexed.IndexedFaultTree, idx int, limitOrder int, memo map[int][]CutSet) []CutSet {
	if sets, ok := memo[idx]; ok {
		return sets
	}
	g := tree.GetGate(idx)

	var sets []CutSet
	switch g.GateState() {
	case indexed.StateUnity:
		sets = []CutSet{{}}
	case indexed.StateNull:
		sets = nil
	default:
		switch g.Kind() {
		case model.AND:
			sets = andChildren(tree, g.Children(), limitOrder, memo)
		case model.OR:
			sets = orChildren(tree, g.Children(), limitOrder, memo)
		default:
			panic(fmt.Sprintf("mcs: gate %d is %v, not AND/OR; preprocessing did not reach fixpoint", idx, g.Kind()))
		}
	}
	memo[idx] = sets
	return sets
}

// childSets resolves one signed edge to the set-of-sets it contributes.
func childSets(tree *indexed.IndexedFaultTree, signedChild int, limitOrder int, memo map[int][]CutSet) []CutSet {
	idx := signedChild
	if idx < 0 {
		idx = -idx
	}
	switch tree.KindOf(idx) {
	case indexed.KindGate:
		if signedChild < 0 {
			panic(fmt.Sprintf("mcs: negative edge into gate %d; complement propagation should have resolved it", idx))
		}
		return generateGate(tree, idx, limitOrder, memo)
	case indexed.KindBasicEvent:
		return []CutSet{{signedChild}}
	default:
		panic(fmt.Sprintf("mcs: unresolved constant at index %d; constant folding should have removed it", idx))
	}
}

// andChildren computes the cartesian product of every child's set-of-sets,
// folding children in left to right and bailing out as soon as the running
// product collapses to nothing (an AND with one impossible child is itself
// impossible, so no later child can ever contribute anything again).
func andChildren(tree *indexed.IndexedFaultTree, children []int, limitOrder int, memo map[int][]CutSet) []CutSet {
	acc := []CutSet{{}}
	for _, c := range children {
		acc = cartesianProduct(acc, childSets(tree, c, limitOrder, memo), limitOrder)
		if len(acc) == 0 {
			return nil
		}
	}
	return acc
}

// orChildren unions every child's set-of-sets, deduplicating.
func orChildren(tree *indexed.IndexedFaultTree, children []int, limitOrder int, memo map[int][]CutSet) []CutSet {
	seen := make(map[string]struct{})
	var out []CutSet
	for _, c := range children {
		for _, s := range childSets(tree, c, limitOrder, memo) {
			if len(s) > limitOrder {
				continue
			}
			key := setKey(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// cartesianProduct combines every pair (x in a, y in b) into their union,
// discarding a pair whose union has a complement clash or exceeds
// limitOrder, and deduplicating the survivors.
func cartesianProduct(a, b []CutSet, limitOrder int) []CutSet {
	out := make([]CutSet, 0, len(a)*len(b))
	seen := make(map[string]struct{}, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			combined, ok := combine(x, y, limitOrder)
			if !ok {
				continue
			}
			key := setKey(combined)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, combined)
		}
	}
	return out
}

// combine unions two cut sets, rejecting the result if an event's positive
// and negative literal would both be present, or if the union exceeds
// limitOrder.
func combine(x, y CutSet, limitOrder int) (CutSet, bool) {
	present := make(map[int]int, len(x)+len(y))
	out := make(CutSet, 0, len(x)+len(y))
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
	for _, lit := range x {
		if !add(lit) {
			return nil, false
		}
	}
	for _, lit := range y {
		if !add(lit) {
			return nil, false
		}
	}
	if len(out) > limitOrder {
		return nil, false
	}
	return out, true
}

// literalLess orders signed literals ascending by magnitude, then by sign
// (negative before positive) for equal magnitude.
func literalLess(a, b int) bool {
	aa, bb := a, b
	if aa < 0 {
		aa = -aa
	}
	if bb < 0 {
		bb = -bb
	}
	if aa != bb {
		return aa < bb
	}
	return a < b
}

func sortSet(s CutSet) CutSet {
	out := append(CutSet{}, s...)
	sort.Slice(out, func(i, j int) bool { return literalLess(out[i], out[j]) })
	return out
}

// setLess orders two cut sets lexicographically by their canonical literal
// order, a shorter set sorting first when it is a prefix of a longer one.
func setLess(a, b CutSet) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return literalLess(a[i], b[i])
		}
	}
	return len(a) < len(b)
}

func setKey(s CutSet) string {
	sorted := sortSet(s)
	buf := make([]byte, 0, len(sorted)*7)
	for _, lit := range sorted {
		buf = strconv.AppendInt(buf, int64(lit), 10)
		buf = append(buf, ',')
	}
	return string(buf)
}

func canonicalize(sets []CutSet) []CutSet {
	out := make([]CutSet, len(sets))
	for i, s := range sets {
		out[i] = sortSet(s)
	}
	sort.Slice(out, func(i, j int) bool { return setLess(out[i], out[j]) })
	return out
}

// minimize removes every cut set that is a (non-strict) superset of another
// surviving cut set, then returns the canonically ordered result. Shorter
// sets are tested first so a minimal set is always kept before any of its
// supersets are considered.
func minimize(sets []CutSet) []CutSet {
	ordered := make([]CutSet, len(sets))
	copy(ordered, sets)
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) < len(ordered[j]) })

	var kept []CutSet
	for _, s := range ordered {
		minimal := true
		for _, k := range kept {
			if isSubset(k, s) {
				minimal = false
				break
			}
		}
		if minimal {
			kept = append(kept, s)
		}
	}
	return canonicalize(kept)
}

func isSubset(small, big CutSet) bool {
	if len(small) > len(big) {
		return false
	}
	present := make(map[int]struct{}, len(big))
	for _, lit := range big {
		present[lit] = struct{}{}
	}
	for _, lit := range small {
		if _, ok := present[lit]; !ok {
			return false
		}
	}
	return true
}

// MaxOrder returns the largest cut set size in sets, or 0 for an empty
// collection.
func MaxOrder(sets []CutSet) int {
	max := 0
	for _, s := range sets {
		if len(s) > max {
			max = len(s)
		}
	}
	return max
}

// OrderDistribution returns, indexed by cut set order, how many cut sets of
// that order are present; OrderDistribution(sets)[0] is 1 only for the
// Unity empty-set case, never otherwise (a minimized collection cannot
// contain the empty set alongside anything else).
func OrderDistribution(sets []CutSet) []int {
	dist := make([]int, MaxOrder(sets)+1)
	for _, s := range sets {
		dist[len(s)]++
	}
	return dist
}
