// Package preprocess rewrites an indexed fault tree into a normalized form:
// every internal gate is AND or OR, every gate-to-gate edge is positive so
// negation rests only on basic-event leaves (a basic-event child may still
// be a negative index), and independent subgraphs are marked as modules. It is
// a pure transformation over *indexed.IndexedFaultTree: no logging, no
// ambient state, so its properties can be tested as plain functions.
package preprocess

import "github.com/faultgraph/engine/indexed"

// Run applies every transformation to fixpoint, then performs module
// detection once over the stabilized graph, per SPEC_FULL.md §4.2's ordering:
// constant folding, NULL elimination, complement propagation, XOR expansion,
// ATLEAST expansion, gate coalescing -- repeated until nothing changes --
// followed by a single module-detection pass.
func Run(tree *indexed.IndexedFaultTree) {
	memo := complementMemo{}
	for {
		changed := false
		changed = foldConstants(tree) || changed
		changed = eliminateNulls(tree) || changed
		changed = propagateComplements(tree, memo) || changed
		changed = expandXOR(tree) || changed
		changed = expandAtleast(tree) || changed
		changed = coalesceGates(tree) || changed
		if !changed {
			break
		}
	}
	detectModules(tree)
}

// normalGates returns every gate index still in Normal state, in ascending
// order, including the top event.
func normalGates(tree *indexed.IndexedFaultTree) []int {
	var out []int
	for _, idx := range tree.Gates() {
		g := tree.GetGate(idx)
		if g.GateState() == indexed.StateNormal {
			out = append(out, idx)
		}
	}
	return out
}
