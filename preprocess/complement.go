package preprocess

import (
	"github.com/faultgraph/engine/indexed"
	"github.com/faultgraph/engine/model"
)

// complementMemo caches, per original gate index, the index of its De
// Morgan dual gate, so repeated negative references to the same gate share
// one complement instead of rebuilding it on every fixpoint pass. It is
// scoped to a single Run call via the preprocessing state, never shared
// across trees.
type complementMemo map[int]int

// propagateComplements rewrites NAND/NOR gates in place into their De Morgan
// dual (OR/AND with every child inverted) and resolves any negative edge
// pointing at a gate by rewiring it to that gate's (lazily built) complement,
// so that after enough fixpoint passes every remaining gate-to-gate edge is
// positive and all negation rests on basic-event leaves.
func propagateComplements(tree *indexed.IndexedFaultTree, memo complementMemo) bool {
	changed := false
	for _, idx := range normalGates(tree) {
		g := tree.GetGate(idx)
		switch g.Kind() {
		case model.NAND:
			g.SetKind(model.OR)
			g.InvertChildren()
			changed = true
		case model.NOR:
			g.SetKind(model.AND)
			g.InvertChildren()
			changed = true
		}
	}

	for _, idx := range normalGates(tree) {
		g := tree.GetGate(idx)
		if g.Kind() != model.AND && g.Kind() != model.OR {
			continue
		}
		for _, c := range g.Children() {
			if c >= 0 || !tree.IsGateIndex(-c) {
				continue
			}
			comp, ok := complementOf(tree, memo, -c)
			if !ok {
				continue
			}
			g.EraseChild(c)
			if n := tree.NodeAt(c); n != nil {
				n.EraseParent(idx)
			}
			if g.AddChild(comp) {
				if n := tree.NodeAt(comp); n != nil {
					n.AddParent(idx)
				}
			}
			changed = true
		}
	}
	return changed
}

// complementOf returns (building if necessary) the gate computing the
// logical negation of the gate at originalIdx. It only knows how to build a
// complement for AND/OR gates; for any other (not yet normalized) kind it
// reports ok=false so the caller retries on a later fixpoint pass.
func complementOf(tree *indexed.IndexedFaultTree, memo complementMemo, originalIdx int) (int, bool) {
	if idx, ok := memo[originalIdx]; ok {
		return idx, true
	}
	orig := tree.GetGate(originalIdx)
	var dualKind model.GateKind
	switch orig.Kind() {
	case model.AND:
		dualKind = model.OR
	case model.OR:
		dualKind = model.AND
	default:
		return 0, false
	}
	dual := tree.CreateGate(dualKind)
	for _, c := range orig.Children() {
		dual.InitiateWithChild(-c)
		if n := tree.NodeAt(-c); n != nil {
			n.AddParent(dual.Index())
		}
	}
	memo[originalIdx] = dual.Index()
	return dual.Index(), true
}
