package preprocess

import (
	"github.com/faultgraph/engine/indexed"
	"github.com/faultgraph/engine/model"
)

func isConstant(tree *indexed.IndexedFaultTree, signedChild int) bool {
	idx := signedChild
	if idx < 0 {
		idx = -idx
	}
	return tree.KindOf(idx) == indexed.KindConstant
}

// constantEffective returns the Boolean value a signed edge to a Constant
// node contributes: the constant's state, inverted if the edge is negative.
func constantEffective(tree *indexed.IndexedFaultTree, signedChild int) bool {
	idx := signedChild
	negated := idx < 0
	if negated {
		idx = -idx
	}
	state := tree.GetConstant(idx).State
	if negated {
		return !state
	}
	return state
}

func eraseChildAndParent(tree *indexed.IndexedFaultTree, g *indexed.IGate, child int) {
	g.EraseChild(child)
	if n := tree.NodeAt(child); n != nil {
		n.EraseParent(g.Index())
	}
}

// foldConstants removes Boolean-identity constant children (a true child of
// an AND/ATLEAST contributes nothing but still counts toward an ATLEAST
// vote; a false child of an OR contributes nothing) and collapses a gate to
// Null/Unity as soon as a single constant child decides its outcome.
func foldConstants(tree *indexed.IndexedFaultTree) bool {
	changed := false
	for _, idx := range normalGates(tree) {
		g := tree.GetGate(idx)
		if g.GateState() != indexed.StateNormal {
			continue
		}
		switch g.Kind() {
		case model.AND:
			if foldAndLike(tree, g, false) {
				changed = true
			}
		case model.OR:
			if foldOrLike(tree, g, false) {
				changed = true
			}
		case model.NAND:
			if foldAndLike(tree, g, true) {
				changed = true
			}
		case model.NOR:
			if foldOrLike(tree, g, true) {
				changed = true
			}
		case model.XOR:
			if foldXOR(tree, g) {
				changed = true
			}
		case model.ATLEAST:
			if foldAtleast(tree, g) {
				changed = true
			}
		}
	}
	return changed
}

// foldAndLike handles AND and, when invert is true, its De Morgan dual NAND.
func foldAndLike(tree *indexed.IndexedFaultTree, g *indexed.IGate, invert bool) bool {
	changed := false
	for _, c := range g.Children() {
		if !isConstant(tree, c) {
			continue
		}
		eff := constantEffective(tree, c)
		if !eff {
			if invert {
				g.MakeUnity() // NAND with a guaranteed-false input is vacuously true
			} else {
				g.Nullify()
			}
			return true
		}
		eraseChildAndParent(tree, g, c)
		changed = true
	}
	if g.GateState() != indexed.StateNormal {
		return changed
	}
	if g.NumChildren() == 0 {
		if invert {
			g.Nullify() // NAND of nothing: AND(nothing)=true, negated=false
		} else {
			g.MakeUnity()
		}
		changed = true
	}
	return changed
}

// foldOrLike handles OR and, when invert is true, its De Morgan dual NOR.
func foldOrLike(tree *indexed.IndexedFaultTree, g *indexed.IGate, invert bool) bool {
	changed := false
	for _, c := range g.Children() {
		if !isConstant(tree, c) {
			continue
		}
		eff := constantEffective(tree, c)
		if eff {
			if invert {
				g.Nullify() // NOR with a guaranteed-true input is vacuously false
			} else {
				g.MakeUnity()
			}
			return true
		}
		eraseChildAndParent(tree, g, c)
		changed = true
	}
	if g.GateState() != indexed.StateNormal {
		return changed
	}
	if g.NumChildren() == 0 {
		if invert {
			g.MakeUnity() // NOR of nothing: OR(nothing)=false, negated=true
		} else {
			g.Nullify()
		}
		changed = true
	}
	return changed
}

// foldXOR only evaluates XOR fully when both children are constants; a
// single-constant XOR is left for expandXOR to rewrite into AND/OR form,
// where ordinary constant folding picks it up on a later fixpoint pass.
func foldXOR(tree *indexed.IndexedFaultTree, g *indexed.IGate) bool {
	children := g.Children()
	if len(children) != 2 || !isConstant(tree, children[0]) || !isConstant(tree, children[1]) {
		return false
	}
	a := constantEffective(tree, children[0])
	b := constantEffective(tree, children[1])
	if a != b {
		g.MakeUnity()
	} else {
		g.Nullify()
	}
	return true
}

// foldAtleast removes constant children: a true child is removed and the
// vote threshold decremented (it already satisfies one vote); a false child
// is simply removed. The gate collapses if the vote reaches 0 (Unity) or
// exceeds the remaining arity (Null).
func foldAtleast(tree *indexed.IndexedFaultTree, g *indexed.IGate) bool {
	changed := false
	for _, c := range g.Children() {
		if !isConstant(tree, c) {
			continue
		}
		eff := constantEffective(tree, c)
		eraseChildAndParent(tree, g, c)
		changed = true
		if eff {
			g.SetVoteNumber(g.VoteNumber() - 1)
		}
		if g.VoteNumber() <= 0 {
			g.MakeUnity()
			return true
		}
	}
	if g.GateState() != indexed.StateNormal {
		return changed
	}
	if g.VoteNumber() > g.NumChildren() {
		g.Nullify()
		changed = true
	}
	return changed
}

// eliminateNulls inlines every NULL gate's single child into each of its
// parents' edges (flipping sign as needed) and removes the NULL gate, except
// when it is the tree's top event, which is left as a single-child OR
// instead so the "internal gates are AND/OR" invariant still holds for it.
func eliminateNulls(tree *indexed.IndexedFaultTree) bool {
	changed := false
	for _, idx := range normalGates(tree) {
		if !tree.HasGate(idx) {
			continue // already inlined as someone else's parent this pass
		}
		g := tree.GetGate(idx)
		if g.Kind() != model.NULL || g.NumChildren() != 1 {
			continue
		}
		child := g.Children()[0]

		if idx == tree.TopEventIndex() {
			g.SetKind(model.OR)
			changed = true
			continue
		}

		for _, parentIdx := range g.Parents() {
			if !tree.HasGate(parentIdx) {
				continue // that parent was itself inlined away earlier this pass
			}
			pg := tree.GetGate(parentIdx)
			if pg.GateState() != indexed.StateNormal {
				continue
			}
			if pg.HasChild(idx) {
				pg.EraseChild(idx)
				if pg.AddChild(child) {
					if n := tree.NodeAt(child); n != nil {
						n.AddParent(parentIdx)
					}
				}
			}
			if pg.HasChild(-idx) {
				pg.EraseChild(-idx)
				if pg.AddChild(-child) {
					if n := tree.NodeAt(-child); n != nil {
						n.AddParent(parentIdx)
					}
				}
			}
		}
		if n := tree.NodeAt(child); n != nil {
			n.EraseParent(idx)
		}
		tree.RemoveGate(idx)
		changed = true
	}
	return changed
}
