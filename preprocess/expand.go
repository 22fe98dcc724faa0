package preprocess

import (
	"github.com/faultgraph/engine/indexed"
	"github.com/faultgraph/engine/model"
)

// expandXOR rewrites every XOR(a,b) gate still standing (foldXOR has already
// removed the fully-constant case) into OR(AND(a,-b), AND(-a,b)) in place:
// the gate itself becomes the OR, with two freshly synthesized AND children.
func expandXOR(tree *indexed.IndexedFaultTree) bool {
	changed := false
	for _, idx := range normalGates(tree) {
		g := tree.GetGate(idx)
		if g.Kind() != model.XOR {
			continue
		}
		children := g.Children()
		if len(children) != 2 {
			continue
		}
		a, b := children[0], children[1]

		left := tree.CreateGate(model.AND)
		left.InitiateWithChild(a)
		left.InitiateWithChild(-b)
		linkChild(tree, a, left.Index())
		linkChild(tree, -b, left.Index())

		right := tree.CreateGate(model.AND)
		right.InitiateWithChild(-a)
		right.InitiateWithChild(b)
		linkChild(tree, -a, right.Index())
		linkChild(tree, b, right.Index())

		g.EraseAllChildren()
		if n := tree.NodeAt(a); n != nil {
			n.EraseParent(idx)
		}
		if n := tree.NodeAt(b); n != nil {
			n.EraseParent(idx)
		}
		g.SetKind(model.OR)
		g.InitiateWithChild(left.Index())
		g.InitiateWithChild(right.Index())
		left.AddParent(idx)
		right.AddParent(idx)
		changed = true
	}
	return changed
}

func linkChild(tree *indexed.IndexedFaultTree, signedChild, parentIdx int) {
	if n := tree.NodeAt(signedChild); n != nil {
		n.AddParent(parentIdx)
	}
}

// expandAtleast rewrites every ATLEAST(k, x1..xn) gate in place using the
// recursive form ATLEAST(k, x1..xn) = OR(AND(x1, ATLEAST(k-1, rest)),
// ATLEAST(k, rest)), with base cases k==1 (OR of all children) and k==n
// (AND of all children), per the expansion-form decision recorded in
// DESIGN.md. The gate itself becomes the outermost OR/AND; every recursive
// sub-call synthesizes fresh gates.
func expandAtleast(tree *indexed.IndexedFaultTree) bool {
	changed := false
	for _, idx := range normalGates(tree) {
		g := tree.GetGate(idx)
		if g.Kind() != model.ATLEAST {
			continue
		}
		children := g.Children()
		k := g.VoteNumber()

		for _, c := range children {
			g.EraseChild(c)
			if n := tree.NodeAt(c); n != nil {
				n.EraseParent(idx)
			}
		}

		result := buildAtleast(tree, k, children)
		rg := tree.GetGate(result)
		g.SetVoteNumber(0)
		switch rg.GateState() {
		case indexed.StateNull:
			g.SetKind(model.AND)
			g.Nullify()
		case indexed.StateUnity:
			g.SetKind(model.OR)
			g.MakeUnity()
		default:
			g.SetKind(rg.Kind())
			for _, c := range rg.Children() {
				g.InitiateWithChild(c)
				linkChild(tree, c, idx)
				if n := tree.NodeAt(c); n != nil {
					n.EraseParent(rg.Index())
				}
			}
		}
		tree.RemoveGate(result)
		changed = true
	}
	return changed
}

// buildAtleast recursively materializes a fresh gate computing
// ATLEAST(k, items) and returns its index. k<=0 is vacuously true (Unity);
// k greater than len(items) is impossible (Null); k==len(items) is a plain
// AND; k==1 is a plain OR; otherwise the recursive OR/AND split applies.
func buildAtleast(tree *indexed.IndexedFaultTree, k int, items []int) int {
	n := len(items)
	switch {
	case k <= 0:
		g := tree.CreateGate(model.OR)
		g.MakeUnity()
		return g.Index()
	case k > n:
		g := tree.CreateGate(model.AND)
		g.Nullify()
		return g.Index()
	case k == n:
		g := tree.CreateGate(model.AND)
		for _, it := range items {
			g.InitiateWithChild(it)
			linkChild(tree, it, g.Index())
		}
		return g.Index()
	case k == 1:
		g := tree.CreateGate(model.OR)
		for _, it := range items {
			g.InitiateWithChild(it)
			linkChild(tree, it, g.Index())
		}
		return g.Index()
	default:
		head, rest := items[0], items[1:]

		withHead := tree.CreateGate(model.AND)
		subWithout := buildAtleast(tree, k-1, rest)
		withHead.InitiateWithChild(head)
		withHead.InitiateWithChild(subWithout)
		linkChild(tree, head, withHead.Index())
		linkChild(tree, subWithout, withHead.Index())

		withoutHead := buildAtleast(tree, k, rest)

		or := tree.CreateGate(model.OR)
		or.InitiateWithChild(withHead.Index())
		or.InitiateWithChild(withoutHead)
		linkChild(tree, withHead.Index(), or.Index())
		linkChild(tree, withoutHead, or.Index())
		return or.Index()
	}
}
