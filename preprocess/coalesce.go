package preprocess

import (
	"github.com/faultgraph/engine/indexed"
	"github.com/faultgraph/engine/model"
)

// coalesceGates merges a gate g into its sole parent p when both are the
// same AND/OR kind and p references g through exactly one positive edge:
// g's children become p's children directly, and g is removed. This is the
// classic gate-coalescing step that keeps the graph from accumulating
// single-use pass-through gates as the other transformations synthesize
// them.
func coalesceGates(tree *indexed.IndexedFaultTree) bool {
	changed := false
	for _, idx := range normalGates(tree) {
		g := tree.GetGate(idx)
		if idx == tree.TopEventIndex() {
			continue
		}
		if !tree.HasGate(idx) || g.GateState() != indexed.StateNormal {
			continue // already absorbed by an earlier merge this pass
		}
		if g.Kind() != model.AND && g.Kind() != model.OR {
			continue
		}
		if g.NumParents() != 1 {
			continue
		}
		parentIdx := g.Parents()[0]
		if !tree.HasGate(parentIdx) {
			continue // sole parent already absorbed elsewhere this pass
		}
		pg := tree.GetGate(parentIdx)
		if pg.GateState() != indexed.StateNormal || pg.Kind() != g.Kind() {
			continue
		}
		if !pg.HasChild(idx) {
			// Sole parent references g negatively; complement propagation
			// must resolve that edge before coalescing is safe.
			continue
		}

		grandchildren := g.Children()
		pg.EraseChild(idx)
		ok := pg.JoinGate(g)
		for _, c := range grandchildren {
			if n := tree.NodeAt(c); n != nil {
				n.EraseParent(idx)
				if ok {
					n.AddParent(parentIdx)
				}
			}
		}
		tree.RemoveGate(idx)
		changed = true
	}
	return changed
}
