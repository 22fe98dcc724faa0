package preprocess

import "github.com/faultgraph/engine/indexed"

// detectModules performs a single DFS from the top event, stamping each
// node's canonical enter/exit time on its first visit (subsequent
// re-encounters from a different parent only touch the revisit slot, never
// the canonical enter/exit pair). It then computes, for every node, the
// span from its enter time to its last visit, widened by every
// descendant's span reachable through the *real* graph edges (not just the
// DFS-discovery tree, so a node shared across two different parents still
// drags both reachability windows into the computation). A non-top gate is
// a module iff the spans of its children fit inside its own canonical
// enter/exit interval: nothing underneath it is homed outside of it, and
// nothing underneath it is reached again by anything outside of it either.
func detectModules(tree *indexed.IndexedFaultTree) {
	tree.ClearAllVisits()

	var dfs func(signedIdx int)
	dfs = func(signedIdx int) {
		idx := signedIdx
		if idx < 0 {
			idx = -idx
		}
		n := tree.NodeAt(idx)
		if n == nil {
			return
		}
		if n.Visited() {
			n.Visit(tree.Tick())
			return
		}
		n.Visit(tree.Tick()) // enter
		if tree.IsGateIndex(idx) {
			g := tree.GetGate(idx)
			if g.GateState() == indexed.StateNormal {
				for _, c := range g.Children() {
					dfs(c)
				}
			}
		}
		n.Visit(tree.Tick()) // exit
	}
	dfs(tree.TopEventIndex())

	type interval struct{ min, max int }
	reach := map[int]interval{}

	var reachOf func(idx int) interval
	reachOf = func(idx int) interval {
		if v, ok := reach[idx]; ok {
			return v
		}
		n := tree.NodeAt(idx)
		iv := interval{min: n.EnterTime(), max: n.LastVisit()}
		if tree.IsGateIndex(idx) {
			g := tree.GetGate(idx)
			if g.GateState() == indexed.StateNormal {
				for _, c := range g.Children() {
					ci := c
					if ci < 0 {
						ci = -ci
					}
					child := reachOf(ci)
					if child.min < iv.min {
						iv.min = child.min
					}
					if child.max > iv.max {
						iv.max = child.max
					}
				}
			}
		}
		reach[idx] = iv
		return iv
	}

	top := tree.TopEventIndex()
	for _, idx := range tree.Gates() {
		if idx == top {
			continue
		}
		g := tree.GetGate(idx)
		if g.GateState() != indexed.StateNormal || g.IsModule() || !g.Visited() {
			continue
		}
		iv := interval{min: g.EnterTime(), max: g.ExitTime()}
		for _, c := range g.Children() {
			ci := c
			if ci < 0 {
				ci = -ci
			}
			child := reachOf(ci)
			if child.min < iv.min {
				iv.min = child.min
			}
			if child.max > iv.max {
				iv.max = child.max
			}
		}
		if iv.min == g.EnterTime() && iv.max == g.ExitTime() {
			g.TurnModule()
		}
	}
}
