package indexed

import (
	"fmt"
	"strings"

	"github.com/faultgraph/engine/model"
)

// Builder implements the §4.1 ingestion contract: given the top gate, every
// named gate it can reach, a name->index map covering basic events
// (including CCF-expanded synthetic events), and the house events, it
// produces an IndexedFaultTree. Builder is the thin object external callers
// (today, package fta; eventually an XML loader) construct and populate
// before calling Build.
type Builder struct {
	// Gates holds every named gate reachable from the top gate, keyed by
	// normalized (lower-cased) id, including the top gate itself.
	Gates map[string]*model.Gate

	// BasicEventIndex maps a normalized basic-event name (including
	// CCF-synthesized event names) to its fixed index in [1, GateIndexBase).
	BasicEventIndex map[string]int

	// HouseEvents maps a normalized house-event name to its definition.
	HouseEvents map[string]*model.HouseEvent

	// CcfReplacement maps a normalized CCF group member name to the
	// replacement formula (independent-event OR combination-events) that
	// should be substituted wherever that member is referenced as a bare
	// basic event.
	CcfReplacement map[string]*model.Formula

	tree             *IndexedFaultTree
	gateIndexByName  map[string]int
	building         map[string]bool
	constIndexByName map[string]int
	ccfGateByMember  map[string]int
	nextConstIndex   int
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Build walks the formula tree rooted at topGateName and returns the
// resulting IndexedFaultTree.
func (b *Builder) Build(topGateName string) (*IndexedFaultTree, error) {
	top, ok := b.Gates[normalize(topGateName)]
	if !ok {
		return nil, fmt.Errorf("unknown top gate %q", topGateName)
	}

	b.tree = NewIndexedFaultTree()
	b.gateIndexByName = make(map[string]int)
	b.building = make(map[string]bool)
	b.constIndexByName = make(map[string]int)
	b.ccfGateByMember = make(map[string]int)

	b.nextConstIndex = 1
	for _, idx := range b.BasicEventIndex {
		if idx+1 > b.nextConstIndex {
			b.nextConstIndex = idx + 1
		}
	}

	topIndex, err := b.buildGate(top)
	if err != nil {
		return nil, err
	}
	b.tree.SetTopEventIndex(topIndex)
	return b.tree, nil
}

// buildGate materializes (or returns the memoized index of) the IGate for a
// named model.Gate, recursively building its Formula's children.
func (b *Builder) buildGate(g *model.Gate) (int, error) {
	name := g.ID
	if b.building[name] {
		return 0, fmt.Errorf("cyclic formula reference detected at gate %q", g.OrigID)
	}
	if idx, ok := b.gateIndexByName[name]; ok {
		return idx, nil
	}
	b.building[name] = true
	defer delete(b.building, name)

	igate := b.tree.CreateGate(g.Formula.Kind)
	igate.SetVoteNumber(g.Formula.VoteNumber)
	b.gateIndexByName[name] = igate.Index()

	for _, arg := range g.Formula.Args {
		child, err := b.resolveArg(arg)
		if err != nil {
			return 0, fmt.Errorf("gate %q: %w", g.OrigID, err)
		}
		addChild(igate, child)
		b.linkParent(child, igate.Index())
	}
	return igate.Index(), nil
}

// buildFormula materializes a fresh gate for an anonymous nested formula.
func (b *Builder) buildFormula(f *model.Formula) (int, error) {
	igate := b.tree.CreateGate(f.Kind)
	igate.SetVoteNumber(f.VoteNumber)
	for _, arg := range f.Args {
		child, err := b.resolveArg(arg)
		if err != nil {
			return 0, err
		}
		addChild(igate, child)
		b.linkParent(child, igate.Index())
	}
	return igate.Index(), nil
}

// addChild adds a signed child to a freshly built gate, routing through
// IGate.AddChild's complement-clash detection for AND/OR so a formula like
// OR(a, NOT(a)) -- where the NOT collapses to a negative edge rather than a
// gate (§9) -- collapses to Unity/Null immediately instead of carrying a
// literal and its complement as two ordinary children. Other gate kinds
// have no build-time clash rule defined (AddChild only knows how to resolve
// one for AND/OR; see §4.2 step 6), so they fall back to the plain
// unconditional insert.
func addChild(g *IGate, child int) {
	switch g.Kind() {
	case model.AND, model.OR:
		g.AddChild(child)
	default:
		g.InitiateWithChild(child)
	}
}

// resolveArg returns the signed index a FormulaArg resolves to, collapsing
// NOT-wrapping into a sign flip rather than materializing a NOT gate (see
// SPEC_FULL.md §9 / DESIGN.md for the grounding of this decision).
func (b *Builder) resolveArg(arg model.FormulaArg) (int, error) {
	switch arg.Kind {
	case model.ArgBasicEvent:
		return b.resolveBasicEvent(arg.Name)
	case model.ArgHouseEvent:
		return b.resolveHouseEvent(arg.Name)
	case model.ArgGate:
		target, ok := b.Gates[normalize(arg.Name)]
		if !ok {
			return 0, fmt.Errorf("unknown gate reference %q", arg.Name)
		}
		idx, err := b.buildGate(target)
		if err != nil {
			return 0, err
		}
		return idx, nil
	case model.ArgFormula:
		return b.resolveFormula(arg.Nested)
	default:
		return 0, fmt.Errorf("unknown formula argument kind %d", arg.Kind)
	}
}

func (b *Builder) resolveFormula(f *model.Formula) (int, error) {
	if f.Kind == model.NOT {
		inner, err := b.resolveArg(f.Args[0])
		if err != nil {
			return 0, err
		}
		return -inner, nil
	}
	return b.buildFormula(f)
}

func (b *Builder) resolveBasicEvent(name string) (int, error) {
	key := normalize(name)
	if replacement, ok := b.CcfReplacement[key]; ok {
		if idx, ok := b.ccfGateByMember[key]; ok {
			return idx, nil
		}
		idx, err := b.buildFormula(replacement)
		if err != nil {
			return 0, fmt.Errorf("ccf replacement for %q: %w", name, err)
		}
		b.ccfGateByMember[key] = idx
		return idx, nil
	}
	idx, ok := b.BasicEventIndex[key]
	if !ok {
		return 0, fmt.Errorf("unknown basic event reference %q", name)
	}
	if _, exists := b.tree.basicEvents[idx]; !exists {
		b.tree.AddBasicEvent(idx)
	}
	return idx, nil
}

func (b *Builder) resolveHouseEvent(name string) (int, error) {
	key := normalize(name)
	he, ok := b.HouseEvents[key]
	if !ok {
		return 0, fmt.Errorf("unknown house event reference %q", name)
	}
	idx, ok := b.constIndexByName[key]
	if !ok {
		idx = b.nextConstIndex
		b.nextConstIndex++
		b.tree.AddConstant(idx, he.State)
		b.constIndexByName[key] = idx
	}
	return idx, nil
}

func (b *Builder) linkParent(signedChild, parentIndex int) {
	if n := b.tree.NodeAt(signedChild); n != nil {
		n.AddParent(parentIndex)
	}
}
