package indexed

import (
	"fmt"
	"sort"

	"github.com/faultgraph/engine/model"
)

// IndexedFaultTree is the single arena owning every IGate, IBasicEvent, and
// Constant node of one analysis, keyed by index. Graph edges are plain
// integers; there is no pointer ownership cycle to manage.
type IndexedFaultTree struct {
	topEventIndex int

	gates       map[int]*IGate
	basicEvents map[int]*IBasicEvent
	constants   map[int]*Constant

	nextGateIndex int
	clock         int
}

// NewIndexedFaultTree constructs an empty tree whose first created gate gets
// index GateIndexBase. Basic event and constant indices are not allocated
// here: callers insert them at explicit indices via AddBasicEvent and
// AddConstant.
func NewIndexedFaultTree() *IndexedFaultTree {
	return &IndexedFaultTree{
		gates:         make(map[int]*IGate),
		basicEvents:   make(map[int]*IBasicEvent),
		constants:     make(map[int]*Constant),
		nextGateIndex: GateIndexBase,
	}
}

// TopEventIndex returns the index of the tree's top gate.
func (t *IndexedFaultTree) TopEventIndex() int { return t.topEventIndex }

// SetTopEventIndex sets the top gate's index.
func (t *IndexedFaultTree) SetTopEventIndex(index int) { t.topEventIndex = index }

// TopEvent returns the tree's current top gate.
func (t *IndexedFaultTree) TopEvent() *IGate {
	g, ok := t.gates[t.topEventIndex]
	if !ok {
		panic(fmt.Sprintf("top event index %d has no gate", t.topEventIndex))
	}
	return g
}

// IsGateIndex reports whether index falls in the gate range. The actual
// presence of a gate at that index is not guaranteed.
func (t *IndexedFaultTree) IsGateIndex(index int) bool {
	return index >= GateIndexBase
}

// KindOf resolves a positive index to the node variant it denotes.
func (t *IndexedFaultTree) KindOf(index int) Kind {
	if index < 0 {
		index = -index
	}
	if t.IsGateIndex(index) {
		return KindGate
	}
	if _, ok := t.constants[index]; ok {
		return KindConstant
	}
	return KindBasicEvent
}

// AddGate inserts an already-constructed gate into the arena.
func (t *IndexedFaultTree) AddGate(g *IGate) {
	if _, exists := t.gates[g.Index()]; exists {
		panic(fmt.Sprintf("gate index %d already present", g.Index()))
	}
	t.gates[g.Index()] = g
	if g.Index() >= t.nextGateIndex {
		t.nextGateIndex = g.Index() + 1
	}
}

// HasGate reports whether a gate is still present at index, without
// panicking -- used by callers that may be iterating a stale snapshot of
// gate indices while another transformation removes gates mid-pass.
func (t *IndexedFaultTree) HasGate(index int) bool {
	_, ok := t.gates[index]
	return ok
}

// GetGate looks up a gate by index.
func (t *IndexedFaultTree) GetGate(index int) *IGate {
	g, ok := t.gates[index]
	if !ok {
		panic(fmt.Sprintf("no gate at index %d", index))
	}
	return g
}

// CreateGate allocates a new gate with a fresh sequential index and adds it
// to the arena.
func (t *IndexedFaultTree) CreateGate(kind model.GateKind) *IGate {
	index := t.nextGateIndex
	t.nextGateIndex++
	g, err := NewIGate(index, kind)
	if err != nil {
		panic(err) // nextGateIndex invariant guarantees this never fires
	}
	t.gates[index] = g
	return g
}

// RemoveGate deletes a gate from the arena, used after it has been inlined
// away by NULL elimination or gate coalescing and is no longer referenced.
func (t *IndexedFaultTree) RemoveGate(index int) {
	delete(t.gates, index)
}

// AddBasicEvent inserts a basic event node at a specific index (used by the
// builder, which assigns indices up front from the name->index map).
func (t *IndexedFaultTree) AddBasicEvent(index int) *IBasicEvent {
	be := newIBasicEvent(index)
	t.basicEvents[index] = be
	return be
}

// GetBasicEvent looks up a basic event node by index.
func (t *IndexedFaultTree) GetBasicEvent(index int) *IBasicEvent {
	be, ok := t.basicEvents[index]
	if !ok {
		panic(fmt.Sprintf("no basic event at index %d", index))
	}
	return be
}

// AddConstant inserts a constant node folding a house event at a specific
// index.
func (t *IndexedFaultTree) AddConstant(index int, state bool) *Constant {
	c := newConstant(index, state)
	t.constants[index] = c
	return c
}

// GetConstant looks up a constant node by index.
func (t *IndexedFaultTree) GetConstant(index int) *Constant {
	c, ok := t.constants[index]
	if !ok {
		panic(fmt.Sprintf("no constant at index %d", index))
	}
	return c
}

// Gates returns every gate index currently in the arena, ascending.
func (t *IndexedFaultTree) Gates() []int {
	out := make([]int, 0, len(t.gates))
	for idx := range t.gates {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// BasicEvents returns every basic event index currently in the arena,
// ascending.
func (t *IndexedFaultTree) BasicEvents() []int {
	out := make([]int, 0, len(t.basicEvents))
	for idx := range t.basicEvents {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// NodeAt resolves any signed or unsigned index to the GraphNode it denotes,
// or nil if no node lives at that index. Callers that need variant-specific
// behavior (e.g. an IGate's children) still fall back to GetGate/GetBasicEvent/
// GetConstant; NodeAt exists for generic parent/visit bookkeeping during
// preprocessing.
func (t *IndexedFaultTree) NodeAt(index int) GraphNode {
	idx := index
	if idx < 0 {
		idx = -idx
	}
	if t.IsGateIndex(idx) {
		if g, ok := t.gates[idx]; ok {
			return g
		}
		return nil
	}
	if c, ok := t.constants[idx]; ok {
		return c
	}
	if be, ok := t.basicEvents[idx]; ok {
		return be
	}
	return nil
}

// Tick advances and returns the tree-local traversal clock, used to stamp
// visit times during preprocessing and module detection.
func (t *IndexedFaultTree) Tick() int {
	t.clock++
	return t.clock
}

// ClearAllVisits resets the visit triple on every gate and basic event.
func (t *IndexedFaultTree) ClearAllVisits() {
	for _, g := range t.gates {
		g.ClearVisits()
	}
	for _, be := range t.basicEvents {
		be.ClearVisits()
	}
	for _, c := range t.constants {
		c.ClearVisits()
	}
}
