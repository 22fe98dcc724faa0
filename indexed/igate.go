package indexed

import (
	"fmt"
	"sort"

	"github.com/faultgraph/engine/model"
)

// State reflects whether a gate's Boolean function has collapsed to a
// constant during preprocessing.
type State int

const (
	StateNormal State = iota
	StateNull
	StateUnity
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateUnity:
		return "unity"
	default:
		return "normal"
	}
}

// IGate is an indexed gate. Initially it may carry any GateKind; after the
// preprocessor reaches fixpoint it is only ever AND or OR.
type IGate struct {
	Node

	kind       model.GateKind
	voteNumber int
	state      State
	module     bool
	children   map[int]struct{}
}

// NewIGate creates a gate with the given index and kind. Indices below
// GateIndexBase are rejected: gates live in [GateIndexBase, +inf).
func NewIGate(index int, kind model.GateKind) (*IGate, error) {
	if index < GateIndexBase {
		return nil, fmt.Errorf("gate index %d must be >= %d", index, GateIndexBase)
	}
	return &IGate{
		Node:     newNode(index),
		kind:     kind,
		state:    StateNormal,
		children: make(map[int]struct{}),
	}, nil
}

// Kind returns the gate's current Boolean operator.
func (g *IGate) Kind() model.GateKind { return g.kind }

// SetKind changes the gate's operator. Only meaningful for AND/OR/NOT/NULL,
// the operators preprocessing actually rewrites a gate into.
func (g *IGate) SetKind(k model.GateKind) {
	switch k {
	case model.AND, model.OR, model.NOT, model.NULL:
	default:
		panic(fmt.Sprintf("SetKind only supports AND/OR/NOT/NULL, got %v", k))
	}
	g.kind = k
}

// VoteNumber returns the ATLEAST vote threshold; meaningless otherwise.
func (g *IGate) VoteNumber() int { return g.voteNumber }

// SetVoteNumber sets the ATLEAST vote threshold.
func (g *IGate) SetVoteNumber(n int) { g.voteNumber = n }

// GateState returns whether this gate has collapsed to Null/Unity.
func (g *IGate) GateState() State { return g.state }

// IsModule reports whether this gate has been marked independent.
func (g *IGate) IsModule() bool { return g.module }

// TurnModule marks this gate as a module. One-way transition.
func (g *IGate) TurnModule() {
	if g.module {
		panic("gate is already a module")
	}
	g.module = true
}

// Children returns the gate's signed child indices in ascending arithmetic
// order (matching the ordered-set storage the indexed graph promises).
func (g *IGate) Children() []int {
	out := make([]int, 0, len(g.children))
	for c := range g.children {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// NumChildren returns the number of children.
func (g *IGate) NumChildren() int { return len(g.children) }

// HasChild reports whether signed index child is present.
func (g *IGate) HasChild(child int) bool {
	_, ok := g.children[child]
	return ok
}

// InitiateWithChild adds the first child to a freshly created gate without
// any complement checking; used when copying children from another
// collection that has already been minimized.
func (g *IGate) InitiateWithChild(child int) {
	g.children[child] = struct{}{}
}

// AddChild adds a signed child index. If the complement of child is already
// present, the gate's Boolean function collapses: AND with a clashing pair
// becomes Null, OR becomes Unity. Returns false when a collapse occurred.
func (g *IGate) AddChild(child int) bool {
	if g.state != StateNormal {
		return true
	}
	if _, clash := g.children[-child]; clash {
		switch g.kind {
		case model.AND:
			g.Nullify()
		case model.OR:
			g.MakeUnity()
		default:
			panic(fmt.Sprintf("AddChild complement collapse only defined for AND/OR, got %v", g.kind))
		}
		return false
	}
	g.children[child] = struct{}{}
	return true
}

// SwapChild replaces an existing child with a new one, used when
// complementing a child or re-pointing an edge during gate coalescing.
func (g *IGate) SwapChild(existing, replacement int) bool {
	delete(g.children, existing)
	return g.AddChild(replacement)
}

// InvertChildren replaces every child with its complement (De Morgan
// propagation helper).
func (g *IGate) InvertChildren() {
	inverted := make(map[int]struct{}, len(g.children))
	for c := range g.children {
		inverted[-c] = struct{}{}
	}
	g.children = inverted
}

// InvertChild replaces one existing child with its complement.
func (g *IGate) InvertChild(existing int) {
	if _, ok := g.children[existing]; !ok {
		panic(fmt.Sprintf("gate %d has no child %d to invert", g.Index(), existing))
	}
	delete(g.children, existing)
	g.AddChild(-existing)
}

// JoinGate merges another gate's children into this gate (gate coalescing).
// Returns false if the merge collapsed this gate's state to Null/Unity.
func (g *IGate) JoinGate(child *IGate) bool {
	ok := true
	for c := range child.children {
		if !g.AddChild(c) {
			ok = false
		}
		if g.state != StateNormal {
			break
		}
	}
	return ok
}

// EraseAllChildren clears every child without touching gate state.
func (g *IGate) EraseAllChildren() { g.children = make(map[int]struct{}) }

// EraseChild removes a single signed child index.
func (g *IGate) EraseChild(child int) {
	if _, ok := g.children[child]; !ok {
		panic(fmt.Sprintf("gate %d has no child %d to erase", g.Index(), child))
	}
	delete(g.children, child)
}

// Nullify sets this gate's state to Null and clears its children. One-way
// transition: calling it twice is a logic error.
func (g *IGate) Nullify() {
	if g.state != StateNormal {
		panic(fmt.Sprintf("gate %d: Nullify called on non-normal state %v", g.Index(), g.state))
	}
	g.state = StateNull
	g.children = make(map[int]struct{})
}

// MakeUnity sets this gate's state to Unity and clears its children. One-way
// transition: calling it twice is a logic error.
func (g *IGate) MakeUnity() {
	if g.state != StateNormal {
		panic(fmt.Sprintf("gate %d: MakeUnity called on non-normal state %v", g.Index(), g.state))
	}
	g.state = StateUnity
	g.children = make(map[int]struct{})
}
