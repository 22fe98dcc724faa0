package mcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faultgraph/engine/indexed"
	"github.com/faultgraph/engine/model"
)

func newTreeWithTop(kind model.GateKind) (*indexed.IndexedFaultTree, *indexed.IGate) {
	tree := indexed.NewIndexedFaultTree()
	top := tree.CreateGate(kind)
	tree.SetTopEventIndex(top.Index())
	return tree, top
}

func TestGenerateOrOfTwoLeavesReturnsEachAsSingletonCutSet(t *testing.T) {
	tree, top := newTreeWithTop(model.OR)
	a := tree.AddBasicEvent(1)
	b := tree.AddBasicEvent(2)
	top.InitiateWithChild(a.Index())
	top.InitiateWithChild(b.Index())

	sets := Generate(tree, 10)
	assert.Equal(t, []CutSet{{1}, {2}}, sets)
}

func TestGenerateAndOfTwoLeavesReturnsSingleCutSet(t *testing.T) {
	tree, top := newTreeWithTop(model.AND)
	a := tree.AddBasicEvent(1)
	b := tree.AddBasicEvent(2)
	top.InitiateWithChild(a.Index())
	top.InitiateWithChild(b.Index())

	sets := Generate(tree, 10)
	require.Len(t, sets, 1)
	assert.Equal(t, CutSet{1, 2}, sets[0])
}

func TestGenerateDropsComplementClashingCombination(t *testing.T) {
	// top = AND(OR(a, b), OR(-a, c)): the (a, -a) pairing must be dropped,
	// leaving {a,c} and {b,-a} and {b,c}.
	tree, top := newTreeWithTop(model.AND)
	left := tree.CreateGate(model.OR)
	right := tree.CreateGate(model.OR)
	a := tree.AddBasicEvent(1)
	b := tree.AddBasicEvent(2)
	c := tree.AddBasicEvent(3)

	left.InitiateWithChild(a.Index())
	left.InitiateWithChild(b.Index())
	right.InitiateWithChild(-a.Index())
	right.InitiateWithChild(c.Index())
	top.InitiateWithChild(left.Index())
	top.InitiateWithChild(right.Index())

	sets := Generate(tree, 10)
	assert.ElementsMatch(t, []CutSet{{1, 3}, {-1, 2}, {2, 3}}, sets)
}

func TestGenerateEnforcesLimitOrder(t *testing.T) {
	tree, top := newTreeWithTop(model.AND)
	for i := 1; i <= 3; i++ {
		be := tree.AddBasicEvent(i)
		top.InitiateWithChild(be.Index())
	}

	sets := Generate(tree, 2)
	assert.Empty(t, sets, "an AND of 3 literals cannot fit under a limit order of 2")
}

func TestGenerateMinimizesSupersets(t *testing.T) {
	// top = OR(AND(a,b), a): {a} subsumes {a,b}.
	tree, top := newTreeWithTop(model.OR)
	and := tree.CreateGate(model.AND)
	a := tree.AddBasicEvent(1)
	b := tree.AddBasicEvent(2)
	and.InitiateWithChild(a.Index())
	and.InitiateWithChild(b.Index())
	top.InitiateWithChild(and.Index())
	top.InitiateWithChild(a.Index())

	sets := Generate(tree, 10)
	assert.Equal(t, []CutSet{{1}}, sets)
}

func TestGenerateUnityTopEventReturnsSingleEmptyCutSet(t *testing.T) {
	tree, top := newTreeWithTop(model.OR)
	top.MakeUnity()

	sets := Generate(tree, 10)
	require.Len(t, sets, 1)
	assert.Empty(t, sets[0])
}

func TestGenerateNullTopEventReturnsNoCutSets(t *testing.T) {
	tree, top := newTreeWithTop(model.AND)
	top.Nullify()

	sets := Generate(tree, 10)
	assert.Nil(t, sets)
}

func TestGenerateSharedGateIsComputedOnceAndUnionedCorrectly(t *testing.T) {
	// top = OR(sub, sub) modeled as two distinct parents both referencing
	// the same AND(a,b) subgate: the result must still just be {a,b} once.
	tree, top := newTreeWithTop(model.OR)
	sub := tree.CreateGate(model.AND)
	a := tree.AddBasicEvent(1)
	b := tree.AddBasicEvent(2)
	sub.InitiateWithChild(a.Index())
	sub.InitiateWithChild(b.Index())

	wrapper := tree.CreateGate(model.OR)
	wrapper.InitiateWithChild(sub.Index())
	top.InitiateWithChild(sub.Index())
	top.InitiateWithChild(wrapper.Index())

	sets := Generate(tree, 10)
	assert.Equal(t, []CutSet{{1, 2}}, sets)
}

func TestOrderDistributionCountsByOrder(t *testing.T) {
	sets := []CutSet{{1}, {2}, {1, 3}, {2, 4}, {1, 3, 5}}
	dist := OrderDistribution(sets)
	assert.Equal(t, []int{0, 2, 2, 1}, dist)
	assert.Equal(t, 3, MaxOrder(sets))
}

func TestSetOrderingPlacesNegativeLiteralBeforePositiveOfSameMagnitude(t *testing.T) {
	sets := canonicalize([]CutSet{{1, -2}, {-1, 2}})
	assert.Equal(t, []CutSet{{-1, 2}, {1, -2}}, sets)
}
