package indexed

import (
	"testing"

	"github.com/faultgraph/engine/model"
)

func TestNewIGateRejectsLowIndex(t *testing.T) {
	_, err := NewIGate(GateIndexBase-1, model.AND)
	if err == nil {
		t.Error("expected error for index below GateIndexBase")
	}
}

func TestAddChildComplementClashAndCollapse(t *testing.T) {
	g, err := NewIGate(GateIndexBase, model.AND)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.InitiateWithChild(1)
	if g.AddChild(-1) {
		t.Error("expected complement clash to report collapse")
	}
	if g.GateState() != StateNull {
		t.Errorf("expected AND complement clash to Nullify, got %v", g.GateState())
	}
	if g.NumChildren() != 0 {
		t.Error("expected children cleared after Nullify")
	}
}

func TestAddChildOrComplementClashMakesUnity(t *testing.T) {
	g, err := NewIGate(GateIndexBase, model.OR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.InitiateWithChild(2)
	g.AddChild(-2)
	if g.GateState() != StateUnity {
		t.Errorf("expected OR complement clash to MakeUnity, got %v", g.GateState())
	}
}

func TestNullifyTwicePanics(t *testing.T) {
	g, _ := NewIGate(GateIndexBase, model.AND)
	g.Nullify()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on second Nullify")
		}
	}()
	g.Nullify()
}

func TestTurnModuleTwicePanics(t *testing.T) {
	g, _ := NewIGate(GateIndexBase, model.AND)
	g.TurnModule()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on second TurnModule")
		}
	}()
	g.TurnModule()
}

func TestInvertChildrenFlipsEverySign(t *testing.T) {
	g, _ := NewIGate(GateIndexBase, model.AND)
	g.InitiateWithChild(1)
	g.InitiateWithChild(-2)
	g.InvertChildren()

	if g.HasChild(-1) == false || g.HasChild(2) == false {
		t.Errorf("expected children inverted, got %v", g.Children())
	}
}

func TestJoinGateMergesChildren(t *testing.T) {
	parent, _ := NewIGate(GateIndexBase, model.AND)
	parent.InitiateWithChild(1)
	child, _ := NewIGate(GateIndexBase+1, model.AND)
	child.InitiateWithChild(2)
	child.InitiateWithChild(3)

	if !parent.JoinGate(child) {
		t.Error("expected JoinGate to succeed without collapse")
	}
	for _, want := range []int{1, 2, 3} {
		if !parent.HasChild(want) {
			t.Errorf("expected merged parent to have child %d", want)
		}
	}
}

func TestEraseChildPanicsWhenAbsent(t *testing.T) {
	g, _ := NewIGate(GateIndexBase, model.AND)
	defer func() {
		if recover() == nil {
			t.Error("expected panic erasing absent child")
		}
	}()
	g.EraseChild(99)
}

func TestSetKindRejectsUnsupportedKind(t *testing.T) {
	g, _ := NewIGate(GateIndexBase, model.AND)
	defer func() {
		if recover() == nil {
			t.Error("expected panic setting unsupported kind")
		}
	}()
	g.SetKind(model.XOR)
}
