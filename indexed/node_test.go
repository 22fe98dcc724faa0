package indexed

import "testing"

func TestVisitReturnsTrueOnThirdVisit(t *testing.T) {
	n := newNode(1)
	if n.Visit(10) {
		t.Error("first visit should not report revisit")
	}
	if n.Visit(20) {
		t.Error("second visit should not report revisit")
	}
	if !n.Visit(30) {
		t.Error("third visit should report revisit")
	}
	if !n.Revisited() {
		t.Error("expected Revisited() true after third visit")
	}
	if n.EnterTime() != 10 || n.ExitTime() != 20 || n.LastVisit() != 30 {
		t.Errorf("unexpected visit times: enter=%d exit=%d last=%d", n.EnterTime(), n.ExitTime(), n.LastVisit())
	}
}

func TestParentsAreSortedAndDeduplicated(t *testing.T) {
	n := newNode(1)
	n.AddParent(5)
	n.AddParent(3)
	n.AddParent(5)

	got := n.Parents()
	want := []int{3, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d parents, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Parents()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEraseParent(t *testing.T) {
	n := newNode(1)
	n.AddParent(5)
	n.EraseParent(5)
	if n.HasParent(5) {
		t.Error("expected parent 5 to be erased")
	}
}
