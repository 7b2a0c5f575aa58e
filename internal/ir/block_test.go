package ir

import "testing"

func TestInsertPhiIdempotent(t *testing.T) {
	b := NewBlock("BB1")
	res := &Value{Name: "x", Version: 2}
	p1 := b.InsertPhi("x", res)
	p2 := b.InsertPhi("x", &Value{Name: "x", Version: 99})

	if p1 != p2 {
		t.Fatal("InsertPhi should return the existing phi for a repeated name")
	}
	if len(b.Phis()) != 1 {
		t.Fatalf("expected 1 phi, got %d", len(b.Phis()))
	}
}

func TestAddSuccessorMaintainsBothSides(t *testing.T) {
	a := NewBlock("BB0")
	c := NewBlock("BB1")

	AddSuccessor(a, c)

	if len(a.Successors) != 1 || a.Successors[0] != c {
		t.Fatal("successor not recorded on predecessor")
	}
	if len(c.Predecessors) != 1 || c.Predecessors[0] != a {
		t.Fatal("predecessor not recorded on successor")
	}

	// Idempotent on repeat.
	AddSuccessor(a, c)
	if len(a.Successors) != 1 {
		t.Fatalf("expected AddSuccessor to be idempotent, got %d successors", len(a.Successors))
	}
}

func TestRemoveEdge(t *testing.T) {
	a := NewBlock("BB0")
	c := NewBlock("BB1")
	AddSuccessor(a, c)

	RemoveEdge(a, c)

	if len(a.Successors) != 0 {
		t.Fatal("expected successor removed")
	}
	if len(c.Predecessors) != 0 {
		t.Fatal("expected predecessor removed")
	}
}

func TestPhiInputsPreservesInsertionOrder(t *testing.T) {
	in := NewPhiInputs()
	in.Set("BB2", Const(2))
	in.Set("BB1", Const(1))
	in.Set("BB3", Const(3))

	got := in.Labels()
	want := []string{"BB2", "BB1", "BB3"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("label order: got %v want %v", got, want)
		}
	}

	in.Delete("BB1")
	got = in.Labels()
	if len(got) != 2 || got[0] != "BB2" || got[1] != "BB3" {
		t.Fatalf("after delete: got %v", got)
	}
}

func TestReversePostOrderVisitsEntryFirst(t *testing.T) {
	fn := NewFunction("f")
	b1 := fn.NewBlock("")
	b2 := fn.NewBlock("")
	AddSuccessor(fn.Entry, b1)
	AddSuccessor(b1, b2)
	AddSuccessor(b2, fn.Exit)

	order := fn.ReversePostOrder()
	if len(order) != 4 {
		t.Fatalf("expected 4 reachable blocks, got %d", len(order))
	}
	if order[0] != fn.Entry {
		t.Fatalf("expected entry first, got %s", order[0].Label)
	}
	if order[len(order)-1] != fn.Exit {
		t.Fatalf("expected exit last, got %s", order[len(order)-1].Label)
	}
}
