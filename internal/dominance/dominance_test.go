package dominance

import (
	"testing"

	"midend/internal/ir"
)

// buildDiamond builds entry -> (left, right) -> merge, a classic diamond.
func buildDiamond() (entry, left, right, merge *ir.BasicBlock) {
	fn := ir.NewFunction("diamond")
	entry = fn.Entry
	left = fn.NewBlock("left")
	right = fn.NewBlock("right")
	merge = fn.NewBlock("merge")

	ir.SetCmp(entry, ir.Const(1), ir.Const(0), right, left)
	ir.SetUncondJump(left, merge)
	ir.SetUncondJump(right, merge)
	ir.SetUncondJump(merge, fn.Exit)
	return
}

func TestDiamondImmediateDominators(t *testing.T) {
	entry, left, right, merge := buildDiamond()
	info := Analyze(entry)

	if info.IDom(entry) != nil {
		t.Errorf("entry should have no immediate dominator")
	}
	if info.IDom(left) != entry {
		t.Errorf("left's idom should be entry")
	}
	if info.IDom(right) != entry {
		t.Errorf("right's idom should be entry")
	}
	if info.IDom(merge) != entry {
		t.Errorf("merge's idom should be entry (neither arm alone dominates it)")
	}
}

func TestDiamondDominanceFrontier(t *testing.T) {
	entry, left, right, merge := buildDiamond()
	info := Analyze(entry)

	if !info.Frontier(left)[merge] {
		t.Errorf("left's dominance frontier should include merge")
	}
	if !info.Frontier(right)[merge] {
		t.Errorf("right's dominance frontier should include merge")
	}
	if len(info.Frontier(entry)) != 0 {
		t.Errorf("entry's dominance frontier should be empty, got %v", info.Frontier(entry))
	}
}

func TestDominatesIsReflexiveAndTransitiveOverChain(t *testing.T) {
	fn := ir.NewFunction("chain")
	a := fn.Entry
	b := fn.NewBlock("b")
	c := fn.NewBlock("c")
	ir.SetUncondJump(a, b)
	ir.SetUncondJump(b, c)
	ir.SetUncondJump(c, fn.Exit)

	info := Analyze(a)

	if !info.Dominates(a, a) {
		t.Errorf("a should dominate itself")
	}
	if !info.Dominates(a, c) {
		t.Errorf("a should dominate c transitively through b")
	}
	if info.Dominates(c, a) {
		t.Errorf("c should not dominate a")
	}
}

func TestLoopBackEdgeDoesNotChangeHeaderDominance(t *testing.T) {
	fn := ir.NewFunction("loop")
	entry := fn.Entry
	header := fn.NewBlock("header")
	body := fn.NewBlock("body")
	exit := fn.NewBlock("exit")

	ir.SetUncondJump(entry, header)
	ir.SetCmp(header, ir.Const(1), ir.Const(0), exit, body)
	ir.SetUncondJump(body, header) // back-edge

	info := Analyze(entry)

	if info.IDom(header) != entry {
		t.Errorf("header's idom should still be entry despite the body->header back-edge")
	}
	if info.IDom(body) != header {
		t.Errorf("body's idom should be header")
	}
	if !info.Frontier(body)[header] {
		t.Errorf("body's dominance frontier should include header (the loop back-edge target)")
	}
}

func TestIteratedFrontierUnionsAcrossDefs(t *testing.T) {
	entry, left, right, merge := buildDiamond()
	info := Analyze(entry)

	idf := info.IteratedFrontier(map[*ir.BasicBlock]bool{left: true, right: true})
	if !idf[merge] {
		t.Errorf("iterated frontier of {left, right} should include merge")
	}
}
