// Package licm moves loop-invariant computations into a loop's preheader:
// natural-loop detection via back edges, hoistability rules over SSA
// def-use and dominance, and a nesting-sensitive (smallest loop first)
// fixpoint sweep.
package licm

import (
	"sort"

	"midend/internal/dominance"
	"midend/internal/ice"
	"midend/internal/ir"
)

// Loop is one natural loop: a back edge `latch -> header` where header
// dominates latch, plus everything reachable backward from the latch(es)
// without leaving the set of blocks that flow into the header.
type Loop struct {
	Header    *ir.BasicBlock
	Latches   []*ir.BasicBlock
	Body      map[*ir.BasicBlock]bool // includes Header
	Preheader *ir.BasicBlock
}

// detectLoops finds every natural loop in fn, ordered smallest-body-first
// so LICM processes inner loops before the outer loops that contain them.
// Headers are collected in reverse-postorder so equally sized loops keep a
// stable processing order across runs.
func detectLoops(fn *ir.Function, info *dominance.Info) []*Loop {
	latchesByHeader := map[*ir.BasicBlock][]*ir.BasicBlock{}
	var headers []*ir.BasicBlock
	for _, t := range fn.ReachableBlocks() {
		for _, h := range t.Successors {
			if info.Dominates(h, t) {
				if latchesByHeader[h] == nil {
					headers = append(headers, h)
				}
				latchesByHeader[h] = append(latchesByHeader[h], t)
			}
		}
	}

	var loops []*Loop
	for _, h := range headers {
		latches := latchesByHeader[h]
		body := map[*ir.BasicBlock]bool{h: true}
		var worklist []*ir.BasicBlock
		for _, t := range latches {
			if !body[t] {
				body[t] = true
				worklist = append(worklist, t)
			}
		}
		for len(worklist) > 0 {
			b := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, p := range b.Predecessors {
				if !body[p] {
					body[p] = true
					worklist = append(worklist, p)
				}
			}
		}

		loops = append(loops, &Loop{
			Header:    h,
			Latches:   latches,
			Body:      body,
			Preheader: findPreheader(h, body),
		})
	}

	sort.SliceStable(loops, func(i, j int) bool { return len(loops[i].Body) < len(loops[j].Body) })
	return loops
}

// findPreheader locates h's unique predecessor outside the loop body; the
// CFG builder's canonical loop shapes guarantee it exists and has h as its
// only successor.
func findPreheader(h *ir.BasicBlock, body map[*ir.BasicBlock]bool) *ir.BasicBlock {
	var candidates []*ir.BasicBlock
	for _, p := range h.Predecessors {
		if !body[p] {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) != 1 {
		ice.RaiseGlobal("E-LICM-001", "licm", "loop header %s has %d preheader candidates, want exactly 1", h.Label, len(candidates))
	}
	ph := candidates[0]
	if len(ph.Successors) != 1 || ph.Successors[0] != h {
		ice.RaiseGlobal("E-LICM-002", "licm", "block %s is not a valid preheader for %s", ph.Label, h.Label)
	}
	return ph
}

// bfsOrder walks loop's body in BFS order starting at the header, the
// order the hoisting sweep scans blocks in.
func bfsOrder(loop *Loop) []*ir.BasicBlock {
	visited := map[*ir.BasicBlock]bool{loop.Header: true}
	order := []*ir.BasicBlock{loop.Header}
	queue := []*ir.BasicBlock{loop.Header}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, s := range b.Successors {
			if loop.Body[s] && !visited[s] {
				visited[s] = true
				order = append(order, s)
				queue = append(queue, s)
			}
		}
	}
	return order
}
