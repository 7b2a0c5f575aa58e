// Package dominance computes dominator sets, immediate dominators, the
// dominator tree, and dominance frontiers over a function's CFG. Every map
// here is keyed on *ir.BasicBlock pointer identity, the same convention
// internal/ir uses for its own Predecessors/Successors lists.
package dominance

import "midend/internal/ir"

// Info is the result of analyzing one function's CFG.
type Info struct {
	order   []*ir.BasicBlock
	dom     map[*ir.BasicBlock]map[*ir.BasicBlock]bool
	idom    map[*ir.BasicBlock]*ir.BasicBlock
	domTree map[*ir.BasicBlock][]*ir.BasicBlock
	front   map[*ir.BasicBlock]map[*ir.BasicBlock]bool
}

// Dominators returns the set of blocks that dominate b (including b itself).
func (info *Info) Dominators(b *ir.BasicBlock) map[*ir.BasicBlock]bool { return info.dom[b] }

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (info *Info) Dominates(a, b *ir.BasicBlock) bool { return info.dom[b][a] }

// StrictlyDominates reports whether a dominates b and a != b.
func (info *Info) StrictlyDominates(a, b *ir.BasicBlock) bool {
	return a != b && info.Dominates(a, b)
}

// IDom returns b's immediate dominator, or nil for the entry block.
func (info *Info) IDom(b *ir.BasicBlock) *ir.BasicBlock { return info.idom[b] }

// Children returns b's children in the dominator tree.
func (info *Info) Children(b *ir.BasicBlock) []*ir.BasicBlock { return info.domTree[b] }

// Frontier returns the dominance frontier of b.
func (info *Info) Frontier(b *ir.BasicBlock) map[*ir.BasicBlock]bool { return info.front[b] }

// Analyze computes dominance information for the CFG reachable from entry.
func Analyze(entry *ir.BasicBlock) *Info {
	reachable := reachableFrom(entry)
	pruneStalePredecessors(reachable)
	order := orderedReachable(entry, reachable)

	dom := initDominators(entry, order, reachable)
	fixpointDominators(entry, order, dom)

	idom := computeIdom(entry, order, dom)
	domTree := buildDomTree(order, idom)
	front := computeFrontier(order, idom, dom)

	return &Info{order: order, dom: dom, idom: idom, domTree: domTree, front: front}
}

// reachableFrom walks forward from entry.
func reachableFrom(entry *ir.BasicBlock) map[*ir.BasicBlock]bool {
	seen := map[*ir.BasicBlock]bool{entry: true}
	stack := []*ir.BasicBlock{entry}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range b.Successors {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return seen
}

// pruneStalePredecessors removes the edge from every unreachable block into
// a reachable one: the CFG builder leaves orphan blocks behind break/return
// statements and SCCP's rewrite detaches whole regions, and either kind of
// stale edge would otherwise leave ϕ incoming maps disagreeing with the
// predecessor lists the later passes iterate.
func pruneStalePredecessors(reachable map[*ir.BasicBlock]bool) {
	for b := range reachable {
		for _, p := range append([]*ir.BasicBlock{}, b.Predecessors...) {
			if !reachable[p] {
				ir.RemoveEdge(p, b)
			}
		}
	}
}

// orderedReachable gives a deterministic BFS order over the reachable set,
// entry first, used to seed the fixpoint iteration and for stable output.
func orderedReachable(entry *ir.BasicBlock, reachable map[*ir.BasicBlock]bool) []*ir.BasicBlock {
	var order []*ir.BasicBlock
	visited := map[*ir.BasicBlock]bool{}
	queue := []*ir.BasicBlock{entry}
	visited[entry] = true
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		order = append(order, b)
		for _, s := range b.Successors {
			if reachable[s] && !visited[s] {
				visited[s] = true
				queue = append(queue, s)
			}
		}
	}
	return order
}

func initDominators(entry *ir.BasicBlock, order []*ir.BasicBlock, reachable map[*ir.BasicBlock]bool) map[*ir.BasicBlock]map[*ir.BasicBlock]bool {
	dom := make(map[*ir.BasicBlock]map[*ir.BasicBlock]bool, len(order))
	all := make(map[*ir.BasicBlock]bool, len(reachable))
	for b := range reachable {
		all[b] = true
	}
	for _, b := range order {
		if b == entry {
			dom[b] = map[*ir.BasicBlock]bool{entry: true}
			continue
		}
		dom[b] = copySet(all)
	}
	return dom
}

func copySet(s map[*ir.BasicBlock]bool) map[*ir.BasicBlock]bool {
	out := make(map[*ir.BasicBlock]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

// fixpointDominators applies dom(B) = {B} ∪ ⋂ dom(P) over reachable preds
// of B until no block's set changes.
func fixpointDominators(entry *ir.BasicBlock, order []*ir.BasicBlock, dom map[*ir.BasicBlock]map[*ir.BasicBlock]bool) {
	changed := true
	for changed {
		changed = false
		for _, b := range order {
			if b == entry {
				continue
			}
			var preds []*ir.BasicBlock
			for _, p := range b.Predecessors {
				if _, ok := dom[p]; ok {
					preds = append(preds, p)
				}
			}
			if len(preds) == 0 {
				continue
			}
			next := copySet(dom[preds[0]])
			for _, p := range preds[1:] {
				for k := range next {
					if !dom[p][k] {
						delete(next, k)
					}
				}
			}
			next[b] = true
			if !setsEqual(next, dom[b]) {
				dom[b] = next
				changed = true
			}
		}
	}
}

func setsEqual(a, b map[*ir.BasicBlock]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// computeIdom picks, for each non-entry block, the element of dom(B)\{B}
// with the largest dominator set, equivalently the one deepest in the
// (not-yet-built) dominator tree.
func computeIdom(entry *ir.BasicBlock, order []*ir.BasicBlock, dom map[*ir.BasicBlock]map[*ir.BasicBlock]bool) map[*ir.BasicBlock]*ir.BasicBlock {
	idom := make(map[*ir.BasicBlock]*ir.BasicBlock, len(order))
	for _, b := range order {
		if b == entry {
			continue
		}
		var best *ir.BasicBlock
		for cand := range dom[b] {
			if cand == b {
				continue
			}
			if best == nil || len(dom[cand]) > len(dom[best]) {
				best = cand
			}
		}
		idom[b] = best
	}
	return idom
}

func buildDomTree(order []*ir.BasicBlock, idom map[*ir.BasicBlock]*ir.BasicBlock) map[*ir.BasicBlock][]*ir.BasicBlock {
	tree := make(map[*ir.BasicBlock][]*ir.BasicBlock, len(order))
	for _, b := range order {
		if p, ok := idom[b]; ok && p != nil {
			tree[p] = append(tree[p], b)
		}
	}
	return tree
}

// computeFrontier walks, for every node N with >=2 preds, from each
// predecessor P up the dom tree, adding N to each visited node's frontier
// until reaching idom(N).
func computeFrontier(order []*ir.BasicBlock, idom map[*ir.BasicBlock]*ir.BasicBlock, dom map[*ir.BasicBlock]map[*ir.BasicBlock]bool) map[*ir.BasicBlock]map[*ir.BasicBlock]bool {
	front := make(map[*ir.BasicBlock]map[*ir.BasicBlock]bool, len(order))
	for _, b := range order {
		front[b] = map[*ir.BasicBlock]bool{}
	}
	for _, n := range order {
		var preds []*ir.BasicBlock
		for _, p := range n.Predecessors {
			if _, ok := dom[p]; ok {
				preds = append(preds, p)
			}
		}
		if len(preds) < 2 {
			continue
		}
		in := idom[n]
		for _, p := range preds {
			runner := p
			for runner != in && runner != nil {
				front[runner][n] = true
				runner = idom[runner]
			}
		}
	}
	return front
}

// IteratedFrontier computes the iterated dominance frontier of defs: the
// least fixpoint of repeatedly unioning in the frontier of every block in
// the running set, per the worklist construction internal/ssa's ϕ
// placement relies on.
func (info *Info) IteratedFrontier(defs map[*ir.BasicBlock]bool) map[*ir.BasicBlock]bool {
	result := map[*ir.BasicBlock]bool{}
	worklist := make([]*ir.BasicBlock, 0, len(defs))
	for b := range defs {
		worklist = append(worklist, b)
	}
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for f := range info.front[b] {
			if !result[f] {
				result[f] = true
				worklist = append(worklist, f)
			}
		}
	}
	return result
}
