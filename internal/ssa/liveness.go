// Package ssa transforms a freshly built CFG (internal/cfgbuild) into pruned
// SSA form: liveness, ϕ placement via the iterated dominance frontier,
// dominator-tree-order renaming, and array base-pointer propagation.
package ssa

import "midend/internal/ir"

// liveness holds the per-block uses/defs/live-in/live-out name sets the ϕ
// placement and renaming stages consult. Sets are over variable *names*,
// ignoring versions, since at this point in the pipeline nothing has a
// version yet.
type liveness struct {
	uses   map[*ir.BasicBlock]map[string]bool
	defs   map[*ir.BasicBlock]map[string]bool
	liveIn map[*ir.BasicBlock]map[string]bool
}

func analyzeLiveness(fn *ir.Function) *liveness {
	lv := &liveness{
		uses:   map[*ir.BasicBlock]map[string]bool{},
		defs:   map[*ir.BasicBlock]map[string]bool{},
		liveIn: map[*ir.BasicBlock]map[string]bool{},
	}
	for _, b := range fn.Blocks {
		uses, defs := blockUsesAndDefs(b)
		lv.uses[b] = uses
		lv.defs[b] = defs
		lv.liveIn[b] = map[string]bool{}
	}

	liveOut := map[*ir.BasicBlock]map[string]bool{}
	for _, b := range fn.Blocks {
		liveOut[b] = map[string]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, b := range fn.Blocks {
			out := map[string]bool{}
			for _, s := range b.Successors {
				for name := range lv.liveIn[s] {
					out[name] = true
				}
			}
			in := map[string]bool{}
			for name := range lv.uses[b] {
				in[name] = true
			}
			for name := range out {
				if !lv.defs[b][name] {
					in[name] = true
				}
			}
			if !setsEqual(in, lv.liveIn[b]) {
				lv.liveIn[b] = in
				changed = true
			}
			liveOut[b] = out
		}
	}
	return lv
}

// blockUsesAndDefs computes the upward-exposed uses and the full defs set
// of a straight-line block (no ϕ nodes exist yet at this point).
func blockUsesAndDefs(b *ir.BasicBlock) (uses, defs map[string]bool) {
	uses = map[string]bool{}
	defs = map[string]bool{}
	localDef := map[string]bool{}

	record := func(inst ir.Instruction) {
		for _, op := range inst.Operands() {
			if op == nil || op.IsConst {
				continue
			}
			if !localDef[op.Name] {
				uses[op.Name] = true
			}
		}
		if res := inst.Result(); res != nil {
			defs[res.Name] = true
			localDef[res.Name] = true
		}
	}

	for _, inst := range b.Instructions {
		record(inst)
	}
	if b.Terminator != nil {
		record(b.Terminator)
	}
	return uses, defs
}

func setsEqual(a, b map[string]bool) bool {
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

// definingBlocks inverts defs into variable -> set of defining blocks,
// feeding the iterated-dominance-frontier ϕ placement step.
func (lv *liveness) definingBlocks(fn *ir.Function) map[string]map[*ir.BasicBlock]bool {
	out := map[string]map[*ir.BasicBlock]bool{}
	for _, b := range fn.Blocks {
		for name := range lv.defs[b] {
			if out[name] == nil {
				out[name] = map[*ir.BasicBlock]bool{}
			}
			out[name][b] = true
		}
	}
	return out
}
