package licm

import (
	"midend/internal/dominance"
	"midend/internal/ir"
)

// usesIndex maps every non-constant value to the blocks containing an
// occurrence of it as an operand (of a straight-line instruction, a
// terminator, or a ϕ input), built once per function since moving an
// instruction's definition never changes who uses it.
type usesIndex map[*ir.Value][]*ir.BasicBlock

func buildUsesIndex(fn *ir.Function) usesIndex {
	idx := usesIndex{}
	record := func(b *ir.BasicBlock, operands []*ir.Value) {
		for _, v := range operands {
			if v == nil || v.IsConst {
				continue
			}
			idx[v] = append(idx[v], b)
		}
	}
	for _, b := range fn.Blocks {
		for _, p := range b.Phis() {
			record(b, p.Inputs.Values())
		}
		for _, inst := range b.Instructions {
			record(b, inst.Operands())
		}
		if b.Terminator != nil {
			record(b, b.Terminator.Operands())
		}
	}
	return idx
}

func (idx usesIndex) usedIn(v *ir.Value, body map[*ir.BasicBlock]bool) []*ir.BasicBlock {
	var out []*ir.BasicBlock
	for _, b := range idx[v] {
		if body[b] {
			out = append(out, b)
		}
	}
	return out
}

// hoistLoop sweeps loop to a fixpoint, returning the instructions to move
// to the preheader in discovery order.
func hoistLoop(info *dominance.Info, loop *Loop, idx usesIndex) []*ir.AssignInst {
	invariant := map[*ir.Value]bool{}
	order := bfsOrder(loop)
	var deferred []*ir.AssignInst

	changed := true
	for changed {
		changed = false
		var roundHoisted []*ir.AssignInst
		for _, b := range order {
			for _, inst := range b.Instructions {
				assign, ok := inst.(*ir.AssignInst)
				if !ok || invariant[assign.Res] {
					continue
				}
				if isHoistable(info, loop, idx, invariant, b, assign) {
					invariant[assign.Res] = true
					roundHoisted = append(roundHoisted, assign)
					changed = true
				}
			}
		}
		for _, assign := range roundHoisted {
			removeFromBlock(assign.Block(), assign)
			deferred = append(deferred, assign)
		}
	}
	return deferred
}

func isHoistable(info *dominance.Info, loop *Loop, idx usesIndex, invariant map[*ir.Value]bool, b *ir.BasicBlock, assign *ir.AssignInst) bool {
	switch assign.RHS.(type) {
	case *ir.LoadOp, *ir.CallOp:
		return false
	}

	for _, latch := range loop.Latches {
		if !info.Dominates(b, latch) {
			return false
		}
	}

	for _, userBlock := range idx.usedIn(assign.Res, loop.Body) {
		if !info.Dominates(b, userBlock) {
			return false
		}
	}

	for _, operand := range assign.RHS.Operands() {
		if operand == nil || operand.IsConst || invariant[operand] {
			continue
		}
		if operand.Def == nil {
			// Every definition the CFG builder or ϕ placement creates
			// (including parameters and array inits) records its Def, so an
			// operand without one has no definition this pass can see;
			// treat it as not provably invariant.
			return false
		}
		if loop.Body[operand.Def.Block()] {
			return false
		}
	}

	return true
}

func removeFromBlock(b *ir.BasicBlock, target ir.Instruction) {
	out := b.Instructions[:0]
	for _, inst := range b.Instructions {
		if inst != target {
			out = append(out, inst)
		}
	}
	b.Instructions = out
}
