package sccp

import "midend/internal/ir"

// rewrite applies the two-step rewrite phase: detach every block the
// analysis never reached, then fold proven-constant operands (and Cmp
// branches) in every block that remains live.
func (e *evaluator) rewrite() {
	e.detachUnreachable()
	for _, b := range e.fn.Blocks {
		if !e.executable[b] {
			continue
		}
		for _, inst := range b.Instructions {
			e.foldInstruction(inst)
		}
		e.foldTerminator(b)
	}
}

func (e *evaluator) detachUnreachable() {
	for _, b := range e.fn.Blocks {
		if e.executable[b] {
			continue
		}
		for _, s := range append([]*ir.BasicBlock{}, b.Successors...) {
			ir.RemoveEdge(b, s)
			for _, p := range s.Phis() {
				p.Inputs.Delete(b.Label)
			}
		}
		for _, p := range append([]*ir.BasicBlock{}, b.Predecessors...) {
			ir.RemoveEdge(p, b)
		}
	}
}

func (e *evaluator) substituteValue(v *ir.Value) *ir.Value {
	if v == nil || v.IsConst {
		return v
	}
	if c := e.getCell(v); c.k == constant {
		return ir.Const(c.v)
	}
	return v
}

func (e *evaluator) foldInstruction(inst ir.Instruction) {
	switch i := inst.(type) {
	case *ir.AssignInst:
		e.substituteOperation(i.RHS)
		if c := e.getCell(i.Res); c.k == constant {
			i.RHS = &ir.CopyOp{Value: ir.Const(c.v)}
		}
	case *ir.StoreInst:
		i.Addr = e.substituteValue(i.Addr)
		i.Value = e.substituteValue(i.Value)
	}
}

func (e *evaluator) substituteOperation(op ir.Operation) {
	switch o := op.(type) {
	case *ir.BinaryOp:
		o.Left = e.substituteValue(o.Left)
		o.Right = e.substituteValue(o.Right)
	case *ir.UnaryOp:
		o.Operand = e.substituteValue(o.Operand)
	case *ir.LoadOp:
		o.Address = e.substituteValue(o.Address)
	case *ir.CallOp:
		for i, a := range o.Args {
			o.Args[i] = e.substituteValue(a)
		}
	case *ir.CopyOp:
		o.Value = e.substituteValue(o.Value)
	}
}

// foldTerminator substitutes constant operands into the terminator and, for
// a Cmp whose operands both turned out constant, replaces it with an
// UncondJump to the statically chosen successor, detaching the other arm.
func (e *evaluator) foldTerminator(b *ir.BasicBlock) {
	switch term := b.Terminator.(type) {
	case *ir.CmpInst:
		term.Left = e.substituteValue(term.Left)
		term.Right = e.substituteValue(term.Right)
		if term.Left.IsConst && term.Right.IsConst {
			chosen, other := term.Else, term.Then
			if term.Left.ConstVal == term.Right.ConstVal {
				chosen, other = term.Then, term.Else
			}
			ir.RemoveEdge(b, other)
			for _, p := range other.Phis() {
				p.Inputs.Delete(b.Label)
			}
			ir.SetUncondJump(b, chosen)
		}
	case *ir.ReturnInst:
		if term.Value != nil {
			term.Value = e.substituteValue(term.Value)
		}
	}
}
