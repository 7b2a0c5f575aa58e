package sccp

import "midend/internal/ir"

type edgeKey struct{ from, to *ir.BasicBlock }

// user records one occurrence of a value as an operand, so that when the
// value's cell changes we can re-evaluate exactly the instructions and ϕs
// that read it, instead of re-scanning the whole function.
type user struct {
	block *ir.BasicBlock
	phi   *ir.PhiInst      // set when the user is a ϕ node
	inst  ir.Instruction   // set when the user is a straight-line instruction or terminator
}

// evaluator holds the SCCP analysis's mutable worklist state for one
// function.
type evaluator struct {
	fn *ir.Function

	cells      map[*ir.Value]cell
	executable map[*ir.BasicBlock]bool
	feasible   map[edgeKey]bool
	users      map[*ir.Value][]user

	blockWL []*ir.BasicBlock
	valueWL []*ir.Value
}

func newEvaluator(fn *ir.Function) *evaluator {
	e := &evaluator{
		fn:         fn,
		cells:      map[*ir.Value]cell{},
		executable: map[*ir.BasicBlock]bool{},
		feasible:   map[edgeKey]bool{},
		users:      map[*ir.Value][]user{},
	}
	e.indexUsers()
	return e
}

func (e *evaluator) indexUsers() {
	record := func(b *ir.BasicBlock, operands []*ir.Value, inst ir.Instruction) {
		for _, v := range operands {
			if v == nil || v.IsConst {
				continue
			}
			e.users[v] = append(e.users[v], user{block: b, inst: inst})
		}
	}
	for _, b := range e.fn.Blocks {
		for _, p := range b.Phis() {
			for _, v := range p.Inputs.Values() {
				if v == nil || v.IsConst {
					continue
				}
				e.users[v] = append(e.users[v], user{block: b, phi: p})
			}
		}
		for _, inst := range b.Instructions {
			record(b, inst.Operands(), inst)
		}
		if b.Terminator != nil {
			record(b, b.Terminator.Operands(), b.Terminator)
		}
	}
}

func (e *evaluator) getCell(v *ir.Value) cell {
	if v == nil {
		return undefCell()
	}
	if v.IsConst {
		return constCell(v.ConstVal)
	}
	if c, ok := e.cells[v]; ok {
		return c
	}
	return undefCell()
}

// update installs newCell for v if it differs from the current cell,
// pushing v onto the variable worklist so its users get re-evaluated.
func (e *evaluator) update(v *ir.Value, newCell cell) {
	cur := e.getCell(v)
	if cur == newCell {
		return
	}
	e.cells[v] = newCell
	e.valueWL = append(e.valueWL, v)
}

func (e *evaluator) markExecutable(b *ir.BasicBlock) {
	if e.executable[b] {
		return
	}
	e.executable[b] = true
	e.blockWL = append(e.blockWL, b)
}

func (e *evaluator) markEdgeFeasible(from, to *ir.BasicBlock) {
	key := edgeKey{from, to}
	if e.feasible[key] {
		return
	}
	e.feasible[key] = true
	if !e.executable[to] {
		e.markExecutable(to)
		return
	}
	for _, p := range to.Phis() {
		e.evalPhi(to, p)
	}
}

// run drives the interleaved block/variable worklists to a fixpoint.
func (e *evaluator) run() {
	e.markExecutable(e.fn.Entry)
	for len(e.blockWL) > 0 || len(e.valueWL) > 0 {
		if len(e.blockWL) > 0 {
			b := e.blockWL[len(e.blockWL)-1]
			e.blockWL = e.blockWL[:len(e.blockWL)-1]
			e.evalBlock(b)
			continue
		}
		v := e.valueWL[len(e.valueWL)-1]
		e.valueWL = e.valueWL[:len(e.valueWL)-1]
		for _, u := range e.users[v] {
			if !e.executable[u.block] {
				continue
			}
			if u.phi != nil {
				e.evalPhi(u.block, u.phi)
			} else {
				e.evalOne(u.block, u.inst)
			}
		}
	}
}

func (e *evaluator) evalBlock(b *ir.BasicBlock) {
	for _, p := range b.Phis() {
		e.evalPhi(b, p)
	}
	for _, inst := range b.Instructions {
		e.evalOne(b, inst)
	}
	if b.Terminator != nil {
		e.evalOne(b, b.Terminator)
	}
}

// evalPhi joins only the incoming values on currently feasible edges; an
// infeasible predecessor contributes nothing, which is what lets a ϕ stay
// constant when only one arm of a folded branch can reach it.
func (e *evaluator) evalPhi(b *ir.BasicBlock, p *ir.PhiInst) {
	result := undefCell()
	labels := p.Inputs.Labels()
	values := p.Inputs.Values()
	for i, lbl := range labels {
		pred := predecessorByLabel(b, lbl)
		if pred == nil {
			continue
		}
		if !e.feasible[edgeKey{pred, b}] {
			continue
		}
		result = meet(result, e.getCell(values[i]))
	}
	e.update(p.Res, result)
}

func predecessorByLabel(b *ir.BasicBlock, label string) *ir.BasicBlock {
	for _, p := range b.Predecessors {
		if p.Label == label {
			return p
		}
	}
	return nil
}

func (e *evaluator) evalOne(b *ir.BasicBlock, inst ir.Instruction) {
	switch i := inst.(type) {
	case *ir.AssignInst:
		e.update(i.Res, e.evalOperation(i.RHS))
	case *ir.ArrayInitInst:
		e.update(i.Res, nacCell())
	case *ir.GetArgumentInst:
		e.update(i.Res, nacCell())
	case *ir.StoreInst:
		// no SSA result; nothing to propagate.
	case *ir.CmpInst:
		e.evalCmp(b, i)
	case *ir.UncondJumpInst:
		e.markEdgeFeasible(b, i.Target)
	case *ir.ReturnInst:
		if i.Exit != nil {
			e.markEdgeFeasible(b, i.Exit)
		}
	}
}

func (e *evaluator) evalCmp(b *ir.BasicBlock, c *ir.CmpInst) {
	l := e.getCell(c.Left)
	r := e.getCell(c.Right)
	switch {
	case l.k == constant && r.k == constant:
		if l.v == r.v {
			e.markEdgeFeasible(b, c.Then)
		} else {
			e.markEdgeFeasible(b, c.Else)
		}
	case l.k == nac || r.k == nac:
		e.markEdgeFeasible(b, c.Then)
		e.markEdgeFeasible(b, c.Else)
	default:
		// both undef, or one undef and the other constant: defer until
		// more information arrives.
	}
}

func (e *evaluator) evalOperation(op ir.Operation) cell {
	switch o := op.(type) {
	case *ir.CopyOp:
		return e.getCell(o.Value)
	case *ir.BinaryOp:
		return e.evalBinary(o)
	case *ir.UnaryOp:
		return e.evalUnary(o)
	case *ir.LoadOp, *ir.CallOp:
		return nacCell()
	default:
		return nacCell()
	}
}

func (e *evaluator) evalBinary(b *ir.BinaryOp) cell {
	l := e.getCell(b.Left)
	r := e.getCell(b.Right)

	if b.Op == ir.OpAnd {
		if l.k == constant && l.v == 0 {
			return constCell(0)
		}
		if r.k == constant && r.v == 0 {
			return constCell(0)
		}
	}
	if b.Op == ir.OpOr {
		if l.k == constant && l.v != 0 {
			return constCell(1)
		}
		if r.k == constant && r.v != 0 {
			return constCell(1)
		}
	}

	if l.k == nac || r.k == nac {
		return nacCell()
	}
	if l.k == undef || r.k == undef {
		return undefCell()
	}

	switch b.Op {
	case ir.OpAdd:
		return constCell(l.v + r.v)
	case ir.OpSub:
		return constCell(l.v - r.v)
	case ir.OpMul:
		return constCell(l.v * r.v)
	case ir.OpDiv:
		if r.v == 0 {
			return nacCell()
		}
		return constCell(l.v / r.v)
	case ir.OpMod:
		if r.v == 0 {
			return nacCell()
		}
		return constCell(l.v % r.v)
	case ir.OpEq:
		return constCell(boolToInt(l.v == r.v))
	case ir.OpNeq:
		return constCell(boolToInt(l.v != r.v))
	case ir.OpLt:
		return constCell(boolToInt(l.v < r.v))
	case ir.OpLe:
		return constCell(boolToInt(l.v <= r.v))
	case ir.OpGt:
		return constCell(boolToInt(l.v > r.v))
	case ir.OpGe:
		return constCell(boolToInt(l.v >= r.v))
	case ir.OpAnd:
		return constCell(boolToInt(l.v != 0 && r.v != 0))
	case ir.OpOr:
		return constCell(boolToInt(l.v != 0 || r.v != 0))
	default:
		return nacCell()
	}
}

func (e *evaluator) evalUnary(u *ir.UnaryOp) cell {
	a := e.getCell(u.Operand)
	if a.k == nac {
		return nacCell()
	}
	if a.k == undef {
		return undefCell()
	}
	switch u.Op {
	case ir.OpNeg:
		return constCell(-a.v)
	case ir.OpNot:
		return constCell(boolToInt(a.v == 0))
	default:
		return nacCell()
	}
}
