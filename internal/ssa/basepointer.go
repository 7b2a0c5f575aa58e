package ssa

import "midend/internal/ir"

// propagateBasePointers: ArrayInit and
// array-typed GetArgument results are already self-based by construction
// (internal/ir's Append* constructors set that at CFG-build time); here we
// propagate a base through address arithmetic and ϕ/copy chains, i.e.
// whichever operand of a definition already carries a base pointer.
//
// Phi inputs may come from a not-yet-fully-based predecessor on a back
// edge, so this runs to a fixpoint rather than in a single topological
// sweep.
func propagateBasePointers(fn *ir.Function) {
	changed := true
	for changed {
		changed = false
		for _, b := range fn.Blocks {
			for _, phi := range b.Phis() {
				if phi.Res.Base != nil {
					continue
				}
				for _, in := range phi.Inputs.Values() {
					if in != nil && in.Base != nil {
						phi.Res.Base = in.Base
						changed = true
						break
					}
				}
			}
			for _, inst := range b.Instructions {
				a, ok := inst.(*ir.AssignInst)
				if !ok || a.Res.Base != nil {
					continue
				}
				if base := basePointerOf(a.RHS); base != nil {
					a.Res.Base = base
					changed = true
				}
			}
		}
	}
}

// basePointerOf returns the base pointer an operation's result should
// inherit, if any of its operands already carries one. Load and Call
// results are never base pointers: a Load yields a scalar value read
// through an address, and a Call's result is opaque.
func basePointerOf(op ir.Operation) *ir.Value {
	switch o := op.(type) {
	case *ir.CopyOp:
		return o.Value.Base
	case *ir.BinaryOp:
		if o.Left.Base != nil {
			return o.Left.Base
		}
		return o.Right.Base
	case *ir.UnaryOp:
		return o.Operand.Base
	default:
		return nil
	}
}
