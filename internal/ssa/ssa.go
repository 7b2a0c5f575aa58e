package ssa

import (
	"midend/internal/dominance"
	"midend/internal/ir"
)

// Construct transforms fn in place into pruned SSA form: liveness, ϕ
// placement, dominator-tree-order renaming, then array base-pointer
// propagation. Construct returns the dominance info computed along the
// way. The optimization passes do not take it: LICM recomputes dominance
// on the CFG it is given, and SCCP does not use dominance.
func Construct(fn *ir.Function) *dominance.Info {
	info := dominance.Analyze(fn.Entry)
	lv := analyzeLiveness(fn)
	placePhis(fn, lv, info)
	rename(fn, info)
	propagateBasePointers(fn)
	return info
}

// ConstructProgram runs Construct over every function in prog.
func ConstructProgram(prog *ir.Program) {
	for _, fn := range prog.Functions {
		Construct(fn)
	}
}
