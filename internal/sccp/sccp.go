package sccp

import "midend/internal/ir"

// Run performs Sparse Conditional Constant Propagation over fn in place:
// analyze to a fixpoint, then detach unreachable blocks and fold
// proven-constant operands and branches.
func Run(fn *ir.Function) {
	e := newEvaluator(fn)
	e.run()
	e.rewrite()
}

// RunProgram runs Run over every function in prog.
func RunProgram(prog *ir.Program) {
	for _, fn := range prog.Functions {
		Run(fn)
	}
}
