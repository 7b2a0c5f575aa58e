package licm

import (
	"midend/internal/dominance"
	"midend/internal/ir"
)

// Run hoists loop-invariant Assign instructions out of every natural loop
// in fn, smallest loop first, into each loop's preheader.
func Run(fn *ir.Function) {
	info := dominance.Analyze(fn.Entry)
	loops := detectLoops(fn, info)
	idx := buildUsesIndex(fn)

	for _, loop := range loops {
		deferred := hoistLoop(info, loop, idx)
		for _, assign := range deferred {
			loop.Preheader.Append(assign)
		}
	}
}

// RunProgram runs Run over every function in prog.
func RunProgram(prog *ir.Program) {
	for _, fn := range prog.Functions {
		Run(fn)
	}
}
