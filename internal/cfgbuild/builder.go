// Package cfgbuild lowers a validated typed AST (internal/ast) into a
// per-function CFG of basic blocks (internal/ir). The result is *not* SSA
// form yet: every read of a named variable is an unresolved (Version ==
// ir.UnversionedVar) reference by name, left for internal/ssa to place ϕ
// nodes and rename.
package cfgbuild

import (
	"midend/internal/ast"
	"midend/internal/ice"
	"midend/internal/ir"
)

// loopFrame records the jump targets break/continue resolve to inside the
// loop currently being lowered.
type loopFrame struct {
	breakTarget    *ir.BasicBlock
	continueTarget *ir.BasicBlock
}

// Builder holds the mutable state of lowering a single function.
type Builder struct {
	fn           *ir.Function
	currentBlock *ir.BasicBlock
	loopStack    []loopFrame
}

// BuildProgram lowers every function in prog.
func BuildProgram(prog *ast.Program) *ir.Program {
	out := &ir.Program{}
	for _, fn := range prog.Functions {
		out.Functions = append(out.Functions, BuildFunction(fn))
	}
	return out
}

// BuildFunction lowers a single function declaration to a CFG.
func BuildFunction(fn *ast.Function) *ir.Function {
	f := ir.NewFunction(fn.Name)
	b := &Builder{fn: f, currentBlock: f.Entry}

	for i, p := range fn.Params {
		arg := ir.UnresolvedRef(p.Name)
		ir.AppendGetArgument(f.Entry, arg, i, p.Type.IsArray())
	}

	b.lowerStmts(fn.Body)

	if !b.blockTerminated() {
		// Falling off the end of the body is a void return; a function
		// declared with a non-void return type falling through here is a
		// malformed-input case the (out-of-scope) semantic analyzer should
		// have rejected already.
		ir.SetReturn(b.currentBlock, nil, f.Exit)
	}

	return f
}

func (b *Builder) blockTerminated() bool {
	return b.currentBlock.Terminator != nil
}

func (b *Builder) lowerStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		b.lowerStmt(s)
	}
}

func (b *Builder) lowerStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Assignment:
		lhs := ir.UnresolvedRef(st.Name)
		ir.AppendAssign(b.currentBlock, lhs, b.lowerRHS(st.Rhs))

	case *ast.IndexAssignment:
		addr := b.lowerAddress(st.Name, st.Dims, st.Indices)
		val := b.lowerExpr(st.Rhs)
		ir.AppendStore(b.currentBlock, addr, val)

	case *ast.ArrayDecl:
		lhs := ir.UnresolvedRef(st.Name)
		ir.AppendArrayInit(b.currentBlock, lhs, st.Dims)

	case *ast.Condition:
		b.lowerCondition(st)

	case *ast.ForLoop:
		b.lowerForLoop(st)

	case *ast.UnconditionalLoop:
		b.lowerUnconditionalLoop(st)

	case *ast.Break:
		frame := b.topLoop("break")
		ir.SetUncondJump(b.currentBlock, frame.breakTarget)
		b.currentBlock = b.fn.NewBlock("")

	case *ast.Continue:
		frame := b.topLoop("continue")
		ir.SetUncondJump(b.currentBlock, frame.continueTarget)
		b.currentBlock = b.fn.NewBlock("")

	case *ast.Return:
		var v *ir.Value
		if st.Value != nil {
			v = b.lowerExpr(st.Value)
		}
		ir.SetReturn(b.currentBlock, v, b.fn.Exit)
		b.currentBlock = b.fn.NewBlock("")

	case *ast.ExprStmt:
		b.lowerExpr(st.Expr)

	default:
		ice.RaiseGlobal("E-CFG-001", "cfgbuild", "unknown statement kind %T", s)
	}
}

func (b *Builder) topLoop(what string) loopFrame {
	if len(b.loopStack) == 0 {
		ice.RaiseGlobal("E-CFG-002", "cfgbuild", "%s outside any loop", what)
	}
	return b.loopStack[len(b.loopStack)-1]
}

// lowerCondition emits the Cmp-and-merge shape for an if/else.
// Cmp(left, right, then, else) transfers to `then` when left == right; a
// source Condition tests cond != 0, so the Cmp here compares cond against
// 0 and the *source* then-arm is wired as the Cmp's `else` target.
func (b *Builder) lowerCondition(c *ast.Condition) {
	condVal := b.lowerExpr(c.Cond)
	predBlock := b.currentBlock

	thenBlock := b.fn.NewBlock("then")
	mergeBlock := b.fn.NewBlock("merge")

	falseTarget := mergeBlock
	if c.Else != nil {
		falseTarget = b.fn.NewBlock("else")
	}

	ir.SetCmp(predBlock, condVal, ir.Const(0), falseTarget, thenBlock)

	b.currentBlock = thenBlock
	b.lowerStmts(c.Then)
	if !b.blockTerminated() {
		ir.SetUncondJump(b.currentBlock, mergeBlock)
	}

	if c.Else != nil {
		b.currentBlock = falseTarget
		b.lowerStmts(c.Else)
		if !b.blockTerminated() {
			ir.SetUncondJump(b.currentBlock, mergeBlock)
		}
	}

	b.currentBlock = mergeBlock
}

// lowerForLoop emits the canonical six-block loop shape:
// the existing current block acts as the preheader-entry (it just gains
// Init and a jump), then condition-check, preheader-of-body, loop-body,
// loop-latch, loop-tail, and loop-exit are created fresh.
func (b *Builder) lowerForLoop(f *ast.ForLoop) {
	preheaderEntry := b.currentBlock
	if f.Init != nil {
		b.lowerStmt(f.Init)
	}

	condCheck := b.fn.NewBlock("loop condition check")
	phBody := b.fn.NewBlock("loop preheader")
	body := b.fn.NewBlock("loop body")
	latch := b.fn.NewBlock("loop latch")
	tail := b.fn.NewBlock("loop tail")
	exit := b.fn.NewBlock("loop exit")

	ir.SetUncondJump(preheaderEntry, condCheck)

	b.currentBlock = condCheck
	cond1 := b.lowerExpr(f.Cond)
	ir.SetCmp(condCheck, cond1, ir.Const(0), exit, phBody)

	ir.SetUncondJump(phBody, body)

	b.loopStack = append(b.loopStack, loopFrame{breakTarget: tail, continueTarget: latch})
	b.currentBlock = body
	b.lowerStmts(f.Body)
	if !b.blockTerminated() {
		ir.SetUncondJump(b.currentBlock, latch)
	}
	b.loopStack = b.loopStack[:len(b.loopStack)-1]

	b.currentBlock = latch
	if f.Update != nil {
		b.lowerStmt(f.Update)
	}
	cond2 := b.lowerExpr(f.Cond)
	ir.SetCmp(latch, cond2, ir.Const(0), tail, body)

	ir.SetUncondJump(tail, exit)

	b.currentBlock = exit
}

// lowerUnconditionalLoop emits the analogous five-block shape: no
// condition-check block exists, so the loop is exited only via break
// (to tail) or return.
func (b *Builder) lowerUnconditionalLoop(u *ast.UnconditionalLoop) {
	preheaderEntry := b.currentBlock

	body := b.fn.NewBlock("loop body")
	latch := b.fn.NewBlock("loop latch")
	tail := b.fn.NewBlock("loop tail")
	exit := b.fn.NewBlock("loop exit")

	ir.SetUncondJump(preheaderEntry, body)

	b.loopStack = append(b.loopStack, loopFrame{breakTarget: tail, continueTarget: latch})
	b.currentBlock = body
	b.lowerStmts(u.Body)
	if !b.blockTerminated() {
		ir.SetUncondJump(b.currentBlock, latch)
	}
	b.loopStack = b.loopStack[:len(b.loopStack)-1]

	ir.SetUncondJump(latch, body)
	ir.SetUncondJump(tail, exit)

	b.currentBlock = exit
}
