// Package dce implements SSA-aware dead code elimination with array
// pointer-chain reasoning: mark from side-effecting roots, walk the
// def-use graph backward, and for every live Load through an array base
// pointer keep the Stores through the same base that reach it alive too.
package dce

import (
	"midend/internal/ice"
	"midend/internal/ir"
)

type state struct {
	fn        *ir.Function
	liveInst  map[ir.Instruction]bool
	liveValue map[*ir.Value]bool
	instWL    []ir.Instruction
}

// Run sweeps fn to a fixpoint, then removes every instruction and ϕ node
// found dead.
func Run(fn *ir.Function) {
	s := &state{
		fn:        fn,
		liveInst:  map[ir.Instruction]bool{},
		liveValue: map[*ir.Value]bool{},
	}
	s.seedRoots()
	s.drain()
	s.sweep()
}

// RunProgram runs Run over every function in prog.
func RunProgram(prog *ir.Program) {
	for _, fn := range prog.Functions {
		Run(fn)
	}
}

func (s *state) markInstLive(inst ir.Instruction) {
	if inst == nil || s.liveInst[inst] {
		return
	}
	s.liveInst[inst] = true
	s.instWL = append(s.instWL, inst)
}

func (s *state) markValueLive(v *ir.Value) {
	if v == nil || v.IsConst || s.liveValue[v] {
		return
	}
	s.liveValue[v] = true
	if v.Def != nil {
		s.markInstLive(v.Def)
	}
	if v.Base != nil && v.Base != v {
		s.markValueLive(v.Base)
	}
}

// seedRoots marks the always-live instructions: every terminator, every
// Call, every division/modulo whose divisor is not a known-nonzero
// constant, and every Store whose destination address has no resolvable
// base pointer (a base lost through an unconstrained ϕ leaves nothing for
// a later Load to be correlated back to, so the store is conservatively
// kept).
func (s *state) seedRoots() {
	for _, b := range s.fn.ReachableBlocks() {
		if b.Terminator != nil {
			s.markInstLive(b.Terminator)
		}
		for _, inst := range b.Instructions {
			switch i := inst.(type) {
			case *ir.AssignInst:
				if isUnsafeRoot(i.RHS) {
					s.markInstLive(i)
				}
			case *ir.StoreInst:
				if i.Addr.Base == nil {
					s.markInstLive(i)
				}
			}
		}
	}
}

func isUnsafeRoot(op ir.Operation) bool {
	switch o := op.(type) {
	case *ir.CallOp:
		return true
	case *ir.BinaryOp:
		if o.Op != ir.OpDiv && o.Op != ir.OpMod {
			return false
		}
		return !o.Right.IsConst || o.Right.ConstVal == 0
	default:
		return false
	}
}

// drain processes the instruction worklist to a fixpoint: every live
// instruction's operands become live values, whose defining instructions
// (if any) become live instructions in turn. An instruction through which
// an array's contents become observable (a Load, a Call taking an
// address-typed argument, a Return of an address) additionally triggers
// the pointer-chain search for the Stores reaching it.
func (s *state) drain() {
	for len(s.instWL) > 0 {
		inst := s.instWL[len(s.instWL)-1]
		s.instWL = s.instWL[:len(s.instWL)-1]

		for _, operand := range inst.Operands() {
			s.markValueLive(operand)
		}

		switch i := inst.(type) {
		case *ir.AssignInst:
			switch rhs := i.RHS.(type) {
			case *ir.LoadOp:
				s.chaseStores(i.Block(), indexOf(i.Block(), i), rhs.Address.Base)
			case *ir.CallOp:
				for _, arg := range rhs.Args {
					if !arg.IsConst {
						s.chaseStores(i.Block(), indexOf(i.Block(), i), arg.Base)
					}
				}
			}
		case *ir.ReturnInst:
			if i.Value != nil && !i.Value.IsConst {
				s.chaseStores(i.Block(), len(i.Block().Instructions), i.Value.Base)
			}
		}
	}
}

func (s *state) chaseStores(b *ir.BasicBlock, upTo int, base *ir.Value) {
	if base == nil {
		return
	}
	s.walkForStores(b, upTo, base, map[*ir.BasicBlock]bool{})
}

// walkForStores implements the pointer-chain search: scan upTo's
// preceding instructions in b, marking every Store through base live (the
// walk tracks only base identity, not element offsets, so every earlier
// store through the same array can be the one a given load observes). An
// already-live store dead-ends the branch: the walk that marked it has
// covered everything above it. A branch that runs off the top of its block
// continues into each predecessor.
func (s *state) walkForStores(b *ir.BasicBlock, upTo int, base *ir.Value, visited map[*ir.BasicBlock]bool) {
	if visited[b] {
		return
	}
	visited[b] = true

	for idx := upTo - 1; idx >= 0; idx-- {
		store, ok := b.Instructions[idx].(*ir.StoreInst)
		if !ok || store.Addr.Base != base {
			continue
		}
		if s.liveInst[store] {
			return
		}
		s.markInstLive(store)
	}

	for _, p := range b.Predecessors {
		s.walkForStores(p, len(p.Instructions), base, visited)
	}
}

func indexOf(b *ir.BasicBlock, inst ir.Instruction) int {
	for i, candidate := range b.Instructions {
		if candidate == inst {
			return i
		}
	}
	ice.RaiseGlobal("E-DCE-001", "dce", "instruction not found in its own block %s", b.Label)
	return -1
}

// sweep removes every ϕ node and straight-line instruction DCE never
// marked live; terminators are always kept.
func (s *state) sweep() {
	for _, b := range s.fn.ReachableBlocks() {
		for _, phi := range b.Phis() {
			if !s.liveInst[phi] {
				b.RemovePhi(phi.Varname)
			}
		}

		kept := b.Instructions[:0]
		for _, inst := range b.Instructions {
			switch inst.(type) {
			case *ir.AssignInst, *ir.GetArgumentInst, *ir.ArrayInitInst, *ir.StoreInst:
				if s.liveInst[inst] {
					kept = append(kept, inst)
				}
			default:
				ice.RaiseGlobal("E-DCE-002", "dce", "unknown straight-line instruction kind %T", inst)
			}
		}
		b.Instructions = kept
	}
}
