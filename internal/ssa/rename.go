package ssa

import (
	"midend/internal/dominance"
	"midend/internal/ice"
	"midend/internal/ir"
)

// renamer carries the per-name version stacks and counters used by the
// dominator-tree-order renaming walk.
type renamer struct {
	info     *dominance.Info
	stacks   map[string][]*ir.Value
	counters map[string]int
}

func rename(fn *ir.Function, info *dominance.Info) {
	r := &renamer{
		info:     info,
		stacks:   map[string][]*ir.Value{},
		counters: map[string]int{},
	}
	r.renameBlock(fn.Entry)
}

func (r *renamer) nextVersion(name string) int {
	v := r.counters[name]
	r.counters[name] = v + 1
	return v
}

func (r *renamer) push(name string, v *ir.Value) {
	r.stacks[name] = append(r.stacks[name], v)
}

func (r *renamer) pop(name string) {
	s := r.stacks[name]
	r.stacks[name] = s[:len(s)-1]
}

func (r *renamer) top(name string) *ir.Value {
	s := r.stacks[name]
	if len(s) == 0 {
		ice.RaiseGlobal("E-SSA-001", "ssa", "variable %q used with no prior definition reaching this point", name)
	}
	return s[len(s)-1]
}

// resolve replaces a pre-SSA use-site operand wholesale with the reaching
// definition's *Value object: a constant or an already-resolved value
// passes through unchanged, an unresolved reference is discarded in favor
// of the top-of-stack definition for its name, so every use of a given
// definition ends up sharing one object (the same one base-pointer
// propagation and later passes mutate).
func (r *renamer) resolve(v *ir.Value) *ir.Value {
	if v == nil || v.IsConst || v.Version != ir.UnversionedVar {
		return v
	}
	return r.top(v.Name)
}

func (r *renamer) defineHere(result *ir.Value, pushed *[]string) {
	version := r.nextVersion(result.Name)
	result.Version = version
	r.push(result.Name, result)
	*pushed = append(*pushed, result.Name)
}

func (r *renamer) renameBlock(b *ir.BasicBlock) {
	var pushed []string

	for _, phi := range b.Phis() {
		r.defineHere(phi.Res, &pushed)
	}

	for _, inst := range b.Instructions {
		r.renameUses(inst)
		if res := inst.Result(); res != nil {
			r.defineHere(res, &pushed)
		}
	}

	if b.Terminator != nil {
		r.renameUses(b.Terminator)
	}

	for _, s := range b.Successors {
		for _, phi := range s.Phis() {
			phi.Inputs.Set(b.Label, r.top(phi.Varname))
		}
	}

	for _, child := range r.info.Children(b) {
		r.renameBlock(child)
	}

	for _, name := range pushed {
		r.pop(name)
	}
}

// renameUses rewrites every use-site operand of inst, dispatching on the
// concrete instruction (and, for Assign, the concrete RHS operation) since
// each holds its operands in differently named fields.
func (r *renamer) renameUses(inst ir.Instruction) {
	switch i := inst.(type) {
	case *ir.AssignInst:
		r.renameOperation(i.RHS)
	case *ir.CmpInst:
		i.Left = r.resolve(i.Left)
		i.Right = r.resolve(i.Right)
	case *ir.ReturnInst:
		if i.Value != nil {
			i.Value = r.resolve(i.Value)
		}
	case *ir.StoreInst:
		i.Addr = r.resolve(i.Addr)
		i.Value = r.resolve(i.Value)
	case *ir.UncondJumpInst, *ir.GetArgumentInst, *ir.ArrayInitInst:
		// no use-site operands
	default:
		ice.RaiseGlobal("E-SSA-002", "ssa", "unknown instruction kind %T during renaming", inst)
	}
}

func (r *renamer) renameOperation(op ir.Operation) {
	switch o := op.(type) {
	case *ir.BinaryOp:
		o.Left = r.resolve(o.Left)
		o.Right = r.resolve(o.Right)
	case *ir.UnaryOp:
		o.Operand = r.resolve(o.Operand)
	case *ir.LoadOp:
		o.Address = r.resolve(o.Address)
	case *ir.CallOp:
		for idx, a := range o.Args {
			o.Args[idx] = r.resolve(a)
		}
	case *ir.CopyOp:
		o.Value = r.resolve(o.Value)
	default:
		ice.RaiseGlobal("E-SSA-003", "ssa", "unknown operation kind %T during renaming", op)
	}
}
