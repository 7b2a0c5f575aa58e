package ir

// This file collects the small per-instruction-kind constructors the CFG
// builder (and test helpers) use to append instructions to a block. Keeping
// them here, rather than inline at each call site, is what makes "append an
// Assign" and "append a Store" read the same way throughout internal/cfgbuild.

// AppendAssign appends `result = rhs` to b and returns the instruction.
func AppendAssign(b *BasicBlock, result *Value, rhs Operation) *AssignInst {
	inst := &AssignInst{Res: result, RHS: rhs}
	b.Append(inst)
	result.Def = inst
	return inst
}

// AppendArrayInit appends an ArrayInit declaring a fresh array of the given
// dimensions; result becomes a base pointer.
func AppendArrayInit(b *BasicBlock, result *Value, dims []int) *ArrayInitInst {
	inst := &ArrayInitInst{Res: result, Dims: dims}
	b.Append(inst)
	result.Def = inst
	result.Base = result
	return inst
}

// AppendStore appends a Store of value through addr.
func AppendStore(b *BasicBlock, addr, value *Value) *StoreInst {
	inst := &StoreInst{Addr: addr, Value: value}
	b.Append(inst)
	return inst
}

// AppendGetArgument appends a GetArgument materializing parameter index.
func AppendGetArgument(b *BasicBlock, result *Value, index int, isArray bool) *GetArgumentInst {
	inst := &GetArgumentInst{Res: result, Index: index}
	b.Append(inst)
	result.Def = inst
	if isArray {
		result.Base = result
	}
	return inst
}

// SetCmp installs a Cmp terminator on b.
func SetCmp(b *BasicBlock, left, right *Value, then, els *BasicBlock) *CmpInst {
	inst := &CmpInst{Left: left, Right: right, Then: then, Else: els}
	b.SetTerminator(inst)
	AddSuccessor(b, then)
	AddSuccessor(b, els)
	return inst
}

// SetUncondJump installs an UncondJump terminator on b.
func SetUncondJump(b *BasicBlock, target *BasicBlock) *UncondJumpInst {
	inst := &UncondJumpInst{Target: target}
	b.SetTerminator(inst)
	AddSuccessor(b, target)
	return inst
}

// SetReturn installs a Return terminator on b, wired to exit.
func SetReturn(b *BasicBlock, value *Value, exit *BasicBlock) *ReturnInst {
	inst := &ReturnInst{Value: value, Exit: exit}
	b.SetTerminator(inst)
	if exit != nil {
		AddSuccessor(b, exit)
	}
	return inst
}
