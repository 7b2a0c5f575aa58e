package ir

import "strconv"

// Instruction is the tagged-sum interface implemented by every straight-line
// instruction kind and by every terminator. Passes dispatch with exhaustive
// switches over the concrete type.
type Instruction interface {
	Block() *BasicBlock
	SetBlock(*BasicBlock)
	Result() *Value // nil if the instruction defines no value
	Operands() []*Value
	IsTerminator() bool
	String() string
}

// Terminator is the subset of Instruction that ends a block and names its
// successors.
type Terminator interface {
	Instruction
	Successors() []*BasicBlock
}

// AssignInst computes RHS and binds it to Result.
type AssignInst struct {
	block *BasicBlock
	Res   *Value
	RHS   Operation
}

func (a *AssignInst) Block() *BasicBlock { return a.block }
func (a *AssignInst) SetBlock(b *BasicBlock) { a.block = b }
func (a *AssignInst) Result() *Value { return a.Res }
func (a *AssignInst) Operands() []*Value { return a.RHS.Operands() }
func (a *AssignInst) IsTerminator() bool { return false }
func (a *AssignInst) String() string { return a.Res.String() + " = " + a.RHS.String() }

// CmpInst is the terminator for a conditional branch. It semantically tests
// Left == Right; control transfers to Then when the test holds, to Else
// otherwise.
type CmpInst struct {
	block       *BasicBlock
	Left, Right *Value
	Then, Else  *BasicBlock
}

func (c *CmpInst) Block() *BasicBlock { return c.block }
func (c *CmpInst) SetBlock(b *BasicBlock) { c.block = b }
func (c *CmpInst) Result() *Value { return nil }
func (c *CmpInst) Operands() []*Value { return []*Value{c.Left, c.Right} }
func (c *CmpInst) IsTerminator() bool { return true }
func (c *CmpInst) Successors() []*BasicBlock {
	return []*BasicBlock{c.Then, c.Else}
}
func (c *CmpInst) String() string {
	return "cmp(" + c.Left.String() + ", " + c.Right.String() + ")\n    if CF == 1 then jmp " +
		c.Then.Label + " else jmp " + c.Else.Label
}

// UncondJumpInst transfers control unconditionally to Target.
type UncondJumpInst struct {
	block  *BasicBlock
	Target *BasicBlock
}

func (u *UncondJumpInst) Block() *BasicBlock { return u.block }
func (u *UncondJumpInst) SetBlock(b *BasicBlock) { u.block = b }
func (u *UncondJumpInst) Result() *Value { return nil }
func (u *UncondJumpInst) Operands() []*Value { return nil }
func (u *UncondJumpInst) IsTerminator() bool { return true }
func (u *UncondJumpInst) Successors() []*BasicBlock { return []*BasicBlock{u.Target} }
func (u *UncondJumpInst) String() string { return "jmp " + u.Target.Label }

// ReturnInst exits the function, optionally carrying a value. Its only
// successor is the function's exit block.
type ReturnInst struct {
	block *BasicBlock
	Value *Value // nil for a void return
	Exit  *BasicBlock
}

func (r *ReturnInst) Block() *BasicBlock { return r.block }
func (r *ReturnInst) SetBlock(b *BasicBlock) { r.block = b }
func (r *ReturnInst) Result() *Value { return nil }
func (r *ReturnInst) Operands() []*Value {
	if r.Value == nil {
		return nil
	}
	return []*Value{r.Value}
}
func (r *ReturnInst) IsTerminator() bool { return true }
func (r *ReturnInst) Successors() []*BasicBlock {
	if r.Exit == nil {
		return nil
	}
	return []*BasicBlock{r.Exit}
}
func (r *ReturnInst) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return(" + r.Value.String() + ")"
}

// ArrayInitInst declares a fresh array; Res becomes a base pointer.
type ArrayInitInst struct {
	block *BasicBlock
	Res   *Value
	Dims  []int
}

func (a *ArrayInitInst) Block() *BasicBlock { return a.block }
func (a *ArrayInitInst) SetBlock(b *BasicBlock) { a.block = b }
func (a *ArrayInitInst) Result() *Value { return a.Res }
func (a *ArrayInitInst) Operands() []*Value { return nil }
func (a *ArrayInitInst) IsTerminator() bool { return false }
func (a *ArrayInitInst) String() string {
	s := a.Res.String() + " = array_init("
	for _, d := range a.Dims {
		s += "[" + strconv.Itoa(d) + "]"
	}
	return s + ")"
}

// StoreInst writes Value through an address derived from some array base.
type StoreInst struct {
	block *BasicBlock
	Addr  *Value
	Value *Value
}

func (s *StoreInst) Block() *BasicBlock { return s.block }
func (s *StoreInst) SetBlock(b *BasicBlock) { s.block = b }
func (s *StoreInst) Result() *Value { return nil }
func (s *StoreInst) Operands() []*Value { return []*Value{s.Addr, s.Value} }
func (s *StoreInst) IsTerminator() bool { return false }
func (s *StoreInst) String() string {
	return "Store(" + s.Addr.String() + ", " + s.Value.String() + ")"
}

// GetArgumentInst materializes a function parameter. If the parameter is an
// array, Res becomes a base pointer.
type GetArgumentInst struct {
	block *BasicBlock
	Res   *Value
	Index int
}

func (g *GetArgumentInst) Block() *BasicBlock { return g.block }
func (g *GetArgumentInst) SetBlock(b *BasicBlock) { g.block = b }
func (g *GetArgumentInst) Result() *Value { return g.Res }
func (g *GetArgumentInst) Operands() []*Value { return nil }
func (g *GetArgumentInst) IsTerminator() bool { return false }
func (g *GetArgumentInst) String() string {
	return g.Res.String() + " = getarg(" + strconv.Itoa(g.Index) + ")"
}

// PhiInst is stored separately from straight-line instructions on its
// block; it conceptually executes at block entry in parallel with every
// other ϕ in the block.
type PhiInst struct {
	block   *BasicBlock
	Res     *Value
	Varname string
	Inputs  *PhiInputs
}

func (p *PhiInst) Block() *BasicBlock { return p.block }
func (p *PhiInst) SetBlock(b *BasicBlock) { p.block = b }
func (p *PhiInst) Result() *Value { return p.Res }
func (p *PhiInst) Operands() []*Value { return p.Inputs.Values() }
func (p *PhiInst) IsTerminator() bool { return false }
func (p *PhiInst) String() string {
	s := p.Res.String() + " = ϕ("
	for i, lbl := range p.Inputs.Labels() {
		if i > 0 {
			s += ", "
		}
		s += lbl + ": " + p.Inputs.Values()[i].String()
	}
	return s + ")"
}

