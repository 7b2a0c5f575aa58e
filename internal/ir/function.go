package ir

// Type describes a source-level scalar or array type: an integer base with
// zero or more fixed dimensions (scalars have no dimensions).
type Type struct {
	Dims []int
}

func ScalarType() Type { return Type{} }
func ArrayType(dims ...int) Type { return Type{Dims: append([]int{}, dims...)} }
func (t Type) IsArray() bool { return len(t.Dims) > 0 }

// Param is one function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is one per-function CFG plus its declaration-level metadata.
type Function struct {
	Name       string
	Params     []*Param
	ReturnType *Type // nil for void

	Entry *BasicBlock
	Exit  *BasicBlock

	// Blocks in CFG-builder creation order (BB0, BB1, ...). Passes that
	// need a different order derive it explicitly (e.g. ReversePostOrder)
	// rather than relying on this slice's order.
	Blocks []*BasicBlock

	blockCounter int
	valueCounter int
}

// NewFunction creates an empty function with a fresh entry/exit pair.
func NewFunction(name string) *Function {
	f := &Function{Name: name}
	f.Entry = f.NewBlock("")
	f.Entry.Role = "entry"
	f.Exit = f.NewBlock("")
	f.Exit.Role = "exit"
	return f
}

// NewBlock hands out a fresh label (BB0, BB1, ...) in creation order and
// registers the block with the function.
func (f *Function) NewBlock(roleHint string) *BasicBlock {
	label := "BB" + itoaSimple(f.blockCounter)
	f.blockCounter++
	b := NewBlock(label)
	if roleHint != "" {
		b.Role = roleHint
	}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewTemp allocates a fresh compiler-internal SSA temporary name, already
// unique and therefore requiring no ϕ placement of its own.
func (f *Function) NewTemp() string {
	n := "%t" + itoaSimple(f.valueCounter)
	f.valueCounter++
	return n
}

func itoaSimple(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ReversePostOrder returns f's reachable blocks (from Entry) in a
// deterministic reverse-postorder-compatible DFS: successors are visited
// in their Successors insertion order, each block is emitted on "leave",
// and the resulting postorder list is reversed. ReachableBlocks returns
// this order, and DCE, LICM's loop detection, and the DOT renderer walk
// blocks in it.
func (f *Function) ReversePostOrder() []*BasicBlock {
	visited := make(map[*BasicBlock]bool)
	var post []*BasicBlock
	var dfs func(b *BasicBlock)
	dfs = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Successors {
			dfs(s)
		}
		post = append(post, b)
	}
	dfs(f.Entry)
	out := make([]*BasicBlock, len(post))
	for i, b := range post {
		out[len(post)-1-i] = b
	}
	return out
}

// ReachableBlocks returns f's blocks reachable from Entry, in
// ReversePostOrder.
func (f *Function) ReachableBlocks() []*BasicBlock {
	return f.ReversePostOrder()
}

// Program is the whole compilation unit: every function's CFG.
type Program struct {
	Functions []*Function
}
