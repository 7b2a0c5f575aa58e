package ir

// SymbolTable is the minimal view the mid-end needs of the scope visible at
// a block: whether a name is a scalar or an array, and its dimensions. The
// authoritative table lives in the (out-of-scope) semantic analyzer. The
// CFG builder does not fill it in: BasicBlock.Symbols is nil on every block
// internal/cfgbuild creates, and no pass reads it.
type SymbolTable struct {
	parent  *SymbolTable
	symbols map[string]*Symbol
}

// Symbol describes one name visible in a block's scope.
type Symbol struct {
	Name    string
	IsArray bool
	Dims    []int // row-major dimensions, empty for scalars
}

func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{parent: parent, symbols: make(map[string]*Symbol)}
}

func (s *SymbolTable) Define(sym *Symbol) { s.symbols[sym.Name] = sym }

func (s *SymbolTable) Lookup(name string) *Symbol {
	for t := s; t != nil; t = t.parent {
		if sym, ok := t.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// BasicBlock is a maximal straight-line instruction sequence ending in
// exactly one terminator, plus the ϕ nodes that logically execute at its
// entry.
type BasicBlock struct {
	Label string
	Role  string // "entry", "loop header", "then", ... (advisory only)

	phiOrder []string
	phis     map[string]*PhiInst

	Instructions []Instruction
	Terminator   Terminator

	Predecessors []*BasicBlock
	Successors   []*BasicBlock

	Symbols *SymbolTable
}

func NewBlock(label string) *BasicBlock {
	return &BasicBlock{
		Label: label,
		phis:  make(map[string]*PhiInst),
	}
}

// InsertPhi is idempotent per variable name: calling it twice for the same
// name returns the existing ϕ rather than creating a second one.
func (b *BasicBlock) InsertPhi(varname string, result *Value) *PhiInst {
	if p, ok := b.phis[varname]; ok {
		return p
	}
	p := &PhiInst{block: b, Res: result, Varname: varname, Inputs: NewPhiInputs()}
	result.Def = p
	b.phis[varname] = p
	b.phiOrder = append(b.phiOrder, varname)
	return p
}

func (b *BasicBlock) Phi(varname string) (*PhiInst, bool) {
	p, ok := b.phis[varname]
	return p, ok
}

// Phis returns the block's ϕ nodes in insertion order.
func (b *BasicBlock) Phis() []*PhiInst {
	out := make([]*PhiInst, 0, len(b.phiOrder))
	for _, name := range b.phiOrder {
		out = append(out, b.phis[name])
	}
	return out
}

// RemovePhi deletes a ϕ node, e.g. when DCE finds it dead.
func (b *BasicBlock) RemovePhi(varname string) {
	if _, ok := b.phis[varname]; !ok {
		return
	}
	delete(b.phis, varname)
	for i, name := range b.phiOrder {
		if name == varname {
			b.phiOrder = append(b.phiOrder[:i], b.phiOrder[i+1:]...)
			break
		}
	}
}

// Append adds an instruction to the end of the block's straight-line list.
func (b *BasicBlock) Append(inst Instruction) {
	inst.SetBlock(b)
	b.Instructions = append(b.Instructions, inst)
}

// SetTerminator installs t as the block's terminator.
func (b *BasicBlock) SetTerminator(t Terminator) {
	t.SetBlock(b)
	b.Terminator = t
}

// AddSuccessor links pred -> succ, maintaining both sides' lists. Repeated
// calls for the same pair are idempotent (a block may branch to the same
// successor from both Cmp arms only in degenerate cases, but DCE/SCCP
// rewrites can otherwise attempt to re-add an edge that is already
// present).
func AddSuccessor(pred, succ *BasicBlock) {
	for _, s := range pred.Successors {
		if s == succ {
			return
		}
	}
	pred.Successors = append(pred.Successors, succ)
	succ.Predecessors = append(succ.Predecessors, pred)
}

// RemoveEdge unlinks pred -> succ from both sides' lists, if present.
func RemoveEdge(pred, succ *BasicBlock) {
	pred.Successors = removeBlock(pred.Successors, succ)
	succ.Predecessors = removeBlock(succ.Predecessors, pred)
}

func removeBlock(list []*BasicBlock, target *BasicBlock) []*BasicBlock {
	out := list[:0]
	for _, b := range list {
		if b != target {
			out = append(out, b)
		}
	}
	return out
}
