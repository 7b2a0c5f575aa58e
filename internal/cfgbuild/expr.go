package cfgbuild

import (
	"midend/internal/ast"
	"midend/internal/ice"
	"midend/internal/ir"
)

// lowerExpr lowers e to an operand: a literal becomes a constant, a bare
// identifier becomes an unresolved name reference, and every composite
// expression is materialized into a fresh temporary via exactly one
// instruction (ordinary three-address-code style).
func (b *Builder) lowerExpr(e ast.Expr) *ir.Value {
	switch ex := e.(type) {
	case *ast.IntLit:
		return ir.Const(ex.Value)
	case *ast.Ident:
		return ir.UnresolvedRef(ex.Name)
	default:
		temp := ir.UnresolvedRef(b.fn.NewTemp())
		ir.AppendAssign(b.currentBlock, temp, b.lowerRHS(e))
		return temp
	}
}

// lowerRHS lowers e directly to the Operation it denotes, without wrapping
// a bare literal/identifier in a redundant Copy; used at Assignment sites
// so `a = b + c` emits a single Assign rather than a temp-then-copy.
func (b *Builder) lowerRHS(e ast.Expr) ir.Operation {
	switch ex := e.(type) {
	case *ast.IntLit:
		return &ir.CopyOp{Value: ir.Const(ex.Value)}
	case *ast.Ident:
		return &ir.CopyOp{Value: ir.UnresolvedRef(ex.Name)}
	case *ast.BinaryExpr:
		return &ir.BinaryOp{
			Op:    ir.BinOp(ex.Op),
			Left:  b.lowerExpr(ex.Left),
			Right: b.lowerExpr(ex.Right),
		}
	case *ast.UnaryExpr:
		return &ir.UnaryOp{
			Op:      ir.UnOp(ex.Op),
			Operand: b.lowerExpr(ex.Operand),
		}
	case *ast.IndexExpr:
		addr := b.lowerAddress(ex.Base.Name, ex.Base.Type.Dims, ex.Indices)
		return &ir.LoadOp{Address: addr}
	case *ast.CallExpr:
		args := make([]*ir.Value, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = b.lowerExpr(a)
		}
		return &ir.CallOp{Function: ex.Function, Args: args}
	default:
		ice.RaiseGlobal("E-CFG-003", "cfgbuild", "unknown expression kind %T", e)
		return nil
	}
}

// lowerAddress computes the address of name[indices...] over an array of
// the given row-major dimensions: stride_i = product of dims[j] for j>i,
// offset = sum(indices[i] * stride_i), address = base + offset.
// Intermediate arithmetic is ordinary Assign-of-Binary; base-pointer
// propagation happens later, during SSA construction.
func (b *Builder) lowerAddress(name string, dims []int, indices []ast.Expr) *ir.Value {
	strides := make([]int64, len(dims))
	acc := int64(1)
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= int64(dims[i])
	}

	var offset *ir.Value
	for i, idxExpr := range indices {
		idxVal := b.lowerExpr(idxExpr)

		term := idxVal
		if strides[i] != 1 {
			term = ir.UnresolvedRef(b.fn.NewTemp())
			ir.AppendAssign(b.currentBlock, term, &ir.BinaryOp{
				Op: ir.OpMul, Left: idxVal, Right: ir.Const(strides[i]),
			})
		}

		if offset == nil {
			offset = term
			continue
		}
		sum := ir.UnresolvedRef(b.fn.NewTemp())
		ir.AppendAssign(b.currentBlock, sum, &ir.BinaryOp{Op: ir.OpAdd, Left: offset, Right: term})
		offset = sum
	}

	base := ir.UnresolvedRef(name)
	addr := ir.UnresolvedRef(b.fn.NewTemp())
	ir.AppendAssign(b.currentBlock, addr, &ir.BinaryOp{Op: ir.OpAdd, Left: base, Right: offset})
	return addr
}
