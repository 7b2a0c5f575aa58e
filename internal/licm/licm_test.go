package licm

import (
	"testing"

	"midend/internal/ast"
	"midend/internal/cfgbuild"
	"midend/internal/ir"
	"midend/internal/ssa"
)

func TestRunHoistsLoopInvariantComputationToPreheader(t *testing.T) {
	fn := &ast.Function{
		Name: "sumConst",
		Body: []ast.Stmt{
			&ast.Assignment{Name: "a", Rhs: &ast.IntLit{Value: 3}},
			&ast.Assignment{Name: "b", Rhs: &ast.IntLit{Value: 4}},
			&ast.ArrayDecl{Name: "xs", Dims: []int{10}},
			&ast.ForLoop{
				Init: &ast.Assignment{Name: "i", Rhs: &ast.IntLit{Value: 0}},
				Cond: &ast.BinaryExpr{Op: "<", Left: &ast.Ident{Name: "i"}, Right: &ast.IntLit{Value: 10}},
				Update: &ast.Assignment{Name: "i", Rhs: &ast.BinaryExpr{
					Op: "+", Left: &ast.Ident{Name: "i"}, Right: &ast.IntLit{Value: 1},
				}},
				Body: []ast.Stmt{
					&ast.IndexAssignment{
						Name: "xs", Dims: []int{10},
						Indices: []ast.Expr{&ast.Ident{Name: "i"}},
						Rhs: &ast.BinaryExpr{
							Op: "+", Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"},
						},
					},
				},
			},
			&ast.Return{},
		},
	}

	f := cfgbuild.BuildFunction(fn)
	ssa.Construct(f)
	Run(f)

	var preheader, body *ir.BasicBlock
	for _, b := range f.Blocks {
		switch b.Role {
		case "loop preheader":
			preheader = b
		case "loop body":
			body = b
		}
	}
	if preheader == nil || body == nil {
		t.Fatal("expected both a loop preheader and a loop body block")
	}

	if findInvariantAdd(preheader) == nil {
		t.Errorf("expected the a+b computation to be hoisted into the preheader")
	}
	if findInvariantAdd(body) != nil {
		t.Errorf("expected the a+b computation to have been removed from the loop body")
	}
}

// findInvariantAdd looks for the specific `a + b` computation (by operand
// name) rather than any addition, since the loop body also computes the
// (non-invariant) array address `xs + i`.
func findInvariantAdd(b *ir.BasicBlock) *ir.AssignInst {
	isAB := func(x, y *ir.Value) bool {
		return (x.Name == "a" && y.Name == "b") || (x.Name == "b" && y.Name == "a")
	}
	for _, inst := range b.Instructions {
		a, ok := inst.(*ir.AssignInst)
		if !ok {
			continue
		}
		bin, ok := a.RHS.(*ir.BinaryOp)
		if ok && bin.Op == ir.OpAdd && !bin.Left.IsConst && !bin.Right.IsConst && isAB(bin.Left, bin.Right) {
			return a
		}
	}
	return nil
}
