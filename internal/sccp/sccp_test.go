package sccp

import (
	"testing"

	"midend/internal/ast"
	"midend/internal/cfgbuild"
	"midend/internal/ir"
	"midend/internal/ssa"
)

func build(t *testing.T, fn *ast.Function) *ir.Function {
	t.Helper()
	f := cfgbuild.BuildFunction(fn)
	ssa.Construct(f)
	return f
}

func TestRunFoldsConstantBinary(t *testing.T) {
	f := build(t, &ast.Function{
		Name: "fold",
		Body: []ast.Stmt{
			&ast.Assignment{Name: "a", Rhs: &ast.BinaryExpr{
				Op: "+", Left: &ast.IntLit{Value: 2}, Right: &ast.IntLit{Value: 3},
			}},
			&ast.Return{Value: &ast.Ident{Name: "a"}},
		},
	})
	Run(f)

	var assign *ir.AssignInst
	for _, inst := range f.Entry.Instructions {
		if a, ok := inst.(*ir.AssignInst); ok {
			assign = a
		}
	}
	if assign == nil {
		t.Fatal("expected an Assign instruction")
	}
	cp, ok := assign.RHS.(*ir.CopyOp)
	if !ok {
		t.Fatalf("expected RHS folded to a Copy, got %T", assign.RHS)
	}
	if !cp.Value.IsConst || cp.Value.ConstVal != 5 {
		t.Errorf("expected folded constant 5, got %+v", cp.Value)
	}
}

func TestRunFoldsConstantCmpToUncondJumpAndDetachesOtherArm(t *testing.T) {
	f := build(t, &ast.Function{
		Name: "branch",
		Body: []ast.Stmt{
			&ast.Condition{
				Cond: &ast.IntLit{Value: 1},
				Then: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 1}}},
				Else: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 2}}},
			},
			&ast.Return{Value: &ast.Ident{Name: "x"}},
		},
	})
	Run(f)

	if _, ok := f.Entry.Terminator.(*ir.CmpInst); ok {
		t.Fatalf("expected entry's Cmp to be folded into an UncondJump")
	}
	jump, ok := f.Entry.Terminator.(*ir.UncondJumpInst)
	if !ok {
		t.Fatalf("expected an UncondJump terminator, got %T", f.Entry.Terminator)
	}
	if jump.Target.Role != "then" {
		t.Errorf("expected the fold to choose the then-arm, got target role %q", jump.Target.Role)
	}

	for _, succ := range f.Entry.Successors {
		if succ.Role == "else" {
			t.Errorf("expected the else-arm to be detached from entry's successors")
		}
	}
}

func TestRunKeepsDivisionByZeroAliveAsNAC(t *testing.T) {
	f := build(t, &ast.Function{
		Name: "divzero",
		Body: []ast.Stmt{
			&ast.Assignment{Name: "r", Rhs: &ast.BinaryExpr{
				Op: "/", Left: &ast.IntLit{Value: 5}, Right: &ast.IntLit{Value: 0},
			}},
			&ast.Return{Value: &ast.Ident{Name: "r"}},
		},
	})
	Run(f)

	var assign *ir.AssignInst
	for _, inst := range f.Entry.Instructions {
		if a, ok := inst.(*ir.AssignInst); ok {
			assign = a
		}
	}
	if assign == nil {
		t.Fatal("expected an Assign instruction")
	}
	if _, ok := assign.RHS.(*ir.BinaryOp); !ok {
		t.Errorf("expected division by a constant zero to remain an unfolded BinaryOp, got %T", assign.RHS)
	}
}

func TestRunPropagatesConstantThroughPhi(t *testing.T) {
	f := build(t, &ast.Function{
		Name:   "constPhi",
		Params: []ast.Param{{Name: "c"}},
		Body: []ast.Stmt{
			&ast.Condition{
				Cond: &ast.Ident{Name: "c"},
				Then: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 7}}},
				Else: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 7}}},
			},
			&ast.Return{Value: &ast.Ident{Name: "x"}},
		},
	})
	Run(f)

	var ret *ir.ReturnInst
	for _, b := range f.Blocks {
		if r, ok := b.Terminator.(*ir.ReturnInst); ok && r.Value != nil {
			ret = r
		}
	}
	if ret == nil {
		t.Fatal("expected a value-carrying return")
	}
	if !ret.Value.IsConst || ret.Value.ConstVal != 7 {
		t.Errorf("expected both-7 phi to fold to constant 7 at the return, got %+v", ret.Value)
	}
}
