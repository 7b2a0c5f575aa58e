package ssa

import (
	"strings"
	"testing"

	"midend/internal/ast"
	"midend/internal/cfgbuild"
	"midend/internal/ir"
)

func TestConstructInsertsPhiAtIfElseMerge(t *testing.T) {
	fn := &ast.Function{
		Name:   "choose",
		Params: []ast.Param{{Name: "c"}},
		Body: []ast.Stmt{
			&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 0}},
			&ast.Condition{
				Cond: &ast.Ident{Name: "c"},
				Then: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 1}}},
				Else: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 2}}},
			},
			&ast.Return{Value: &ast.Ident{Name: "x"}},
		},
	}

	f := cfgbuild.BuildFunction(fn)
	Construct(f)

	var merge *ir.BasicBlock
	for _, b := range f.Blocks {
		if b.Role == "merge" {
			merge = b
		}
	}
	if merge == nil {
		t.Fatal("expected a merge block")
	}
	phi, ok := merge.Phi("x")
	if !ok {
		t.Fatalf("expected a phi for x at the merge block")
	}
	if phi.Inputs.Len() != 2 {
		t.Errorf("expected phi for x to have 2 incoming edges, got %d", phi.Inputs.Len())
	}

	out := ir.PrintFunction(f)
	if !strings.Contains(out, "ϕ(") {
		t.Errorf("expected rendered phi in IR:\n%s", out)
	}
}

func TestConstructRenamesEveryDefinitionToAFreshVersion(t *testing.T) {
	fn := &ast.Function{
		Name: "versions",
		Body: []ast.Stmt{
			&ast.Assignment{Name: "a", Rhs: &ast.IntLit{Value: 1}},
			&ast.Assignment{Name: "a", Rhs: &ast.IntLit{Value: 2}},
			&ast.Return{Value: &ast.Ident{Name: "a"}},
		},
	}
	f := cfgbuild.BuildFunction(fn)
	Construct(f)

	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			if res := inst.Result(); res != nil && res.Version == ir.UnversionedVar {
				t.Errorf("definition %q left unversioned after Construct", res.Name)
			}
		}
	}

	out := ir.PrintFunction(f)
	if !strings.Contains(out, "a_v0 = 1") || !strings.Contains(out, "a_v1 = 2") || !strings.Contains(out, "return(a_v1)") {
		t.Errorf("expected distinct SSA versions for a's two definitions:\n%s", out)
	}
}

func TestConstructPropagatesBasePointerThroughAddressArithmetic(t *testing.T) {
	fn := &ast.Function{
		Name: "arr",
		Body: []ast.Stmt{
			&ast.ArrayDecl{Name: "xs", Dims: []int{4}},
			&ast.IndexAssignment{
				Name: "xs", Dims: []int{4},
				Indices: []ast.Expr{&ast.IntLit{Value: 1}},
				Rhs:     &ast.IntLit{Value: 9},
			},
			&ast.Return{},
		},
	}
	f := cfgbuild.BuildFunction(fn)
	Construct(f)

	var store *ir.StoreInst
	for _, inst := range f.Entry.Instructions {
		if s, ok := inst.(*ir.StoreInst); ok {
			store = s
		}
	}
	if store == nil {
		t.Fatal("expected a Store instruction")
	}
	if store.Addr.Base == nil {
		t.Fatalf("expected the store address to carry a base pointer after propagation")
	}
	if store.Addr.Base.Name != "xs" {
		t.Errorf("expected the store address's base pointer to trace back to xs, got %q", store.Addr.Base.Name)
	}
}

func TestConstructPhiGetsBasePointerAcrossLoopBackEdge(t *testing.T) {
	fn := &ast.Function{
		Name:   "loopArr",
		Params: []ast.Param{{Name: "done"}},
		Body: []ast.Stmt{
			&ast.ArrayDecl{Name: "xs", Dims: []int{4}},
			&ast.UnconditionalLoop{
				Body: []ast.Stmt{
					&ast.Condition{
						Cond: &ast.Ident{Name: "done"},
						Then: []ast.Stmt{&ast.Break{}},
					},
					&ast.IndexAssignment{
						Name: "xs", Dims: []int{4},
						Indices: []ast.Expr{&ast.IntLit{Value: 0}},
						Rhs:     &ast.IntLit{Value: 1},
					},
					// Redeclaring xs inside the loop gives it a second defining
					// block, so the loop header needs a ϕ for it.
					&ast.ArrayDecl{Name: "xs", Dims: []int{4}},
				},
			},
			&ast.Return{},
		},
	}
	f := cfgbuild.BuildFunction(fn)
	Construct(f)

	var bodyBlock *ir.BasicBlock
	for _, b := range f.Blocks {
		if b.Role == "loop body" {
			bodyBlock = b
		}
	}
	if bodyBlock == nil {
		t.Fatal("expected a loop body block")
	}
	phi, ok := bodyBlock.Phi("xs")
	if !ok {
		t.Fatal("expected a phi for xs at the loop header")
	}
	if phi.Res.Base == nil {
		t.Errorf("expected xs's phi at the loop header to carry a base pointer")
	}
}
