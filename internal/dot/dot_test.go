package dot

import (
	"strings"
	"testing"

	"midend/internal/ast"
	"midend/internal/cfgbuild"
	"midend/internal/ssa"
)

func TestRenderEmitsCFGDomTreeAndFrontierEdges(t *testing.T) {
	fn := &ast.Function{
		Name:   "branch",
		Params: []ast.Param{{Name: "c"}},
		Body: []ast.Stmt{
			&ast.Condition{
				Cond: &ast.Ident{Name: "c"},
				Then: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 1}}},
				Else: []ast.Stmt{&ast.Assignment{Name: "x", Rhs: &ast.IntLit{Value: 2}}},
			},
			&ast.Return{Value: &ast.Ident{Name: "x"}},
		},
	}
	f := cfgbuild.BuildFunction(fn)
	info := ssa.Construct(f)

	var out strings.Builder
	Render(&out, f, info, Options{Source: "if (c) { x = 1 } else { x = 2 }\nreturn x;"})
	rendered := out.String()

	if !strings.Contains(rendered, "digraph branch") {
		t.Errorf("expected a digraph named after the function, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, `color=black`) {
		t.Errorf("expected black CFG edges, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, `color=blue`) {
		t.Errorf("expected blue dominator-tree edges, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, `color=red`) {
		t.Errorf("expected red dominance-frontier edges, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, "cluster_source") {
		t.Errorf("expected a source cluster, got:\n%s", rendered)
	}
}

func TestColorForIsStableAcrossCalls(t *testing.T) {
	a := colorFor("loop body")
	b := colorFor("loop body")
	if a != b {
		t.Errorf("expected the same label to hash to the same color, got %q and %q", a, b)
	}
}
