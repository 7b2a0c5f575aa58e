package fixture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"midend/internal/ast"
)

func TestParseScalarFunction(t *testing.T) {
	prog, err := Parse(`
		fn add(a: int, b: int): int {
			let c = a + b;
			return c;
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.ReturnType)
	require.Len(t, fn.Body, 2)

	assign, ok := fn.Body[0].(*ast.Assignment)
	require.True(t, ok)
	require.Equal(t, "c", assign.Name)
	bin, ok := assign.Rhs.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestParseArrayDeclAndIndexing(t *testing.T) {
	prog, err := Parse(`
		fn liveArray(): int {
			let arr[10] = {};
			if (1) {
				arr[0] = 1;
			}
			return arr[1];
		}
	`)
	require.NoError(t, err)
	fn := prog.Functions[0]

	decl, ok := fn.Body[0].(*ast.ArrayDecl)
	require.True(t, ok)
	require.Equal(t, []int{10}, decl.Dims)

	cond, ok := fn.Body[1].(*ast.Condition)
	require.True(t, ok)
	require.Nil(t, cond.Else)
	idxAssign, ok := cond.Then[0].(*ast.IndexAssignment)
	require.True(t, ok)
	require.Equal(t, "arr", idxAssign.Name)

	ret, ok := fn.Body[2].(*ast.Return)
	require.True(t, ok)
	idxExpr, ok := ret.Value.(*ast.IndexExpr)
	require.True(t, ok)
	require.Equal(t, "arr", idxExpr.Base.Name)
}

func TestParseForLoopAndBreakContinue(t *testing.T) {
	prog, err := Parse(`
		fn loopy(n: int): int {
			let acc = 0;
			for (let i = 0; i < n; i = i + 1) {
				if (i == 5) {
					continue;
				}
				if (i == 8) {
					break;
				}
				acc = acc + i;
			}
			return acc;
		}
	`)
	require.NoError(t, err)
	fn := prog.Functions[0]

	loop, ok := fn.Body[1].(*ast.ForLoop)
	require.True(t, ok)
	require.NotNil(t, loop.Init)
	require.NotNil(t, loop.Cond)
	require.NotNil(t, loop.Update)
	require.Len(t, loop.Body, 3)
}

func TestParseUnconditionalLoop(t *testing.T) {
	prog, err := Parse(`
		fn spin() {
			for (;;) {
				break;
			}
			return;
		}
	`)
	require.NoError(t, err)
	fn := prog.Functions[0]
	require.Nil(t, fn.ReturnType)

	loop, ok := fn.Body[0].(*ast.UnconditionalLoop)
	require.True(t, ok)
	_, isBreak := loop.Body[0].(*ast.Break)
	require.True(t, isBreak)
}

func TestParseRejectsIndexingNonArray(t *testing.T) {
	_, err := Parse(`
		fn bad() {
			let x = 1;
			x[0] = 2;
			return;
		}
	`)
	require.Error(t, err)
}
