package scenarios

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"midend/internal/ast"
	"midend/internal/driver"
	"midend/internal/fixture"
)

// TestGoldenScenarios runs every fixture in testdata/scenarios.yaml through
// the fixture front-end and the driver, and checks the rendered IR text
// against each scenario's expectations. On a mismatch it prints a unified
// diff between what was expected and the actual IR text, mirroring the
// readable-diff style go-difflib gives testify's plain %v dump.
func TestGoldenScenarios(t *testing.T) {
	scens, err := Load("testdata/scenarios.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, scens)

	for _, sc := range scens {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			prog, err := fixture.Parse(sc.Source)
			require.NoError(t, err)

			fn := findFunction(prog, sc.Function)
			require.NotNilf(t, fn, "scenario %s: function %q not found in parsed fixture", sc.Name, sc.Function)

			res, err := driver.Compile(fn, driver.Options{PassOrder: sc.PassOrder})
			require.NoError(t, err)

			for _, want := range sc.MustContain {
				if !strings.Contains(res.IRText, want) {
					t.Errorf("scenario %s: expected IR to contain %q\n%s", sc.Name, want, diffAgainst(want, res.IRText))
				}
			}
			for _, unwanted := range sc.MustNotContain {
				if strings.Contains(res.IRText, unwanted) {
					t.Errorf("scenario %s: expected IR to NOT contain %q, got:\n%s", sc.Name, unwanted, res.IRText)
				}
			}
			for _, pair := range sc.MustPrecede {
				require.Lenf(t, pair, 2, "scenario %s: mustPrecede entries need exactly 2 elements", sc.Name)
				before, after := pair[0], pair[1]
				bi, ai := strings.Index(res.IRText, before), strings.Index(res.IRText, after)
				require.GreaterOrEqualf(t, bi, 0, "scenario %s: %q not found", sc.Name, before)
				require.GreaterOrEqualf(t, ai, 0, "scenario %s: %q not found", sc.Name, after)
				if bi >= ai {
					t.Errorf("scenario %s: expected %q to precede %q in:\n%s", sc.Name, before, after, res.IRText)
				}
			}
		})
	}
}

func findFunction(prog *ast.Program, name string) *ast.Function {
	for _, fn := range prog.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// diffAgainst renders a one-line unified diff fragment between a wanted
// substring and the actual IR text, for a more readable failure message
// than a raw string dump.
func diffAgainst(want, actual string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(actual),
		FromFile: "expected substring",
		ToFile:   "actual IR",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("(diff error: %s)", err)
	}
	return text
}
