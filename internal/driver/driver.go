// Package driver wires the mid-end's stages together behind a single
// Compile entry point: CFG construction, SSA, the optimization passes, the
// IR printer, and the DOT renderer. The driver boundary is the only place
// that turns an internal panic into a reported error instead of letting it
// crash the process.
package driver

import (
	"strings"

	"midend/internal/ast"
	"midend/internal/cfgbuild"
	"midend/internal/dce"
	"midend/internal/dominance"
	"midend/internal/dot"
	"midend/internal/ice"
	"midend/internal/ir"
	"midend/internal/licm"
	"midend/internal/sccp"
	"midend/internal/ssa"
)

// Pass names recognized in a custom PassOrder.
const (
	PassSCCP = "sccp"
	PassLICM = "licm"
	PassDCE  = "dce"
)

// DefaultPassOrder runs SCCP once, then the LICM-then-DCE pair twice, so
// a second round of hoisting runs on the CFG the first DCE pass cleaned up
// and DCE runs again after it.
var DefaultPassOrder = []string{PassSCCP, PassLICM, PassDCE, PassLICM, PassDCE}

// Options toggles each pipeline stage individually and overrides the
// optimization pass order.
type Options struct {
	DisableSSA      bool
	DisableSCCP     bool
	DisableLICM     bool
	DisableDCE      bool
	DisableIDomTree bool
	DisableDF       bool
	PassOrder       []string // nil selects DefaultPassOrder
	EmitDOT         bool
	Source          string // verbatim source text for the DOT source cluster, if EmitDOT
}

// Result carries everything compile produced for one function.
type Result struct {
	CFG    *ir.Function
	IRText string
	DOT    string
}

// Compile lowers fn's AST, builds SSA (unless disabled), and runs the
// configured optimization passes in order, returning the transformed CFG
// plus its textual IR and (if requested) DOT rendering. Any internal
// invariant violation raised by a stage is recovered here and returned as
// an error, never left to crash the process.
func Compile(fn *ast.Function, opts Options) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ice.Recover(r)
		}
	}()

	cfg := cfgbuild.BuildFunction(fn)

	if !opts.DisableSSA {
		ssa.Construct(cfg)
		runPasses(cfg, opts)
	}

	res.CFG = cfg
	res.IRText = ir.PrintFunction(cfg)

	if opts.EmitDOT {
		// Passes above may have detached blocks or rewritten edges (SCCP)
		// since SSA construction computed its own dominance info; the DOT
		// dominator-tree/frontier overlay must reflect the final CFG, so
		// dominance is recomputed fresh here rather than reusing a stale
		// Info from before the optimization passes ran.
		var info *dominance.Info
		if !opts.DisableIDomTree || !opts.DisableDF {
			info = dominance.Analyze(cfg.Entry)
		}
		var b strings.Builder
		dot.Render(&b, cfg, info, dot.Options{
			Source:          opts.Source,
			DisableIDom:     opts.DisableIDomTree,
			DisableFrontier: opts.DisableDF,
		})
		res.DOT = b.String()
	}

	return res, nil
}

// CompileProgram runs Compile over every function in prog, stopping at the
// first error.
func CompileProgram(prog *ast.Program, opts Options) ([]Result, error) {
	var out []Result
	for _, fn := range prog.Functions {
		res, err := Compile(fn, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func runPasses(cfg *ir.Function, opts Options) {
	order := opts.PassOrder
	if order == nil {
		order = DefaultPassOrder
	}
	for _, pass := range order {
		switch pass {
		case PassSCCP:
			if !opts.DisableSCCP {
				sccp.Run(cfg)
			}
		case PassLICM:
			if !opts.DisableLICM {
				licm.Run(cfg)
			}
		case PassDCE:
			if !opts.DisableDCE {
				dce.Run(cfg)
			}
		default:
			ice.RaiseGlobal("E-DRV-001", "driver", "unknown pass name %q in pass order", pass)
		}
	}
}
