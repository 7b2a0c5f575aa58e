// Command midendc drives the mid-end end to end: it parses a fixture
// source file (internal/fixture), compiles every function through
// internal/driver, and prints the textual IR and/or a Graphviz DOT
// rendering. The fixture front-end is the only parser in this repo; the
// command exists purely to exercise the mid-end without hand-building
// internal/ast trees.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"midend/internal/driver"
	"midend/internal/fixture"
	"midend/internal/ice"
)

func main() {
	fixturePath := flag.String("fixture", "", "path to a fixture-language source file (required)")
	emitIR := flag.Bool("ir", true, "print the textual IR for every compiled function")
	dotPath := flag.String("dot", "", "write the Graphviz DOT rendering to this path (stdout if \"-\")")
	disableSSA := flag.Bool("disable_ssa", false, "skip SSA construction entirely")
	disableSCCP := flag.Bool("disable_sccp", false, "skip sparse conditional constant propagation")
	disableLICM := flag.Bool("disable_licm", false, "skip loop-invariant code motion")
	disableDCE := flag.Bool("disable_dce", false, "skip dead code elimination")
	disableIDom := flag.Bool("disable_idom_tree", false, "omit dominator-tree edges from the DOT output")
	disableDF := flag.Bool("disable_df", false, "omit dominance-frontier edges from the DOT output")
	flag.Parse()

	if *fixturePath == "" {
		color.Red("midendc: -fixture is required")
		os.Exit(1)
	}

	source, err := os.ReadFile(*fixturePath)
	if err != nil {
		color.Red("midendc: failed to read %s: %s", *fixturePath, err)
		os.Exit(1)
	}

	prog, err := fixture.Parse(string(source))
	if err != nil {
		color.Red("midendc: %s", err)
		os.Exit(1)
	}

	opts := driver.Options{
		DisableSSA:      *disableSSA,
		DisableSCCP:     *disableSCCP,
		DisableLICM:     *disableLICM,
		DisableDCE:      *disableDCE,
		DisableIDomTree: *disableIDom,
		DisableDF:       *disableDF,
		EmitDOT:         *dotPath != "",
		Source:          string(source),
	}

	exit := 0
	for _, fn := range prog.Functions {
		res, err := driver.Compile(fn, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, ice.Report(err))
			exit = 1
			continue
		}

		if *emitIR {
			fmt.Print(res.IRText)
		}
		if *dotPath != "" {
			if writeErr := writeDOT(*dotPath, fn.Name, len(prog.Functions) > 1, res.DOT); writeErr != nil {
				color.Red("midendc: %s", writeErr)
				exit = 1
			}
		}
	}

	if exit == 0 {
		color.Green("midendc: compiled %d function(s) successfully", len(prog.Functions))
	}
	os.Exit(exit)
}

// writeDOT writes dot to path, or to stdout for path "-". When the
// fixture declares more than one function, the path is suffixed with the
// function name so a single -dot flag doesn't make each function
// overwrite the last one's output.
func writeDOT(path, fnName string, suffix bool, dot string) error {
	if path == "-" {
		fmt.Println(dot)
		return nil
	}
	target := path
	if suffix {
		target = fmt.Sprintf("%s.%s.dot", path, fnName)
	}
	return os.WriteFile(target, []byte(dot), 0o644)
}
