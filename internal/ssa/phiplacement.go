package ssa

import (
	"sort"

	"midend/internal/dominance"
	"midend/internal/ir"
)

// placePhis inserts pruned ϕ nodes: for each variable, for each block in the
// iterated dominance frontier of its defining blocks, insert a ϕ only if
// the variable is live-in at that block. Variables are visited in sorted
// name order so ϕ insertion order within a block is stable across runs.
func placePhis(fn *ir.Function, lv *liveness, info *dominance.Info) {
	defBlocks := lv.definingBlocks(fn)
	names := make([]string, 0, len(defBlocks))
	for name := range defBlocks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		idf := info.IteratedFrontier(defBlocks[name])
		for y := range idf {
			if lv.liveIn[y][name] {
				y.InsertPhi(name, ir.UnresolvedRef(name))
			}
		}
	}
}
