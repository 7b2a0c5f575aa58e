// Package dot renders a function's CFG, dominator tree, and dominance
// frontier as a single Graphviz digraph: boxed nodes labeled with each
// block's IR, CFG edges black, dominator-tree edges blue, dominance-
// frontier edges red.
package dot

import (
	"fmt"
	"hash/fnv"
	"html"
	"io"
	"sort"
	"strings"

	"midend/internal/dominance"
	"midend/internal/ir"
)

// palette is the fixed set of colors a block label hashes into; kept small
// so adjacent clusters stay visually distinct without relying on a
// continuous color space.
var palette = []string{
	"#dbe9f6", "#f6dbdb", "#dbf6e4", "#f6f0db", "#e9dbf6", "#f6dbe9", "#dbf6f2",
}

// Options configures the rendered graph; Source, when non-empty, becomes
// the verbatim HTML-escaped source cluster.
type Options struct {
	Source          string
	DisableIDom     bool // omit dominator-tree edges
	DisableFrontier bool // omit dominance-frontier edges
}

// Render writes fn's CFG (plus dominator tree and dominance frontier
// edges, unless disabled) as a single Graphviz digraph.
func Render(w io.Writer, fn *ir.Function, info *dominance.Info, opts Options) {
	fmt.Fprintf(w, "digraph %s {\n", sanitizeID(fn.Name))
	fmt.Fprintln(w, "  rankdir=TB;")
	fmt.Fprintln(w, "  node [shape=box, fontname=\"monospace\"];")

	if opts.Source != "" {
		renderSourceCluster(w, fn.Name, opts.Source)
	}

	fmt.Fprintf(w, "  subgraph cluster_cfg_%s {\n", sanitizeID(fn.Name))
	fmt.Fprintln(w, "    label=\"cfg\";")

	blocks := fn.ReachableBlocks()
	for _, b := range blocks {
		renderNode(w, fn.Name, b)
	}
	for _, b := range blocks {
		for _, s := range b.Successors {
			fmt.Fprintf(w, "    %s -> %s [color=black];\n", nodeID(fn.Name, b), nodeID(fn.Name, s))
		}
	}
	fmt.Fprintln(w, "  }")

	if info != nil && !opts.DisableIDom {
		for _, b := range blocks {
			if parent := info.IDom(b); parent != nil {
				fmt.Fprintf(w, "  %s -> %s [color=blue, style=dashed];\n", nodeID(fn.Name, parent), nodeID(fn.Name, b))
			}
		}
	}

	if info != nil && !opts.DisableFrontier {
		for _, b := range blocks {
			var members []*ir.BasicBlock
			for m := range info.Frontier(b) {
				members = append(members, m)
			}
			sort.Slice(members, func(i, j int) bool { return members[i].Label < members[j].Label })
			for _, m := range members {
				fmt.Fprintf(w, "  %s -> %s [color=red, style=dotted];\n", nodeID(fn.Name, b), nodeID(fn.Name, m))
			}
		}
	}

	fmt.Fprintln(w, "}")
}

func renderSourceCluster(w io.Writer, fnName, source string) {
	fmt.Fprintln(w, "  subgraph cluster_source {")
	fmt.Fprintln(w, "    label=\"source\";")
	escaped := strings.ReplaceAll(html.EscapeString(source), "\n", "<br align=\"left\"/>")
	fmt.Fprintf(w, "    %s_source [shape=plaintext, label=<<font face=\"monospace\">%s<br align=\"left\"/></font>>];\n",
		sanitizeID(fnName), escaped)
	fmt.Fprintln(w, "  }")
}

func renderNode(w io.Writer, fnName string, b *ir.BasicBlock) {
	label := blockLabel(b)
	color := colorFor(b.Label)
	fmt.Fprintf(w, "    %s [label=<%s>, style=filled, fillcolor=\"%s\"];\n", nodeID(fnName, b), label, color)
}

// blockLabel renders a block's label, role, ϕ nodes, instructions and
// terminator as an HTML-escaped, left-aligned Graphviz label.
func blockLabel(b *ir.BasicBlock) string {
	var body strings.Builder
	body.WriteString(b.Label)
	if b.Role != "" {
		body.WriteString(" [" + b.Role + "]")
	}
	for _, p := range b.Phis() {
		body.WriteString("\n" + phiText(p))
	}
	for _, inst := range b.Instructions {
		body.WriteString("\n" + instText(inst))
	}
	if b.Terminator != nil {
		body.WriteString("\n" + instText(b.Terminator))
	}

	lines := strings.Split(body.String(), "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	return strings.Join(lines, `<br align="left"/>`) + `<br align="left"/>`
}

// phiText and instText use each instruction's own String() rendering. It
// follows the textual IR format, except that operands are shown without
// the printer's base-pointer annotations.
func phiText(p *ir.PhiInst) string { return strings.TrimSpace(p.String()) }
func instText(i ir.Instruction) string {
	return strings.ReplaceAll(strings.TrimSpace(i.String()), "\n", "\\n")
}

func nodeID(fnName string, b *ir.BasicBlock) string {
	return sanitizeID(fnName) + "_" + sanitizeID(b.Label)
}

func sanitizeID(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out.WriteRune(r)
		default:
			out.WriteRune('_')
		}
	}
	return out.String()
}

// colorFor hashes label into the fixed palette, so a given block label
// renders the same fill color across repeated invocations.
func colorFor(label string) string {
	h := fnv.New32a()
	h.Write([]byte(label))
	return palette[h.Sum32()%uint32(len(palette))]
}
