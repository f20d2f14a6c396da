package render

import (
	"bytes"
	"fmt"
	"strconv"
)

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders the layout in Graphviz DOT format with fixed positions for neato"
}

// Render creates a DOT representation of the layout. Positions are divided
// by options.Scale and marked fixed with "!"; pinned nodes also carry pin=true.
func (r *DOTRenderer) Render(l *Layout, options *OutputOptions) ([]byte, error) {
	scale := 100.0
	if options != nil && options.Scale > 0 {
		scale = options.Scale
	}
	name := l.Name
	if name == "" {
		name = "G"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", name)
	buf.WriteString("  graph [layout=neato, overlap=true];\n")
	buf.WriteString("  node [shape=circle, fontname=\"Arial\"];\n")

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%s,%s!\"", n.ID, labelOf(n),
			coord(n.Position.X, scale), coord(n.Position.Y, scale))
		if n.Pinned {
			buf.WriteString(", pin=true")
		}
		buf.WriteString("];\n")
	}

	for _, e := range l.ResolvedEdges() {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func coord(v, scale float64) string {
	s := strconv.FormatFloat(v/scale, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
