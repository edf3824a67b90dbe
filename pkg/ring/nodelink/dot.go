package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the slot centre and draw bounds to node labels.
	// When false, only the element label or slot number is shown.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT. Positions are in frame pixels
// with y pointing up, as Graphviz expects.
func ToDOT(s ring.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=circle, fixedsize=true, style=filled, fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.6, color=\"#888888\", fontsize=8];\n")
	buf.WriteString("\n")

	o := s.Origin()
	for i, slot := range s.Slots {
		c := slot.Center.Add(o)
		fill := sink.PaletteColor(i)
		if f, ok := slot.Element.(sink.Filler); ok && f.Fill() != nil {
			fill = f.Fill()
		}
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(i, slot, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(-c.Y)),
			fmt.Sprintf("width=%s", num(slot.Radius*2/72)),
			fmt.Sprintf("fillcolor=%q", sink.Hex(fill)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(i), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := range s.Slots {
		if j := anchorIndex(s, i); j >= 0 {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"gap\"];\n", nodeID(i), nodeID(j))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string { return "slot" + strconv.Itoa(i) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func fmtLabel(i int, slot ring.Slot, detailed bool) string {
	label := "#" + strconv.Itoa(i)
	if l, ok := slot.Element.(sink.Labeler); ok && l.Label() != "" {
		label = l.Label()
	}
	if !detailed {
		return label
	}

	parts := []string{
		label,
		fmt.Sprintf("c: %s,%s", num(slot.Center.X), num(slot.Center.Y)),
		fmt.Sprintf("b: %dx%d", slot.Bounds.Width(), slot.Bounds.Height()),
	}
	if slot.ID != ring.NoID {
		parts = append(parts, fmt.Sprintf("id: %d", slot.ID))
	}
	return strings.Join(parts, "\n")
}

// anchorIndex returns the slot whose centre anchors slot i's gap, or -1.
func anchorIndex(s ring.Snapshot, i int) int {
	if _, ok := s.Notch(i); !ok {
		return -1
	}
	for j, other := range s.Slots {
		if j != i && other.Center == s.Slots[i].GapAnchor {
			return j
		}
	}
	return -1
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in pixels so the diagram embeds like the other outputs.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
