package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a scene to Graphviz DOT format as a 2D connectivity
// projection. Layers become same-rank groups laid out left to right, which
// mirrors the x-axis ordering of the 3D layout. The resulting DOT string
// can be rendered with [RenderSVG].
func ToDOT(sc Scene) string {
	var buf bytes.Buffer
	buf.WriteString("digraph stratum {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	layers := map[int][]string{}
	maxLayer := 0
	for _, n := range sc.Neurons {
		layers[n.Layer] = append(layers[n.Layer], n.Tag)
		if n.Layer > maxLayer {
			maxLayer = n.Layer
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.Tag, fmt.Sprintf("%d/%d", n.Layer, n.Index))
	}

	buf.WriteString("\n")
	for l := 0; l <= maxLayer; l++ {
		tags := layers[l]
		if len(tags) == 0 {
			continue
		}
		buf.WriteString("  { rank=same;")
		for _, t := range tags {
			fmt.Fprintf(&buf, " %q;", t)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	for _, e := range sc.Edges {
		from := fmt.Sprintf("neuron/%d/%d", e.SourceLayer, e.SourceIndex)
		to := fmt.Sprintf("neuron/%d/%d", e.TargetLayer, e.TargetIndex)
		fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
