package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// PreviewHTML renders a self-contained HTML page with a top-down scatter
// plot of the neuron grid. Layers spread along the horizontal axis and
// neurons along the vertical axis, matching the x and z axes of the 3D
// layout. The third value dimension carries the layer index for coloring.
func PreviewHTML(sc Scene) ([]byte, error) {
	if len(sc.Neurons) == 0 {
		return nil, fmt.Errorf("scene has no neurons")
	}

	data := make([]opts.ScatterData, 0, len(sc.Neurons))
	maxAbs := 0.0
	maxLayer := 0
	for _, n := range sc.Neurons {
		x := n.Position[0]
		z := n.Position[2]
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(z) > maxAbs {
			maxAbs = math.Abs(z)
		}
		if n.Layer > maxLayer {
			maxLayer = n.Layer
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, z, n.Layer}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	title := "Network Layout"
	if sc.Name != "" {
		title = sc.Name
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("neurons=%d edges=%d build=%s", len(sc.Neurons), len(sc.Edges), sc.BuildID)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "layer axis", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "spread axis", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxLayer),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("neurons", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
