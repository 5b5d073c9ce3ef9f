package format

import (
	"bytes"
	"fmt"
	"strings"

	"krakenreport/internal/types"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	echartstypes "github.com/go-echarts/go-echarts/v2/types"
)

const (
	colorPassed  = "#34d399"
	colorFailed  = "#f87171"
	colorUnknown = "#9ca3af"
	colorRoot    = "#3b82f6"

	graphWidthPx  = 1200
	graphHeightPx = 720
	maxLabelRunes = 48
)

// GraphFormatter renders one force-layout chart per feature graph into a single page.
type GraphFormatter struct {
	title string
}

func NewGraphFormatter(title string) *GraphFormatter {
	if strings.TrimSpace(title) == "" {
		title = defaultTitle
	}
	return &GraphFormatter{title: title}
}

// Format renders graph.html. A report without features yields an error.
func (f *GraphFormatter) Format(r *types.ConsolidatedReport) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("format: nil report")
	}
	page := components.NewPage()
	page.PageTitle = f.title
	page.SetLayout(components.PageFlexLayout)
	for _, g := range r.Graph {
		page.AddCharts(buildFeatureChart(g))
	}
	if len(page.Charts) == 0 {
		return nil, fmt.Errorf("no feature graphs to render")
	}
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildFeatureChart(g types.FeatureGraph) *charts.Graph {
	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  echartstypes.ThemeWesteros,
			Width:  fmt.Sprintf("%dpx", graphWidthPx),
			Height: fmt.Sprintf("%dpx", graphHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    g.Name,
			Subtitle: fmt.Sprintf("%d nodes | %d links", len(g.Nodes), len(g.Links)),
			Left:     "left",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	nodes, links := graphSeries(g)
	chart.AddSeries(g.Name, nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:             "force",
			Roam:               opts.Bool(true),
			Draggable:          opts.Bool(true),
			FocusNodeAdjacency: opts.Bool(true),
			EdgeSymbol:         []string{"none", "arrow"},
			Force:              &opts.GraphForce{Repulsion: 600, EdgeLength: 90},
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)
	return chart
}

// graphSeries 把节点/连线转换成 echarts 数据；echarts 以 name 关联连线，所以 name 带上节点 id。
func graphSeries(g types.FeatureGraph) ([]opts.GraphNode, []opts.GraphLink) {
	names := make(map[string]string, len(g.Nodes))
	nodes := make([]opts.GraphNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		name := nodeName(n)
		names[n.ID] = name
		nodes = append(nodes, opts.GraphNode{
			Name:      name,
			ItemStyle: &opts.ItemStyle{Color: nodeColor(n)},
		})
	}
	links := make([]opts.GraphLink, 0, len(g.Links))
	for _, l := range g.Links {
		src, okSrc := names[l.Source]
		dst, okDst := names[l.Target]
		if !okSrc || !okDst {
			continue
		}
		links = append(links, opts.GraphLink{
			Source:    src,
			Target:    dst,
			Value:     float32(l.Weight),
			LineStyle: &opts.LineStyle{Color: statusColor(l.Status)},
		})
	}
	return nodes, links
}

func nodeName(n types.GraphNode) string {
	if n.ID == types.RootNodeID {
		return "#0 start"
	}
	label := []rune(strings.TrimSpace(n.Label))
	if len(label) > maxLabelRunes {
		label = append(label[:maxLabelRunes], '…')
	}
	return fmt.Sprintf("#%s %s", n.ID, string(label))
}

func nodeColor(n types.GraphNode) string {
	if n.ID == types.RootNodeID {
		return colorRoot
	}
	return statusColor(n.Status)
}

func statusColor(s types.Status) string {
	switch s {
	case types.StatusPassed:
		return colorPassed
	case types.StatusFailed:
		return colorFailed
	default:
		return colorUnknown
	}
}
