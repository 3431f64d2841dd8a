// Package report renders solutions as an HTML page of charts.
package report

import (
	"fmt"
	"io"
	"math/cmplx"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/leoll2/Ohmulator/pkg/analysis"
	"github.com/leoll2/Ohmulator/pkg/circuit"
)

type Report struct {
	title  string
	charts []components.Charter
}

func New(title string) *Report {
	return &Report{title: title}
}

// Len returns the number of charts added so far.
func (r *Report) Len() int { return len(r.charts) }

func (r *Report) globals(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: r.title,
			Theme:     types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
	}
}

// AddTopology draws the circuit as a graph of elements linked to the nodes
// they touch.
func (r *Report) AddTopology(ckt *circuit.Circuit) {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(r.globals("Circuit", ckt.Name())...)

	nodes := make([]opts.GraphNode, 0, ckt.NumNodes()+ckt.NumBranches())
	for _, n := range ckt.Nodes() {
		node := opts.GraphNode{
			Name:     nodeName(n),
			Category: 1,
		}
		if n.ID == 0 {
			node.ItemStyle = &opts.ItemStyle{Color: "#000000de"}
		}
		nodes = append(nodes, node)
	}

	links := make([]opts.GraphLink, 0, 2*ckt.NumBranches())
	for _, b := range ckt.Branches() {
		name := analysis.BranchLabel(b)
		nodes = append(nodes, opts.GraphNode{Name: name, Category: 0})
		for _, p := range []int{b.Point1, b.Point2} {
			links = append(links, opts.GraphLink{
				Source: name,
				Target: nodeName(ckt.Node(p)),
			})
		}
	}

	graph.AddSeries("circuit", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Categories: []*opts.GraphCategory{
				{Name: "element", Label: &opts.Label{Show: opts.Bool(false)}},
				{Name: "node", Label: &opts.Label{Show: opts.Bool(true)}},
			},
			Roam:  opts.Bool(true),
			Force: &opts.GraphForce{Repulsion: 80},
		}))
	r.charts = append(r.charts, graph)
}

func nodeName(n *circuit.Node) string {
	return fmt.Sprintf("Node(%s)", analysis.NodeLabel(n))
}

// AddSolution charts the regimes selected in o: node voltages and branch
// currents as bars, magnitudes for AC.
func (r *Report) AddSolution(ckt *circuit.Circuit, res *analysis.Result, o analysis.Options) {
	var nodeLabels, branchLabels []string
	for _, n := range ckt.Nodes() {
		nodeLabels = append(nodeLabels, analysis.NodeLabel(n))
	}
	for _, b := range ckt.Branches() {
		branchLabels = append(branchLabels, analysis.BranchLabel(b))
	}

	if o.DC {
		r.addBar("DC node voltages", "V", nodeLabels, res.VoltagesDC)
		r.addBar("DC branch currents", "A", branchLabels, currentValues(res.CurrentsDC, func(v float64) float64 { return v }))
	}
	if o.AC {
		mags := make([]float64, len(res.VoltagesAC))
		for i, v := range res.VoltagesAC {
			mags[i] = cmplx.Abs(v)
		}
		r.addBar("AC node voltage magnitudes", "V", nodeLabels, mags)
		r.addBar("AC branch current magnitudes", "A", branchLabels, currentValues(res.CurrentsAC, cmplx.Abs))
	}
}

func currentValues[T float64 | complex128](cs []analysis.Current[T], f func(T) float64) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = f(c.Value)
	}
	return out
}

func (r *Report) addBar(title, unit string, labels []string, values []float64) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globals(title, unit)...)
	bar.SetXAxis(labels)

	items := make([]opts.BarData, len(values))
	for i, v := range values {
		items[i] = opts.BarData{Value: v}
	}
	bar.AddSeries(unit, items)
	r.charts = append(r.charts, bar)
}

// AddSweep charts every V(...) and I(...) series of a DC sweep against the
// SWEEP1 values.
func (r *Report) AddSweep(source string, results map[string][]float64) error {
	sweep, ok := results["SWEEP1"]
	if !ok {
		return fmt.Errorf("no sweep values in results")
	}

	axis := make([]string, len(sweep))
	for i, v := range sweep {
		axis[i] = fmt.Sprintf("%g", v)
	}

	var names []string
	for name := range results {
		if strings.HasPrefix(name, "V(") || strings.HasPrefix(name, "I(") {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	line := charts.NewLine()
	line.SetGlobalOptions(append(r.globals("DC sweep", source),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)...)
	line.SetXAxis(axis)
	for _, name := range names {
		values := results[name]
		items := make([]opts.LineData, len(values))
		for i, v := range values {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, items)
	}
	r.charts = append(r.charts, line)
	return nil
}

func (r *Report) Render(w io.Writer) error {
	page := components.NewPage()
	page.AddCharts(r.charts...)
	return page.Render(w)
}
