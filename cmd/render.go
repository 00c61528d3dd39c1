package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ethpandaops/projector/pkg/comparison"
	"github.com/ethpandaops/projector/pkg/dependencies"
	"github.com/ethpandaops/projector/pkg/simulation"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
	})

	return t
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSimulation(w io.Writer, result *simulation.Result, format string) error {
	if format == formatJSON {
		return renderJSON(w, result)
	}

	t := newTable(w, result.Title.String())
	t.AppendHeader(table.Row{"Year", "Mean", "Std Dev", "Lower", "Upper"})

	upper, lower := result.Upper(), result.Lower()
	for i, year := range result.Years {
		t.AppendRow(table.Row{
			year,
			formatNumber(result.Mean[i]),
			formatNumber(result.StdDev[i]),
			formatNumber(lower[i]),
			formatNumber(upper[i]),
		})
	}

	t.AppendFooter(table.Row{"Runs", fmt.Sprintf("%d/%d", result.Completed, result.Runs)})
	t.Render()

	return nil
}

func renderComparison(w io.Writer, c *comparison.Comparison, format string) error {
	if format == formatJSON {
		return renderJSON(w, c)
	}

	t := newTable(w, c.Title())
	t.AppendHeader(table.Row{"Year", c.First.Name, c.First.Name + " σ", c.Second.Name, c.Second.Name + " σ"})

	for i, year := range c.Years {
		t.AppendRow(table.Row{
			year,
			formatNumber(c.First.Mean[i]),
			formatNumber(c.First.StdDev[i]),
			formatNumber(c.Second.Mean[i]),
			formatNumber(c.Second.StdDev[i]),
		})
	}

	t.Render()

	return nil
}

func renderGraph(w io.Writer, graph *dependencies.Graph, format string) error {
	info := graph.GetInfo()

	if format == formatJSON {
		return renderJSON(w, info)
	}

	t := newTable(w, fmt.Sprintf("%d variables", info.TotalVariables))
	t.AppendHeader(table.Row{"Level", "ID", "Name", "Kind", "Driver"})

	for level := 0; level <= info.MaxLevel; level++ {
		for _, id := range info.Levels[level] {
			node, err := graph.GetNode(id)
			if err != nil {
				return err
			}

			t.AppendRow(table.Row{level, id, node.Variable.Name, node.Variable.Kind, node.DriverName})
		}
	}

	t.Render()

	return nil
}
