package main

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"fxchain/internal/catalog"
	"fxchain/internal/preflight"
	"fxchain/internal/session"
)

// newTableWriter sets up the house table style: rounded borders,
// left-aligned headers, and a right-aligned leading column for tables
// keyed by a number.
func newTableWriter(header table.Row, numericFirst bool) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	if numericFirst {
		tw.SetColumnConfigs([]table.ColumnConfig{{
			Number:      1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		}})
	}
	return tw
}

// pluginTable renders catalog entries for list and search.
func pluginTable(plugins []*catalog.Plugin) string {
	tw := newTableWriter(table.Row{"ID", "Name", "Scanned", "Path"}, true)
	for _, p := range plugins {
		scanned := "never"
		if p.Scanned() {
			scanned = p.ScannedAt().Format(time.DateOnly)
		}
		tw.AppendRow(table.Row{p.ID, p.Name, scanned, p.Path})
	}
	return tw.Render()
}

// paramTable renders a plugin's usable parameters for show.
func paramTable(params []catalog.Parameter) string {
	tw := newTableWriter(table.Row{"#", "Parameter", "Values", "Default", "Text"}, true)
	for _, p := range params {
		tw.AppendRow(table.Row{p.Index, p.Name, p.Values, p.Default, yesNo(p.SupportsText)})
	}
	return tw.Render()
}

// pipelineTable renders the session's stages with 1-based indices, the
// same addressing mod and rm take.
func pipelineTable(stages []session.Stage) string {
	tw := newTableWriter(table.Row{"#", "Plugin", "Bindings"}, true)
	for i, stage := range stages {
		tw.AppendRow(table.Row{i + 1, stage.PluginName, strings.Join(stage.Bindings, " ")})
	}
	return tw.Render()
}

// checkTable renders doctor's preflight results.
func checkTable(results []preflight.Result) string {
	tw := newTableWriter(table.Row{"Check", "Status", "Detail"}, false)
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		tw.AppendRow(table.Row{r.Name, status, r.Detail})
	}
	return tw.Render()
}
