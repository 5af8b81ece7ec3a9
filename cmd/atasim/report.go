package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// renderScenario turns a ScenarioResult into a go-pretty table: one row per
// account the scenario touched, a before/after column pair, and a trailing
// summary/outcome row - the same "build a string via SetOutputMirror, return
// it" shape as the teacher's own table renderer.
func renderScenario(res ScenarioResult) string {
	builder := &strings.Builder{}
	t := table.NewWriter()
	t.SetOutputMirror(builder)
	t.SetTitle(res.Name)
	t.Style().Size.WidthMax = 120
	t.AppendHeader(table.Row{"Account", "Key", "Before", "After"})
	for _, row := range res.Rows {
		t.AppendRow(table.Row{row.Label, Addr(row.Key).String(), row.Before, row.After})
	}
	t.AppendSeparator()
	outcome := "OK"
	if res.Err != nil {
		outcome = fmt.Sprintf("ERROR: %v", res.Err)
	}
	t.AppendRow(table.Row{"outcome", "", "", outcome})
	if res.Summary != "" {
		t.AppendRow(table.Row{"summary", "", "", res.Summary})
	}
	t.Render()
	return builder.String()
}

func scenarioMenu() string {
	b := &strings.Builder{}
	t := table.NewWriter()
	t.SetOutputMirror(b)
	t.SetTitle("ATA scenarios")
	t.AppendHeader(table.Row{"#", "Title", "Description"})
	for _, s := range Scenarios {
		t.AppendRow(table.Row{s.Number, s.Title, s.Description})
	}
	t.Render()
	return b.String()
}
