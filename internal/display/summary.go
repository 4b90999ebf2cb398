package display

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// SummaryRow is one label/value line of the end-of-run table.
type SummaryRow struct {
	Label string
	Value string
}

// RenderSummary renders rows as a two-column rounded table under title.
func RenderSummary(title string, rows []SummaryRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)

	for _, r := range rows {
		tw.AppendRow(table.Row{r.Label, r.Value})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	return tw.Render()
}
