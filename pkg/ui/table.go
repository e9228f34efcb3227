package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"liscraper/pkg/models"
)

// RenderStatistics prints run statistics as a table
func RenderStatistics(w io.Writer, title string, stats models.RunStatistics) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Total profiles", stats.TotalProfiles},
		{"Average connections", fmt.Sprintf("%.2f", stats.AverageConnections)},
		{"Average endorsements", fmt.Sprintf("%.2f", stats.AverageEndorsements)},
		{"Profiles with skills", stats.ProfilesWithSkills},
		{"Skipped identifiers", stats.Skipped},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// RenderProfiles prints up to limit records as a table; limit <= 0 prints all
func RenderProfiles(w io.Writer, records []models.ProfileRecord, limit int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Username", "Name", "Title", "Company", "Connections", "Skills"})

	for i, r := range records {
		if limit > 0 && i >= limit {
			break
		}
		t.AppendRow(table.Row{
			i + 1,
			r.Username,
			r.Name,
			r.Title,
			r.Company,
			r.Connections,
			strings.Join(r.Skills, ", "),
		})
	}
	if limit > 0 && len(records) > limit {
		t.AppendFooter(table.Row{"", fmt.Sprintf("… %d more", len(records)-limit)})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
