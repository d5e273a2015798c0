package render

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/volunteer-board/internal/models"
)

// WriteEventsTable prints the teacher table for events to w.
func WriteEventsTable(w io.Writer, events []models.EventRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(headerRow(TableHeader))
	for _, r := range TableRows(events) {
		t.AppendRow(cellsRow(r.Cells()))
	}
	t.Render()
}

// WriteApplicationsTable prints the applications table to w.
func WriteApplicationsTable(w io.Writer, apps []models.ApplicationRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(headerRow(ApplicationHeader))
	for _, r := range ApplicationRows(apps) {
		t.AppendRow(cellsRow(r.Cells()))
	}
	t.Render()
}

// WriteList prints values as a one-column table under title.
func WriteList(w io.Writer, title string, values []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{title})
	for _, v := range values {
		t.AppendRow(table.Row{v})
	}
	t.Render()
}

func headerRow(cols []string) table.Row {
	return cellsRow(cols)
}

func cellsRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
