package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/david/volunteer-board/internal/models"
)

// EventsSheet is the sheet name of the teacher export.
const EventsSheet = "Events"

// WriteEventsXLSX writes the teacher table for events as a workbook: a styled
// header row followed by one row per event.
func WriteEventsXLSX(w io.Writer, events []models.EventRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", EventsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheetRow(f, 1, TableHeader); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(TableHeader), 1)
	if err := f.SetCellStyle(EventsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range TableRows(events) {
		if err := writeSheetRow(f, i+2, r.Cells()); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(TableHeader))
	if err := f.SetColWidth(EventsSheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(EventsSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
