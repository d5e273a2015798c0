package organizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/david/volunteer-board/internal/models"
)

// Notice tells the organizer nothing was sent anywhere.
const Notice = "Preview only: nothing has been submitted. Connect a form or script to add this event to the spreadsheet."

// Form holds the ten organizer inputs, named like the event feed's columns.
type Form struct {
	Title       string `form:"title" json:"title"`
	Date        string `form:"date" json:"date"`
	Time        string `form:"time" json:"time"`
	Place       string `form:"place" json:"place"`
	Target      string `form:"target" json:"target"`
	Category    string `form:"category" json:"category"`
	Capacity    string `form:"capacity" json:"capacity"`
	Deadline    string `form:"deadline" json:"deadline"`
	Description string `form:"description" json:"description"`
	ApplyURL    string `form:"apply_url" json:"apply_url"`
}

// Field describes one form input.
type Field struct {
	Name  string
	Label string
}

// Fields lists the form inputs in event record order.
var Fields = []Field{
	{"title", "Title"},
	{"date", "Date"},
	{"time", "Time"},
	{"place", "Place"},
	{"target", "Target"},
	{"category", "Category"},
	{"capacity", "Capacity"},
	{"deadline", "Deadline"},
	{"description", "Description"},
	{"apply_url", "Apply URL"},
}

// Value returns the input named name.
func (f Form) Value(name string) string {
	switch name {
	case "title":
		return f.Title
	case "date":
		return f.Date
	case "time":
		return f.Time
	case "place":
		return f.Place
	case "target":
		return f.Target
	case "category":
		return f.Category
	case "capacity":
		return f.Capacity
	case "deadline":
		return f.Deadline
	case "description":
		return f.Description
	case "apply_url":
		return f.ApplyURL
	}
	return ""
}

// Record trims every input into an event record.
func (f Form) Record() models.EventRecord {
	return models.EventRecord{
		Title:       strings.TrimSpace(f.Title),
		Date:        strings.TrimSpace(f.Date),
		Time:        strings.TrimSpace(f.Time),
		Place:       strings.TrimSpace(f.Place),
		Target:      strings.TrimSpace(f.Target),
		Category:    strings.TrimSpace(f.Category),
		Capacity:    strings.TrimSpace(f.Capacity),
		Deadline:    strings.TrimSpace(f.Deadline),
		Description: strings.TrimSpace(f.Description),
		ApplyURL:    strings.TrimSpace(f.ApplyURL),
	}
}

// Preview is the serialized form shown back to the organizer.
type Preview struct {
	Event  models.EventRecord `json:"event"`
	JSON   string             `json:"preview"`
	Notice string             `json:"notice"`
}

// BuildPreview trims the form and serializes it as indented JSON in record
// order. It makes no network call and stores nothing.
func BuildPreview(f Form) (Preview, error) {
	ev := f.Record()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ev); err != nil {
		return Preview{}, fmt.Errorf("failed to encode preview: %w", err)
	}
	return Preview{Event: ev, JSON: strings.TrimSuffix(buf.String(), "\n"), Notice: Notice}, nil
}
