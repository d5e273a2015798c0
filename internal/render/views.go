package render

import (
	"net/url"
	"strings"

	"github.com/david/volunteer-board/internal/models"
)

// Defaults shown in place of empty fields.
const (
	DefaultCardTitle   = "Untitled volunteer opportunity"
	DefaultDescription = "Details coming soon."
	DefaultTableTitle  = "Untitled"
	UndecidedDeadline  = "undecided"
	ApplyLinkText      = "Apply for this opportunity"
)

// TableHeader is the teacher table's fixed column order.
var TableHeader = []string{"Title", "Date / time", "Place", "Target", "Category", "Deadline"}

// ApplicationHeader is the applications table's fixed column order.
var ApplicationHeader = []string{"Event", "Student", "School", "Grade", "Class", "Status"}

// Card is the student view of one event. Optional blocks are empty when
// they should not be shown.
type Card struct {
	Title       string `json:"title"`
	Category    string `json:"category,omitempty"`
	DateTime    string `json:"date_time,omitempty"`
	Place       string `json:"place,omitempty"`
	Target      string `json:"target,omitempty"`
	Capacity    string `json:"capacity,omitempty"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	ApplyURL    string `json:"apply_url,omitempty"`
}

// NewCard builds the card for ev.
func NewCard(ev models.EventRecord) Card {
	c := Card{
		Title:       orDefault(ev.Title, DefaultCardTitle),
		Category:    ev.Category,
		Place:       ev.Place,
		Target:      ev.Target,
		Capacity:    ev.Capacity,
		Description: orDefault(ev.Description, DefaultDescription),
		Deadline:    "Deadline: " + orDefault(ev.Deadline, UndecidedDeadline),
		ApplyURL:    ApplyHref(ev.ApplyURL),
	}
	if ev.Date != "" || ev.Time != "" {
		c.DateTime = ev.Date + " " + ev.Time
	}
	return c
}

// Cards builds one card per event, in order.
func Cards(events []models.EventRecord) []Card {
	cards := make([]Card, 0, len(events))
	for _, ev := range events {
		cards = append(cards, NewCard(ev))
	}
	return cards
}

// TableRow is one row of the teacher's event table.
type TableRow struct {
	Title    string `json:"title"`
	DateTime string `json:"date_time"`
	Place    string `json:"place"`
	Target   string `json:"target"`
	Category string `json:"category"`
	Deadline string `json:"deadline"`
}

// Cells returns the row in TableHeader order.
func (r TableRow) Cells() []string {
	return []string{r.Title, r.DateTime, r.Place, r.Target, r.Category, r.Deadline}
}

// TableRows builds one row per event, in order.
func TableRows(events []models.EventRecord) []TableRow {
	rows := make([]TableRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, TableRow{
			Title:    orDefault(ev.Title, DefaultTableTitle),
			DateTime: ev.Date + " " + ev.Time,
			Place:    ev.Place,
			Target:   ev.Target,
			Category: ev.Category,
			Deadline: orDefault(ev.Deadline, UndecidedDeadline),
		})
	}
	return rows
}

// ApplicationRow is one row of the applications table.
type ApplicationRow struct {
	EventTitle  string `json:"event_title"`
	StudentName string `json:"student_name"`
	School      string `json:"school"`
	Grade       string `json:"grade"`
	ClassName   string `json:"class"`
	Status      string `json:"status"`
}

// Cells returns the row in ApplicationHeader order.
func (r ApplicationRow) Cells() []string {
	return []string{r.EventTitle, r.StudentName, r.School, r.Grade, r.ClassName, r.Status}
}

// ApplicationRows builds one row per application, in order.
func ApplicationRows(apps []models.ApplicationRecord) []ApplicationRow {
	rows := make([]ApplicationRow, 0, len(apps))
	for _, ap := range apps {
		rows = append(rows, ApplicationRow(ap))
	}
	return rows
}

// ApplyHref turns a spreadsheet apply_url into an absolute http(s) link.
// Values without a scheme, such as "forms.gle/abc", get https://. Anything
// that still is not an http(s) URL with a host yields "", so no apply
// control is shown.
func ApplyHref(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case !hasScheme(s):
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// hasScheme reports whether s starts with a URL scheme like "mailto:".
// A host with a port ("example.org:8080/x") is not a scheme.
func hasScheme(s string) bool {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return false
	}
	for j, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	rest := s[i+1:]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five markup-significant characters with entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
