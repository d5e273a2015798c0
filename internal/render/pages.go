package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/david/volunteer-board/internal/board"
	"github.com/david/volunteer-board/internal/search"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Pages.Render.
const (
	PageStudent   = "student"
	PageTeacher   = "teacher"
	PageOrganizer = "organizer"
)

// Options is the option list of one facet select.
type Options struct {
	Values   []string
	Selected string
}

// GateForm is the password form of a gated panel.
type GateForm struct {
	Action  string
	Message string
}

// StudentPage is the data of the student card grid.
type StudentPage struct {
	Title           string
	Role            string
	Keyword         string
	CategoryOptions Options
	DateOptions     Options
	Status          board.Status
	Cards           template.HTML
}

// NewStudentPage builds the student page for a query over facets. keyword is
// echoed back exactly as typed.
func NewStudentPage(keyword string, facets search.FacetSet, q board.QueryResult) StudentPage {
	return StudentPage{
		Title:           "Volunteer opportunities",
		Role:            PageStudent,
		Keyword:         keyword,
		CategoryOptions: Options{Values: facets.Categories, Selected: q.Criteria.Category},
		DateOptions:     Options{Values: facets.Dates, Selected: q.Criteria.Date},
		Status:          q.Status,
		Cards:           CardGrid(Cards(q.Events)),
	}
}

// TeacherPage is the data of the teacher panel.
type TeacherPage struct {
	Title             string
	Role              string
	Revealed          bool
	Gate              GateForm
	Category          string
	Date              string
	CategoryOptions   Options
	DateOptions       Options
	Status            board.Status
	EventHeader       []string
	Rows              []TableRow
	ApplicationHeader []string
	Applications      []ApplicationRow
}

// NewTeacherPage builds the revealed teacher panel.
func NewTeacherPage(snap board.Snapshot, q board.QueryResult) TeacherPage {
	return TeacherPage{
		Title:             "Teacher panel",
		Role:              PageTeacher,
		Revealed:          true,
		Category:          q.Criteria.Category,
		Date:              q.Criteria.Date,
		CategoryOptions:   Options{Values: snap.Facets.Categories, Selected: q.Criteria.Category},
		DateOptions:       Options{Values: snap.Facets.Dates, Selected: q.Criteria.Date},
		Status:            q.Status,
		EventHeader:       TableHeader,
		Rows:              TableRows(q.Events),
		ApplicationHeader: ApplicationHeader,
		Applications:      ApplicationRows(snap.Applications),
	}
}

// FormField is one organizer input with its current value.
type FormField struct {
	Name  string
	Label string
	Value string
}

// OrganizerPage is the data of the organizer panel.
type OrganizerPage struct {
	Title    string
	Role     string
	Revealed bool
	Gate     GateForm
	Fields   []FormField
	Preview  string
	Notice   string
}

// LockedTeacherPage is the teacher panel before the password is entered.
func LockedTeacherPage(message string) TeacherPage {
	return TeacherPage{
		Title: "Teacher panel",
		Role:  PageTeacher,
		Gate:  GateForm{Action: "/teacher/login", Message: message},
	}
}

// LockedOrganizerPage is the organizer panel before the password is entered.
func LockedOrganizerPage(message string) OrganizerPage {
	return OrganizerPage{
		Title: "Organizer panel",
		Role:  PageOrganizer,
		Gate:  GateForm{Action: "/organizer/login", Message: message},
	}
}

// Pages renders the HTML views.
type Pages struct {
	tmpl *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

// Render writes page name with data to w.
func (p *Pages) Render(w io.Writer, name string, data interface{}) error {
	if p.tmpl.Lookup(name) == nil {
		return fmt.Errorf("unknown page %q", name)
	}
	return p.tmpl.ExecuteTemplate(w, name, data)
}
