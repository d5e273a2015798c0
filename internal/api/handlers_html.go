package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/david/volunteer-board/internal/board"
	"github.com/david/volunteer-board/internal/gate"
	"github.com/david/volunteer-board/internal/organizer"
	"github.com/david/volunteer-board/internal/render"
	"github.com/david/volunteer-board/internal/search"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleStudentPage(c echo.Context) error {
	keyword := c.QueryParam("q")
	snap := s.State.Snapshot()
	q := snap.Query(board.ViewStudent.Criteria(criteriaFromQuery(c)))
	return c.Render(http.StatusOK, render.PageStudent, render.NewStudentPage(keyword, snap.Facets, q))
}

func (s *Server) revealed(c echo.Context, role gate.Role) bool {
	g, ok := s.Gates[role]
	return ok && g.Revealed(c.Request())
}

func (s *Server) teacherQuery(c echo.Context) (board.Snapshot, board.QueryResult) {
	criteria := search.NewCriteria("", c.QueryParam("category"), c.QueryParam("date"))
	snap := s.State.Snapshot()
	return snap, snap.Query(board.ViewTeacher.Criteria(criteria))
}

func (s *Server) handleTeacherPage(c echo.Context) error {
	if !s.revealed(c, gate.RoleTeacher) {
		return c.Render(http.StatusOK, render.PageTeacher, render.LockedTeacherPage(""))
	}
	snap, q := s.teacherQuery(c)
	return c.Render(http.StatusOK, render.PageTeacher, render.NewTeacherPage(snap, q))
}

func (s *Server) handleTeacherExport(c echo.Context) error {
	if !s.revealed(c, gate.RoleTeacher) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "teacher panel is not revealed"})
	}
	_, q := s.teacherQuery(c)

	var buf bytes.Buffer
	if err := render.WriteEventsXLSX(&buf, q.Events); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="events.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// handlePageLogin checks the submitted password and, on success, sets the
// reveal cookie and redirects back to the panel.
func (s *Server) handlePageLogin(role gate.Role, panel string) echo.HandlerFunc {
	return func(c echo.Context) error {
		g, ok := s.Gates[role]
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown role"})
		}

		res := g.Check(c.FormValue("password"))
		if res.Revealed {
			c.SetCookie(g.RevealCookie())
			return c.Redirect(http.StatusSeeOther, panel)
		}

		if role == gate.RoleOrganizer {
			return c.Render(http.StatusOK, render.PageOrganizer, render.LockedOrganizerPage(res.Message))
		}
		return c.Render(http.StatusOK, render.PageTeacher, render.LockedTeacherPage(res.Message))
	}
}

func organizerPage(form organizer.Form) render.OrganizerPage {
	page := render.OrganizerPage{
		Title:    "Organizer panel",
		Role:     render.PageOrganizer,
		Revealed: true,
	}
	for _, f := range organizer.Fields {
		page.Fields = append(page.Fields, render.FormField{Name: f.Name, Label: f.Label, Value: form.Value(f.Name)})
	}
	return page
}

func (s *Server) handleOrganizerPage(c echo.Context) error {
	if !s.revealed(c, gate.RoleOrganizer) {
		return c.Render(http.StatusOK, render.PageOrganizer, render.LockedOrganizerPage(""))
	}
	return c.Render(http.StatusOK, render.PageOrganizer, organizerPage(organizer.Form{}))
}

func (s *Server) handleOrganizerPreviewPage(c echo.Context) error {
	if !s.revealed(c, gate.RoleOrganizer) {
		return c.Render(http.StatusOK, render.PageOrganizer, render.LockedOrganizerPage(""))
	}

	var form organizer.Form
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	p, err := organizer.BuildPreview(form)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	page := organizerPage(form)
	page.Preview = p.JSON
	page.Notice = p.Notice
	return c.Render(http.StatusOK, render.PageOrganizer, page)
}
