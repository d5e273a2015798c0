package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/david/volunteer-board/internal/board"
	"github.com/david/volunteer-board/internal/organizer"
	"github.com/david/volunteer-board/internal/search"
)

func criteriaFromQuery(c echo.Context) search.Criteria {
	return search.NewCriteria(c.QueryParam("q"), c.QueryParam("category"), c.QueryParam("date"))
}

func (s *Server) handleListEvents(c echo.Context) error {
	return c.JSON(http.StatusOK, s.State.Query(board.ViewStudent.Criteria(criteriaFromQuery(c))))
}

func (s *Server) handleGetFacets(c echo.Context) error {
	return c.JSON(http.StatusOK, s.State.Facets())
}

func (s *Server) handleListApplications(c echo.Context) error {
	apps := s.State.Applications()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"applications": apps,
		"count":        len(apps),
	})
}

func (s *Server) handleGetStatus(c echo.Context) error {
	snap := s.State.Snapshot()
	resp := map[string]interface{}{
		"status":       s.State.Status(),
		"events":       len(snap.Events),
		"applications": len(snap.Applications),
		"loading":      snap.Loading,
	}
	if !snap.LoadedAt.IsZero() {
		resp["loaded_at"] = snap.LoadedAt
	}
	return c.JSON(http.StatusOK, resp)
}

type gateRequest struct {
	Password string `json:"password" form:"password"`
}

func (s *Server) handleGate(c echo.Context) error {
	g, ok := s.Gates.Lookup(c.Param("role"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown role"})
	}

	var req gateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	res := g.Check(req.Password)
	if res.Revealed {
		c.SetCookie(g.RevealCookie())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleOrganizerPreview(c echo.Context) error {
	var form organizer.Form
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	p, err := organizer.BuildPreview(form)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, p)
}
