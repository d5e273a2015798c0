package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/david/volunteer-board/internal/board"
	"github.com/david/volunteer-board/internal/gate"
	"github.com/david/volunteer-board/internal/render"
)

// Options configures a Server.
type Options struct {
	Loader         *board.Loader
	Gates          gate.Set
	AllowedOrigins []string
	// AdminSecret guards the admin routes. When empty an ephemeral secret is
	// generated and the admin routes are effectively unreachable.
	AdminSecret string
	Logger      *zap.Logger
}

type Server struct {
	Echo   *echo.Echo
	State  *board.State
	Loader *board.Loader
	Gates  gate.Set
	Pages  *render.Pages
	Logger *zap.Logger

	adminSecret string

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

// pageRenderer adapts render.Pages to echo.
type pageRenderer struct {
	pages *render.Pages
}

func (r pageRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.pages.Render(w, name, data)
}

func NewServer(opts Options) (*Server, error) {
	if opts.Loader == nil {
		return nil, errors.New("api: loader is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	secret, err := resolveAdminSecret(opts.AdminSecret, logger)
	if err != nil {
		return nil, err
	}

	pages, err := render.NewPages()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = pageRenderer{pages: pages}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:8081"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	s := &Server{
		Echo:        e,
		State:       opts.Loader.State,
		Loader:      opts.Loader,
		Gates:       opts.Gates,
		Pages:       pages,
		Logger:      logger,
		adminSecret: secret,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	s.Echo.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/student")
	})

	// HTML views
	s.Echo.GET("/student", s.handleStudentPage)
	s.Echo.GET("/teacher", s.handleTeacherPage)
	s.Echo.POST("/teacher/login", s.handlePageLogin(gate.RoleTeacher, "/teacher"))
	s.Echo.GET("/teacher/export.xlsx", s.handleTeacherExport)
	s.Echo.GET("/organizer", s.handleOrganizerPage)
	s.Echo.POST("/organizer/login", s.handlePageLogin(gate.RoleOrganizer, "/organizer"))
	s.Echo.POST("/organizer/preview", s.handleOrganizerPreviewPage)

	api := s.Echo.Group("/api/v1")
	api.GET("/events", s.handleListEvents)
	api.GET("/facets", s.handleGetFacets)
	api.GET("/applications", s.handleListApplications)
	api.GET("/status", s.handleGetStatus)
	api.POST("/gate/:role", s.handleGate)
	api.POST("/organizer/preview", s.handleOrganizerPreview)

	// Admin Routes
	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/reload", s.handleReload)
	admin.GET("/job/:id", s.handleJobStatus)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

// Shutdown stops the server and cancels a running reload job.
func (s *Server) Shutdown(ctx context.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Cancel != nil {
		s.runningJob.Cancel()
	}
	s.jobMu.Unlock()
	return s.Echo.Shutdown(ctx)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader != "" && adminHeader == s.adminSecret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == s.adminSecret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func resolveAdminSecret(configured string, logger *zap.Logger) (string, error) {
	if secret := strings.TrimSpace(configured); secret != "" {
		return secret, nil
	}

	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
	}

	logger.Warn("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
