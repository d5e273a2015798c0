package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/david/volunteer-board/internal/board"
	"github.com/david/volunteer-board/internal/gate"
	"github.com/david/volunteer-board/internal/ingest"
)

const testAdminSecret = "test-admin-secret"

const eventsCSV = `title,date,time,place,target,category,capacity,deadline,description,apply_url
Beach Cleanup,2024-05-01,09:00,North Beach,All grades,Environment,20,2024-04-20,Pick up litter,https://forms.example/beach
Library Helper,2024-05-03,15:00,City Library,Grade 8,Education,5,,Shelve books,
Park Planting,2024-05-01,10:00,Central Park,Grade 7,Environment,,,,
`

const applicationsCSV = `event_title,student_name,school,grade,class,status
Beach Cleanup,Aki,East High,8,B,accepted
`

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, load bool) *Server {
	t.Helper()
	fetcher := ingest.NewHTTPFetcher(ingest.FetchConfig{AllowPrivateNetworks: true, MaxRetries: -1, RateLimitRPS: 1000})

	events := board.Feed{ID: ingest.FeedEvents, URL: feedServer(t, eventsCSV).URL, Fetcher: fetcher, Timeout: time.Second}
	apps := &board.Feed{ID: ingest.FeedApplications, URL: feedServer(t, applicationsCSV).URL, Fetcher: fetcher, Timeout: time.Second}
	loader := board.NewLoader(board.NewState(), events, apps, nil)

	if load {
		_, err := loader.Load(context.Background())
		require.NoError(t, err)
	}

	s, err := NewServer(Options{
		Loader:      loader,
		Gates:       gate.NewSet("teacher123", "organizer123"),
		AdminSecret: testAdminSecret,
	})
	require.NoError(t, err)
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRootRedirectsToStudent(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/student", rec.Header().Get("Location"))
}

func TestListEvents(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name    string
		query   string
		count   int
		state   board.StatusState
		message string
	}{
		{"No filters", "", 3, board.StatusAvailable, "3 volunteer opportunities are currently listed."},
		{"Keyword ignores case and spaces", "?q=" + url.QueryEscape("BEACH clean"), 1, board.StatusAvailable, "1 volunteer opportunities found."},
		{"Category and date", "?category=Environment&date=2024-05-01", 2, board.StatusAvailable, "2 volunteer opportunities found."},
		{"Nothing matches", "?category=Sports", 0, board.StatusNoMatch, board.MessageNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/events"+tt.query, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var got board.QueryResult
			decode(t, rec, &got)
			assert.Equal(t, tt.count, got.Count)
			assert.Len(t, got.Events, tt.count)
			assert.Equal(t, tt.state, got.Status.State)
			assert.Equal(t, tt.message, got.Status.Message)
		})
	}
}

func TestListEvents_BeforeLoadReportsLoading(t *testing.T) {
	s := newTestServer(t, false)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))

	var got board.QueryResult
	decode(t, rec, &got)
	assert.Equal(t, board.StatusLoading, got.Status.State)
	assert.Equal(t, board.MessageLoading, got.Status.Message)
}

func TestGetFacets(t *testing.T) {
	s := newTestServer(t, true)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/facets", nil))

	var got map[string][]string
	decode(t, rec, &got)
	assert.Equal(t, []string{"Education", "Environment"}, got["categories"])
	assert.Equal(t, []string{"2024-05-01", "2024-05-03"}, got["dates"])
}

func TestListApplications(t *testing.T) {
	s := newTestServer(t, true)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil))

	var got struct {
		Applications []map[string]string `json:"applications"`
		Count        int                 `json:"count"`
	}
	decode(t, rec, &got)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "Aki", got.Applications[0]["student_name"])
	assert.Equal(t, "B", got.Applications[0]["class"])
}

func TestGate(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name     string
		role     string
		body     string
		code     int
		revealed bool
		message  string
	}{
		{"Empty", "teacher", `{"password":"  "}`, http.StatusOK, false, gate.MessageEmpty},
		{"Wrong", "organizer", `{"password":"x"}`, http.StatusOK, false, "Incorrect organizer password."},
		{"Correct", "teacher", `{"password":" teacher123 "}`, http.StatusOK, true, ""},
		{"Unknown role", "student", `{"password":"x"}`, http.StatusNotFound, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/gate/"+tt.role, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := do(s, req)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				return
			}

			var got gate.Result
			decode(t, rec, &got)
			assert.Equal(t, tt.revealed, got.Revealed)
			assert.Equal(t, tt.message, got.Message)
			assert.Equal(t, tt.revealed, strings.Contains(rec.Header().Get("Set-Cookie"), "revealed_"+tt.role+"=1"))
		})
	}
}

func TestOrganizerPreviewAPI(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/organizer/preview", strings.NewReader(`{"title":"  Beach Day ","apply_url":"https://x.example"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Preview string `json:"preview"`
		Notice  string `json:"notice"`
	}
	decode(t, rec, &got)
	assert.True(t, strings.HasPrefix(got.Preview, "{\n  \"title\": \"Beach Day\",\n  \"date\": \"\""))
	assert.NotEmpty(t, got.Notice)
}

func TestStudentPage(t *testing.T) {
	s := newTestServer(t, true)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/student?category=Environment", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("#student-cards article.card").Length())
	assert.Equal(t, "2 volunteer opportunities found.", doc.Find("#status").Text())
	assert.Equal(t, 1, doc.Find("a.apply-button").Length())
}

func TestTeacherPage_GateFlow(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/teacher", nil))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("form.gate").Length())
	assert.Equal(t, 0, doc.Find("#teacher-events").Length())

	form := url.Values{"password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/teacher/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(s, req)
	doc, err = goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Incorrect teacher password.", doc.Find(".gate-message").Text())

	form = url.Values{"password": {"teacher123"}}
	req = httptest.NewRequest(http.MethodPost, "/teacher/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(s, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/teacher?date=2024-05-01", nil)
	req.AddCookie(cookies[0])
	rec = do(s, req)
	doc, err = goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("#teacher-events tbody tr").Length())
	assert.Equal(t, 1, doc.Find("#applications tbody tr").Length())
}

func TestTeacherExport(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/teacher/export.xlsx", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/teacher/export.xlsx?category=Education", nil)
	req.AddCookie(s.Gates[gate.RoleTeacher].RevealCookie())
	rec = do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Events")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Library Helper", rows[1][0])
	assert.Equal(t, "undecided", rows[1][5])
}

func TestOrganizerPreviewPage(t *testing.T) {
	s := newTestServer(t, false)

	form := url.Values{"title": {" Beach Day "}, "place": {"Pier"}}
	req := httptest.NewRequest(http.MethodPost, "/organizer/preview", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(s.Gates[gate.RoleOrganizer].RevealCookie())
	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, doc.Find("#organizer-preview").Text(), `"title": "Beach Day"`)
	assert.Equal(t, 10, doc.Find("#organizer-form input").Length())
}

func TestAdminRequiresSecret(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/job/abc", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminSecret)
	rec = do(s, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminReloadJob(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil)
	req.Header.Set("X-Admin-Secret", testAdminSecret)
	rec := do(s, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var started map[string]string
	decode(t, rec, &started)
	jobID := started["job_id"]
	require.NotEmpty(t, jobID)

	var status map[string]interface{}
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/job/"+jobID, nil)
		req.Header.Set("X-Admin-Secret", testAdminSecret)
		rec := do(s, req)
		if rec.Code != http.StatusOK {
			return false
		}
		status = nil
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status["status"] != "running"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "completed", status["status"])
	assert.Equal(t, board.StatusAvailable, s.State.Status().State)
	assert.Len(t, s.State.Events(), 3)
}
