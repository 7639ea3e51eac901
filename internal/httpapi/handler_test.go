package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classrecord/internal/attendance"
	"classrecord/internal/auth"
	"classrecord/internal/cache"
	"classrecord/internal/httpapi"
	"classrecord/internal/testutil"
)

const (
	signingKey = "handler-test-key"
	issuer     = "classrecord-test"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testServer struct {
	router *gin.Engine
	store  *testutil.FakeStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := testutil.NewFakeStore()
	store.Rosters["sec-1"] = testutil.NewTestRoster(2)
	svc := attendance.NewService(store, cache.NewMemory(time.Minute), &testutil.Publisher{})

	r := gin.New()
	httpapi.Register(r.Group("/api"), httpapi.New(svc), auth.Bearer(signingKey, issuer))
	return &testServer{router: r, store: store}
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	pair, err := auth.Issue(subject, role, issuer, signingKey, time.Minute, time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/attendance/students/sec-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
}

func TestCreateAndMark_FullFlow(t *testing.T) {
	s := newTestServer(t)
	fac := token(t, "fac-1", auth.RoleFaculty)

	w, env := s.do(t, http.MethodPost, "/api/attendance/sessions", fac, map[string]string{
		"section_course_id": "sec-1",
		"session_date":      "2025-02-14",
		"title":             "Hashing",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var sess attendance.Session
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, attendance.SessionLecture, sess.SessionType)

	w, env = s.do(t, http.MethodPost, "/api/attendance/mark", fac, map[string]any{
		"session_id": sess.ID,
		"attendance_records": []attendance.Record{
			{EnrollmentID: "enr-1", Status: attendance.StatusPresent},
			{EnrollmentID: "enr-2", Status: attendance.StatusAbsent, Remarks: "sick"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Attendance marked successfully", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/attendance/sessions/sec-1", fac, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sessions []attendance.Session
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].AttendanceCount)

	w, env = s.do(t, http.MethodGet, "/api/attendance/stats/sec-1", fac, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats []attendance.StudentStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Len(t, stats, 2)
}

func TestCreateSession_ValidationIs400(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/attendance/sessions", token(t, "fac-1", auth.RoleFaculty), map[string]string{
		"section_course_id": "sec-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "section_course_id, session_date, and title are required", env.Error)
}

func TestWriteRoutes_ForbiddenForReadOnlyRoles(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodPost, "/api/attendance/mark", token(t, "dean-1", auth.RoleDean), map[string]any{
		"session_id": "x", "attendance_records": []attendance.Record{},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/attendance/students/sec-1", token(t, "dean-1", auth.RoleDean), nil)
	assert.Equal(t, http.StatusOK, w.Code, "reads stay open to every role")
}

func TestMark_UnknownSessionIs404(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/attendance/mark", token(t, "fac-1", auth.RoleFaculty), map[string]any{
		"session_id": "nope", "attendance_records": []attendance.Record{},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", env.Error)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t)
	s.store.Sessions["ses-1"] = attendance.Session{ID: "ses-1", SectionCourseID: "sec-1", Date: "2025-01-01"}

	w, env := s.do(t, http.MethodDelete, "/api/attendance/sessions/ses-1", token(t, "adm", auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Session and attendance records deleted successfully", env.Message)

	w, _ = s.do(t, http.MethodDelete, "/api/attendance/sessions/ses-1", token(t, "adm", auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecord_BindsStatus(t *testing.T) {
	s := newTestServer(t)
	s.store.Logs["att-1"] = attendance.LogEntry{AttendanceID: "att-1", SectionCourseID: "sec-1", Status: attendance.StatusAbsent}
	fac := token(t, "fac-1", auth.RoleFaculty)

	w, _ := s.do(t, http.MethodPut, "/api/attendance/att-1", fac, map[string]string{"status": "sleeping"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, http.MethodPut, "/api/attendance/att-1", fac, map[string]string{"status": "late", "remarks": "train"})
	require.Equal(t, http.StatusOK, w.Code)
	var entry attendance.LogEntry
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, attendance.StatusLate, entry.Status)

	w, env = s.do(t, http.MethodPut, "/api/attendance/att-404", fac, map[string]string{"status": "late"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Attendance record not found", env.Error)
}

func TestExport_CSVDownload(t *testing.T) {
	s := newTestServer(t)
	s.store.Sessions["ses-1"] = attendance.Session{ID: "ses-1", SectionCourseID: "sec-1", Date: "2025-01-01", Title: "Intro"}
	s.store.Records["ses-1"] = []attendance.Record{{EnrollmentID: "enr-1", Status: attendance.StatusPresent}}

	w, _ := s.do(t, http.MethodGet, "/api/attendance/export/sec-1", token(t, "fac-1", auth.RoleFaculty), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="attendance_sec-1_`)
	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `"Student 01","2024-0001","Intro","2025-01-01"`))
}

func TestExport_JSON(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/attendance/export/sec-1?format=json", token(t, "fac-1", auth.RoleFaculty), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestSummary_FacultyLimitedToSelf(t *testing.T) {
	s := newTestServer(t)
	s.store.Summaries["fac-1"] = []attendance.CourseSummary{{SectionCourseID: "sec-1"}}

	w, _ := s.do(t, http.MethodGet, "/api/attendance/summary/fac-2", token(t, "fac-1", auth.RoleFaculty), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/attendance/summary/fac-1", token(t, "fac-1", auth.RoleFaculty), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/attendance/summary/fac-1", token(t, "dean-1", auth.RoleDean), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClassAttendance_BadDateIs400(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/api/attendance/class/sec-1?date=01-02-2025", token(t, "fac-1", auth.RoleFaculty), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
