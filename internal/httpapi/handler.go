package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"classrecord/internal/attendance"
	"classrecord/internal/auth"
)

// Handler serves the attendance REST API.
type Handler struct {
	svc *attendance.Service
}

// New creates a handler backed by svc.
func New(svc *attendance.Service) *Handler {
	return &Handler{svc: svc}
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// fail maps service errors to HTTP statuses. notFound is the message used for ErrNotFound.
func fail(c *gin.Context, err error, notFound string) {
	var verr *attendance.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": verr.Message})
	case errors.Is(err, attendance.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFound})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

func dateRange(c *gin.Context) attendance.DateRange {
	return attendance.DateRange{Start: c.Query("startDate"), End: c.Query("endDate")}
}

// ListSessions handles GET /sessions/:sectionCourseId.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.svc.ListSessions(c.Request.Context(), c.Param("sectionCourseId"), dateRange(c))
	if err != nil {
		fail(c, err, "Section not found")
		return
	}
	ok(c, http.StatusOK, sessions)
}

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(c *gin.Context) {
	var req attendance.NewSession
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "detail": err.Error()})
		return
	}
	sess, err := h.svc.CreateSession(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Section not found")
		return
	}
	ok(c, http.StatusCreated, sess)
}

// DeleteSession handles DELETE /sessions/:sessionId.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.svc.DeleteSession(c.Request.Context(), c.Param("sessionId")); err != nil {
		fail(c, err, "Session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session and attendance records deleted successfully"})
}

type markRequest struct {
	SessionID string              `json:"session_id"`
	Records   []attendance.Record `json:"attendance_records"`
}

// Mark handles POST /mark.
func (h *Handler) Mark(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "detail": err.Error()})
		return
	}
	if err := h.svc.Mark(c.Request.Context(), req.SessionID, req.Records); err != nil {
		fail(c, err, "Session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Attendance marked successfully"})
}

// ListStudents handles GET /students/:sectionCourseId.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.svc.ListStudents(c.Request.Context(), c.Param("sectionCourseId"))
	if err != nil {
		fail(c, err, "Section not found")
		return
	}
	ok(c, http.StatusOK, students)
}

// Stats handles GET /stats/:sectionCourseId.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), c.Param("sectionCourseId"), dateRange(c))
	if err != nil {
		fail(c, err, "Section not found")
		return
	}
	ok(c, http.StatusOK, stats)
}

// ClassAttendance handles GET /class/:sectionCourseId.
func (h *Handler) ClassAttendance(c *gin.Context) {
	f := attendance.LogFilter{Date: c.Query("date"), Range: dateRange(c)}
	entries, err := h.svc.ClassAttendance(c.Request.Context(), c.Param("sectionCourseId"), f)
	if err != nil {
		fail(c, err, "Section not found")
		return
	}
	ok(c, http.StatusOK, entries)
}

type updateRequest struct {
	Status  attendance.Status `json:"status" binding:"required,oneof=present absent late excused"`
	Remarks string            `json:"remarks"`
}

// UpdateRecord handles PUT /:attendanceId.
func (h *Handler) UpdateRecord(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "detail": err.Error()})
		return
	}
	entry, err := h.svc.UpdateRecord(c.Request.Context(), c.Param("attendanceId"), req.Status, req.Remarks)
	if err != nil {
		fail(c, err, "Attendance record not found")
		return
	}
	ok(c, http.StatusOK, entry)
}

// Export handles GET /export/:sectionCourseId. format=csv (default) streams a download.
func (h *Handler) Export(c *gin.Context) {
	section := c.Param("sectionCourseId")
	rows, err := h.svc.Export(c.Request.Context(), section, dateRange(c))
	if err != nil {
		fail(c, err, "Section not found")
		return
	}
	if c.DefaultQuery("format", "csv") != "csv" {
		ok(c, http.StatusOK, rows)
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+attendance.ExportFilename(section, h.svc.Now())+`"`)
	c.Status(http.StatusOK)
	if err := attendance.WriteCSV(c.Writer, rows); err != nil {
		log.Printf("export %s: %v", section, err)
	}
}

// Summary handles GET /summary/:facultyId. Faculty may only read their own summary.
func (h *Handler) Summary(c *gin.Context) {
	facultyID := c.Param("facultyId")
	if claims, found := auth.ClaimsFrom(c); found && claims.Role == auth.RoleFaculty && claims.Subject != facultyID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "faculty may only view their own summary"})
		return
	}
	summary, err := h.svc.Summary(c.Request.Context(), facultyID, dateRange(c))
	if err != nil {
		fail(c, err, "Faculty not found")
		return
	}
	ok(c, http.StatusOK, summary)
}
