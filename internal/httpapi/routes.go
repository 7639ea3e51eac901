package httpapi

import (
	"github.com/gin-gonic/gin"

	"classrecord/internal/auth"
)

// recorders may create, mark and delete attendance.
var recorders = []string{auth.RoleFaculty, auth.RoleAdmin}

// Register mounts the attendance routes under /attendance on rg. authn must set claims.
func Register(rg *gin.RouterGroup, h *Handler, authn gin.HandlerFunc) {
	g := rg.Group("/attendance", authn)
	write := auth.RequireRole(recorders...)

	g.GET("/class/:sectionCourseId", h.ClassAttendance)
	g.GET("/sessions/:sectionCourseId", h.ListSessions)
	g.POST("/sessions", write, h.CreateSession)
	g.DELETE("/sessions/:sessionId", write, h.DeleteSession)
	g.POST("/mark", write, h.Mark)
	g.GET("/students/:sectionCourseId", h.ListStudents)
	g.GET("/stats/:sectionCourseId", h.Stats)
	g.GET("/export/:sectionCourseId", h.Export)
	g.GET("/summary/:facultyId", h.Summary)
	g.PUT("/:attendanceId", write, h.UpdateRecord)
}
