package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

const sessionColumns = `s.session_id, s.section_course_id, s.session_date, s.title, s.description,
	s.session_type, s.meeting_type, s.start_time, s.end_time, s.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner, extra ...any) (Session, error) {
	var (
		sess Session
		date time.Time
	)
	dest := []any{&sess.ID, &sess.SectionCourseID, &date, &sess.Title, &sess.Description,
		&sess.SessionType, &sess.MeetingType, &sess.StartTime, &sess.EndTime, &sess.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Session{}, err
	}
	sess.Date = date.Format(DateLayout)
	return sess, nil
}

// rangeClause appends "AND col BETWEEN $n AND $n+1" when the range is active.
func rangeClause(col string, r DateRange, args *[]any) string {
	if !r.Active() {
		return ""
	}
	n := len(*args)
	*args = append(*args, r.Start, r.End)
	return fmt.Sprintf(" AND %s BETWEEN $%d::date AND $%d::date", col, n+1, n+2)
}

// ListSessions returns sessions with the number of students who attended (present or late).
func (r *Repository) ListSessions(ctx context.Context, sectionCourseID string, dr DateRange) ([]Session, error) {
	args := []any{sectionCourseID}
	query := `SELECT ` + sessionColumns + `,
		COUNT(al.attendance_id) FILTER (WHERE al.status IN ('present', 'late'))
		FROM sessions s
		LEFT JOIN attendance_logs al ON al.session_id = s.session_id
		WHERE s.section_course_id = $1` + rangeClause("s.session_date", dr, &args) + `
		GROUP BY s.session_id
		ORDER BY s.session_date DESC, s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Session{}
	for rows.Next() {
		var count int
		sess, err := scanSession(rows, &count)
		if err != nil {
			return nil, err
		}
		sess.AttendanceCount = count
		res = append(res, sess)
	}
	return res, rows.Err()
}

// GetSession returns a single session by id.
func (r *Repository) GetSession(ctx context.Context, sessionID string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.session_id = $1`, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return sess, err
}

// CreateSession writes a new session.
func (r *Repository) CreateSession(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sessions (session_id, section_course_id, session_date, title, description,
			session_type, meeting_type, start_time, end_time)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, s.ID, s.SectionCourseID, s.Date, s.Title, s.Description, s.SessionType, s.MeetingType, s.StartTime, s.EndTime)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// DeleteSession removes a session and its attendance logs.
func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_logs WHERE session_id = $1`, sessionID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return tx.Commit()
}

// ReplaceRecords swaps every record of the session for the given ones in one transaction.
func (r *Repository) ReplaceRecords(ctx context.Context, s Session, records []Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_logs WHERE session_id = $1`, s.ID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_logs (attendance_id, enrollment_id, session_id, status, session_date, remarks)
		VALUES ($1, $2, $3, $4, $5::date, $6)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), rec.EnrollmentID, s.ID, rec.Status, s.Date, rec.Remarks); err != nil {
			return fmt.Errorf("insert record for enrollment %s: %w", rec.EnrollmentID, err)
		}
	}
	return tx.Commit()
}

// ListStudents returns the roster of a section ordered by name.
func (r *Repository) ListStudents(ctx context.Context, sectionCourseID string) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ce.enrollment_id, s.student_id, s.full_name, s.student_number, s.student_photo, s.contact_email
		FROM course_enrollments ce
		JOIN students s ON ce.student_id = s.student_id
		WHERE ce.section_course_id = $1
		ORDER BY s.full_name
	`, sectionCourseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	students := []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.EnrollmentID, &st.StudentID, &st.FullName, &st.StudentNumber, &st.Photo, &st.ContactEmail); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// StudentStats counts each student's marks; the percentage is present over total, 0 with no records.
func (r *Repository) StudentStats(ctx context.Context, sectionCourseID string, dr DateRange) ([]StudentStats, error) {
	args := []any{sectionCourseID}
	query := `
		SELECT
			s.student_id,
			s.full_name,
			s.student_number,
			COUNT(al.attendance_id),
			COUNT(*) FILTER (WHERE al.status = 'present'),
			COUNT(*) FILTER (WHERE al.status = 'absent'),
			COUNT(*) FILTER (WHERE al.status = 'late'),
			COUNT(*) FILTER (WHERE al.status = 'excused'),
			COALESCE(ROUND(
				(COUNT(*) FILTER (WHERE al.status = 'present'))::numeric /
				NULLIF(COUNT(al.attendance_id), 0) * 100, 2
			), 0)::float8
		FROM students s
		JOIN course_enrollments ce ON s.student_id = ce.student_id
		LEFT JOIN attendance_logs al ON ce.enrollment_id = al.enrollment_id` + rangeClause("al.session_date", dr, &args) + `
		WHERE ce.section_course_id = $1
		GROUP BY s.student_id, s.full_name, s.student_number
		ORDER BY s.full_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stats := []StudentStats{}
	for rows.Next() {
		var st StudentStats
		if err := rows.Scan(&st.StudentID, &st.FullName, &st.StudentNumber, &st.TotalSessions,
			&st.PresentCount, &st.AbsentCount, &st.LateCount, &st.ExcusedCount, &st.AttendancePercentage); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// UpdateRecord changes one record and reports the section it belongs to.
func (r *Repository) UpdateRecord(ctx context.Context, attendanceID string, status Status, remarks string) (LogEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_logs
		SET status = $1, remarks = $2, updated_at = NOW()
		WHERE attendance_id = $3
		RETURNING attendance_id, enrollment_id, session_id, status, session_date, remarks, recorded_at,
			(SELECT section_course_id FROM sessions WHERE sessions.session_id = attendance_logs.session_id)
	`, status, remarks, attendanceID)
	var (
		e    LogEntry
		date time.Time
	)
	err := row.Scan(&e.AttendanceID, &e.EnrollmentID, &e.SessionID, &e.Status, &date, &e.Remarks, &e.RecordedAt, &e.SectionCourseID)
	if errors.Is(err, sql.ErrNoRows) {
		return LogEntry{}, fmt.Errorf("attendance record %s: %w", attendanceID, ErrNotFound)
	}
	if err != nil {
		return LogEntry{}, err
	}
	e.SessionDate = date.Format(DateLayout)
	return e, nil
}

// ClassAttendance lists stored records of a section, newest session first.
func (r *Repository) ClassAttendance(ctx context.Context, sectionCourseID string, f LogFilter) ([]LogEntry, error) {
	args := []any{sectionCourseID}
	query := `
		SELECT al.attendance_id, al.enrollment_id, al.session_id, ses.section_course_id, al.status,
			al.session_date, al.remarks, al.recorded_at, s.student_id, s.full_name, s.student_number,
			ses.title, ses.session_type, ses.meeting_type
		FROM attendance_logs al
		JOIN course_enrollments ce ON al.enrollment_id = ce.enrollment_id
		JOIN students s ON ce.student_id = s.student_id
		JOIN sessions ses ON al.session_id = ses.session_id
		WHERE ce.section_course_id = $1`
	if f.Date != "" {
		args = append(args, f.Date)
		query += fmt.Sprintf(" AND al.session_date = $%d::date", len(args))
	} else {
		query += rangeClause("al.session_date", f.Range, &args)
	}
	query += ` ORDER BY al.session_date DESC, s.full_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []LogEntry{}
	for rows.Next() {
		var (
			e    LogEntry
			date time.Time
		)
		if err := rows.Scan(&e.AttendanceID, &e.EnrollmentID, &e.SessionID, &e.SectionCourseID, &e.Status,
			&date, &e.Remarks, &e.RecordedAt, &e.StudentID, &e.FullName, &e.StudentNumber,
			&e.Title, &e.SessionType, &e.MeetingType); err != nil {
			return nil, err
		}
		e.SessionDate = date.Format(DateLayout)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportRows returns the rows behind an attendance export.
func (r *Repository) ExportRows(ctx context.Context, sectionCourseID string, dr DateRange) ([]ExportRow, error) {
	args := []any{sectionCourseID}
	query := `
		SELECT s.full_name, s.student_number, ses.title, ses.session_date, ses.session_type,
			ses.meeting_type, al.status, al.remarks, al.recorded_at
		FROM attendance_logs al
		JOIN course_enrollments ce ON al.enrollment_id = ce.enrollment_id
		JOIN students s ON ce.student_id = s.student_id
		JOIN sessions ses ON al.session_id = ses.session_id
		WHERE ce.section_course_id = $1` + rangeClause("al.session_date", dr, &args) + `
		ORDER BY ses.session_date DESC, s.full_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExportRow{}
	for rows.Next() {
		var (
			row  ExportRow
			date time.Time
		)
		if err := rows.Scan(&row.StudentName, &row.StudentNumber, &row.SessionTitle, &date, &row.SessionType,
			&row.MeetingType, &row.Status, &row.Remarks, &row.RecordedAt); err != nil {
			return nil, err
		}
		row.SessionDate = date.Format(DateLayout)
		out = append(out, row)
	}
	return out, rows.Err()
}

// FacultySummary totals attendance for every section taught by facultyID.
func (r *Repository) FacultySummary(ctx context.Context, facultyID string, dr DateRange) ([]CourseSummary, error) {
	args := []any{facultyID}
	query := `
		SELECT
			sc.section_course_id,
			sc.course_code,
			sc.course_title,
			sc.section_code,
			COUNT(DISTINCT ses.session_id),
			COUNT(al.attendance_id),
			COUNT(*) FILTER (WHERE al.status = 'present'),
			COUNT(*) FILTER (WHERE al.status = 'absent'),
			COUNT(*) FILTER (WHERE al.status = 'late'),
			COUNT(*) FILTER (WHERE al.status = 'excused'),
			COALESCE(ROUND(
				(COUNT(*) FILTER (WHERE al.status = 'present'))::numeric /
				NULLIF(COUNT(al.attendance_id), 0) * 100, 2
			), 0)::float8
		FROM section_courses sc
		LEFT JOIN sessions ses ON sc.section_course_id = ses.section_course_id
		LEFT JOIN attendance_logs al ON ses.session_id = al.session_id` + rangeClause("al.session_date", dr, &args) + `
		WHERE sc.instructor_id = $1
		GROUP BY sc.section_course_id, sc.course_code, sc.course_title, sc.section_code
		ORDER BY sc.course_code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CourseSummary{}
	for rows.Next() {
		var cs CourseSummary
		if err := rows.Scan(&cs.SectionCourseID, &cs.CourseCode, &cs.CourseTitle, &cs.SectionCode,
			&cs.TotalSessions, &cs.TotalAttendanceRecords, &cs.PresentCount, &cs.AbsentCount,
			&cs.LateCount, &cs.ExcusedCount, &cs.OverallPercentage); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
