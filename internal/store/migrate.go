package store

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS students (
	student_id      TEXT PRIMARY KEY,
	full_name       TEXT NOT NULL,
	student_number  TEXT UNIQUE NOT NULL,
	student_photo   TEXT NOT NULL DEFAULT '',
	contact_email   TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS section_courses (
	section_course_id TEXT PRIMARY KEY,
	course_code       TEXT NOT NULL,
	course_title      TEXT NOT NULL,
	section_code      TEXT NOT NULL,
	instructor_id     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_enrollments (
	enrollment_id     TEXT PRIMARY KEY,
	student_id        TEXT NOT NULL REFERENCES students(student_id),
	section_course_id TEXT NOT NULL REFERENCES section_courses(section_course_id),
	enrollment_date   DATE NOT NULL DEFAULT CURRENT_DATE,
	status            TEXT NOT NULL DEFAULT 'enrolled',
	UNIQUE (student_id, section_course_id)
);

CREATE TABLE IF NOT EXISTS sessions (
	session_id        TEXT PRIMARY KEY,
	section_course_id TEXT NOT NULL REFERENCES section_courses(section_course_id),
	session_date      DATE NOT NULL,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	session_type      TEXT NOT NULL DEFAULT 'lecture',
	meeting_type      TEXT NOT NULL DEFAULT 'in-person',
	start_time        TEXT NOT NULL DEFAULT '',
	end_time          TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS attendance_logs (
	attendance_id TEXT PRIMARY KEY,
	enrollment_id TEXT NOT NULL REFERENCES course_enrollments(enrollment_id),
	session_id    TEXT NOT NULL REFERENCES sessions(session_id),
	status        TEXT NOT NULL CHECK (status IN ('present', 'absent', 'late', 'excused')),
	session_date  DATE NOT NULL,
	remarks       TEXT NOT NULL DEFAULT '',
	recorded_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sessions_section    ON sessions(section_course_id, session_date);
CREATE INDEX IF NOT EXISTS idx_logs_session        ON attendance_logs(session_id);
CREATE INDEX IF NOT EXISTS idx_logs_enrollment     ON attendance_logs(enrollment_id, session_date);
CREATE INDEX IF NOT EXISTS idx_enrollments_section ON course_enrollments(section_course_id);
`

// Migrate creates the attendance schema if it does not exist.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.Client.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
