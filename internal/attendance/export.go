package attendance

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const csvHeader = "Student Name,Student Number,Session Title,Session Date,Session Type,Meeting Type,Status,Remarks,Recorded At"

// ExportFilename names the CSV download for a section on the given day.
func ExportFilename(sectionCourseID string, now time.Time) string {
	return fmt.Sprintf("attendance_%s_%s.csv", sectionCourseID, now.UTC().Format(DateLayout))
}

// WriteCSV writes rows with every field quoted.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvHeader + "\n"); err != nil {
		return err
	}
	for i, row := range rows {
		fields := []string{
			row.StudentName,
			row.StudentNumber,
			row.SessionTitle,
			row.SessionDate,
			row.SessionType,
			row.MeetingType,
			string(row.Status),
			row.Remarks,
			row.RecordedAt.UTC().Format(time.RFC3339),
		}
		for j, f := range fields {
			fields[j] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		line := strings.Join(fields, ",")
		if i < len(rows)-1 {
			line += "\n"
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
