package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"classrecord/internal/attendance"
	"classrecord/internal/recorder"
)

// parseMark reads "student=status" or "student=status:remarks".
func parseMark(s string) (string, attendance.Status, string, error) {
	id, rest, found := strings.Cut(s, "=")
	if !found || id == "" {
		return "", "", "", fmt.Errorf("invalid mark %q, expected student=status[:remarks]", s)
	}
	status, remarks, _ := strings.Cut(rest, ":")
	st := attendance.Status(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return "", "", "", fmt.Errorf("invalid status %q in mark %q", status, s)
	}
	return id, st, remarks, nil
}

func newSubmitCmd(app *App) *cobra.Command {
	var (
		section, date, sessionType, meetingType string
		allPresent, allAbsent, cleanup          bool
		marks                                   []string
		retries                                 int
	)
	d := recorder.NewDraft()

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create a session and submit its attendance records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if allPresent && allAbsent {
				return errors.New("--all-present and --all-absent are mutually exclusive")
			}
			ctx := cmd.Context()
			roster, err := app.API.ListStudents(ctx, section)
			if err != nil {
				return fmt.Errorf("load roster: %w", err)
			}

			sheet := recorder.NewSheet(section, date, roster)
			sheet.Draft = d
			if sessionType != "" {
				sheet.Draft.SessionType = attendance.SessionType(sessionType)
			}
			if meetingType != "" {
				sheet.Draft.MeetingType = attendance.MeetingType(meetingType)
			}
			switch {
			case allPresent:
				sheet.MarkAllPresent()
			case allAbsent:
				sheet.MarkAllAbsent()
			}
			for _, m := range marks {
				id, status, remarks, err := parseMark(m)
				if err != nil {
					return err
				}
				sheet.Mark(id, status, remarks)
			}

			t := sheet.Tally()
			fmt.Fprintf(out(cmd), "Roster %d: present %d, absent %d, late %d, excused %d, unmarked %d (submitted as %s)\n",
				t.Total, t.Present, t.Absent, t.Late, t.Excused, t.Unmarked, recorder.DefaultStatus)

			co := recorder.NewCoordinator(app.API)
			sess, err := co.Submit(ctx, sheet)
			for attempt := 0; err != nil && co.State() == recorder.StateFailedPartial && attempt < retries; attempt++ {
				fmt.Fprintf(out(cmd), "Records for session %s failed: %v; retrying\n", sess.ID, err)
				sess, err = co.RetryRecords(ctx, sheet)
			}
			if err != nil {
				if pending, ok := co.Pending(); ok {
					co.Abandon()
					if cleanup {
						if derr := app.API.DeleteSession(ctx, pending.ID); derr != nil {
							return fmt.Errorf("%w (and removing session %s failed: %v)", err, pending.ID, derr)
						}
						return fmt.Errorf("%w (session %s removed)", err, pending.ID)
					}
					return fmt.Errorf("%w (session %s was created without records)", err, pending.ID)
				}
				return err
			}

			fmt.Fprintln(out(cmd), styleGood.Render(fmt.Sprintf("Attendance saved for session %s (%s)", sess.ID, sess.Title)))
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section course ID")
	cmd.Flags().StringVar(&date, "date", "", "Session date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&d.SessionNumber, "session-number", "", "Session number")
	cmd.Flags().StringVar(&d.Topic, "topic", "", "Session topic")
	cmd.Flags().StringVar(&d.Description, "description", "", "Session description")
	cmd.Flags().StringVar(&d.StartTime, "start-time", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&d.EndTime, "end-time", "", "End time (HH:MM)")
	cmd.Flags().StringVar(&sessionType, "type", "", "Session type: lecture, laboratory, tutorial or exam")
	cmd.Flags().StringVar(&meetingType, "meeting", "", "Meeting type: in-person, online or hybrid")
	cmd.Flags().BoolVar(&allPresent, "all-present", false, "Mark every student present first")
	cmd.Flags().BoolVar(&allAbsent, "all-absent", false, "Mark every student absent first")
	cmd.Flags().StringArrayVar(&marks, "mark", nil, "Mark one student: student_id=status[:remarks] (repeatable)")
	cmd.Flags().IntVar(&retries, "retries", 0, "Times to resubmit records if only the records request fails")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Delete the created session when its records cannot be saved")
	_ = cmd.MarkFlagRequired("section")

	return cmd
}
