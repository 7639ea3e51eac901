package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"classrecord/internal/analytics"
	"classrecord/internal/attendance"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage class sessions",
	}

	cmd.AddCommand(
		newSessionListCmd(app),
		newSessionRemoveCmd(app),
	)

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var section, search string
	var r attendance.DateRange

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions of a section, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.API.ListSessions(cmd.Context(), section, r)
			if err != nil {
				return err
			}
			sessions = analytics.SearchSessions(sessions, search)
			if len(sessions) == 0 {
				fmt.Fprintln(out(cmd), "No sessions found.")
				return nil
			}

			w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTITLE\tTYPE\tMEETING\tATTENDED")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", s.ID, s.Date, s.Title, s.SessionType, s.MeetingType, s.AttendanceCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section course ID")
	cmd.Flags().StringVar(&search, "search", "", "Filter by title or session type")
	rangeFlags(cmd, &r)
	_ = cmd.MarkFlagRequired("section")

	return cmd
}

func newSessionRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <session-id>",
		Short: "Delete a session and its attendance records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted session %s\n", args[0])
			return nil
		},
	}
}
