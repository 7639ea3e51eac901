package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"classrecord/internal/analytics"
	"classrecord/internal/attendance"
)

func newAnalyticsCmd(app *App) *cobra.Command {
	var section string
	var r attendance.DateRange
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show overall attendance, trend and students at risk for a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := analytics.Load(cmd.Context(), app.API, section, r)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out(cmd))
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			if !rep.HasData {
				fmt.Fprintln(out(cmd), "No attendance data.")
				return nil
			}

			o := rep.Overall
			fmt.Fprintf(out(cmd), "Students %d, sessions %d, records %d\n", o.TotalStudents, o.TotalSessions, o.TotalRecords)
			fmt.Fprintf(out(cmd), "Present %d, absent %d, late %d, excused %d\n", o.TotalPresent, o.TotalAbsent, o.TotalLate, o.TotalExcused)
			fmt.Fprintf(out(cmd), "Overall attendance %.1f%%, trend %s\n", o.AttendanceRate, trendStyle(rep.Trend).Render(string(rep.Trend)))

			if len(rep.LowAttendance) == 0 {
				return nil
			}
			fmt.Fprintln(out(cmd), "\n"+styleHeader.Render(fmt.Sprintf("Below %.0f%%:", analytics.LowAttendanceThreshold)))
			w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			for _, st := range rep.LowAttendance {
				fmt.Fprintf(w, "%s\t%s\t%s\n", st.StudentNumber, st.FullName, styleBad.Render(fmt.Sprintf("%.2f%%", st.AttendancePercentage)))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section course ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	rangeFlags(cmd, &r)
	_ = cmd.MarkFlagRequired("section")

	return cmd
}
