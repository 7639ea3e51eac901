package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"classrecord/internal/recorder"
)

func newRosterCmd(app *App) *cobra.Command {
	var section, query string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List the students of a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := app.API.ListStudents(cmd.Context(), section)
			if err != nil {
				return err
			}
			sheet := recorder.NewSheet(section, "", roster)
			sheet.Filter = recorder.Filter{Query: query}

			w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STUDENT ID\tNUMBER\tNAME")
			for _, st := range sheet.Visible() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", st.StudentID, st.StudentNumber, st.FullName)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section course ID")
	cmd.Flags().StringVar(&query, "search", "", "Filter by name or student number")
	_ = cmd.MarkFlagRequired("section")

	return cmd
}
