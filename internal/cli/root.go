// Package cli implements the classrecord command line used by faculty to
// record attendance and read class analytics.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"classrecord/internal/analytics"
	"classrecord/internal/attendance"
	"classrecord/internal/client"
	"classrecord/internal/config"
	"classrecord/internal/recorder"
)

// API is the attendance API surface used by the commands.
type API interface {
	recorder.Submitter
	analytics.Source
	ListStudents(ctx context.Context, sectionCourseID string) ([]attendance.Student, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Export(ctx context.Context, sectionCourseID, format string, r attendance.DateRange) (*client.Download, error)
}

var _ API = (*client.Client)(nil)

// App holds what the commands share. API is created once by the caller.
type App struct {
	API    API
	Config config.App
}

// NewRootCmd creates the top-level "classrecord" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "classrecord",
		Short:         "Record class attendance and review attendance analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSubmitCmd(app),
		newRosterCmd(app),
		newSessionCmd(app),
		newAnalyticsCmd(app),
		newExportCmd(app),
		newTokenCmd(app),
	)

	return root
}

func rangeFlags(cmd *cobra.Command, r *attendance.DateRange) {
	cmd.Flags().StringVar(&r.Start, "start", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.End, "end", "", "Range end date (YYYY-MM-DD)")
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
