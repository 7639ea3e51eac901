package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"classrecord/internal/attendance"
)

func newExportCmd(app *App) *cobra.Command {
	var section, format, dir string
	var r attendance.DateRange
	var stdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the attendance records of a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.API.Export(cmd.Context(), section, format, r)
			if err != nil {
				return err
			}
			defer d.Body.Close()

			if stdout {
				_, err := io.Copy(out(cmd), d.Body)
				return err
			}
			path := filepath.Join(dir, filepath.Base(d.Filename))
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if _, err := io.Copy(f, d.Body); err != nil {
				_ = f.Close()
				return fmt.Errorf("write export file: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section course ID")
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or json")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the export into")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the export to standard output")
	rangeFlags(cmd, &r)
	_ = cmd.MarkFlagRequired("section")

	return cmd
}
