package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"classrecord/internal/auth"
)

func newTokenCmd(app *App) *cobra.Command {
	var subject, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the configured key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			pair, err := auth.Issue(subject, role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), pair.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "User ID the token is issued to")
	cmd.Flags().StringVar(&role, "role", auth.RoleFaculty, "Role claim")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
