package cli

import (
	"fmt"

	"github.com/harrisonrobin/smartflow/pkg/auth"
	"github.com/harrisonrobin/smartflow/pkg/config"
	"github.com/harrisonrobin/smartflow/pkg/google"
	"github.com/spf13/cobra"
)

func newAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize read-only access to Gmail",
		Long: `auth deletes the cached OAuth token and runs the authorization flow
again. credentials.json must be in the smartflow config directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if err := auth.RemoveToken(); err != nil {
				return err
			}
			if _, err := google.NewClient(cmd.Context(), google.Config{User: cfg.Gmail.User}); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", auth.TokenFile)
			return nil
		},
	}
}
