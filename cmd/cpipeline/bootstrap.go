package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBootstrapCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Prepare a fresh deployment",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "superuser",
		Short: "Create FIRST_SUPERUSER unless it already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			app, err := root.newApp()
			if err != nil {
				return err
			}
			defer func() {
				if shutdownErr := app.Shutdown(); err == nil {
					err = shutdownErr
				}
			}()

			user, created, err := app.BootstrapSuperuser(cmd.Context())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created superuser %s (id %d)\n", user.Email, user.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "superuser %s already exists (id %d)\n", user.Email, user.ID)
			}
			return nil
		},
	})
	return cmd
}
