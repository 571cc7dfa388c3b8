package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

func newHealthCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run the readiness checks once and print the JSON result",
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

			agg, err := app.Health()
			if err != nil {
				return err
			}
			resp := agg.Check(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.IsHealthy() {
				return errors.New("deployment is unhealthy")
			}
			return nil
		},
	}
}
