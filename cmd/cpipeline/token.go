package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KOMKZ/cpipeline/flagx"
	"github.com/KOMKZ/cpipeline/jwt"
)

type issueOptions struct {
	Email    string `flag:"email,e" usage:"account email" required:"true"`
	Password string `flag:"password,p" usage:"account password" required:"true"`
	JSON     bool   `flag:"json" usage:"print the token pair as JSON"`
}

func newTokenCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with access tokens",
	}

	var opts issueOptions
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Log in with a password and print a token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if err := flagx.Parse(cmd, &opts); err != nil {
				return err
			}
			app, err := root.newApp()
			if err != nil {
				return err
			}
			defer func() {
				if shutdownErr := app.Shutdown(); err == nil {
					err = shutdownErr
				}
			}()

			authenticator, err := app.Authenticator()
			if err != nil {
				return err
			}
			tokens, err := app.TokenManager()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			user, err := authenticator.Authenticate(ctx, opts.Email, opts.Password)
			if err != nil {
				return err
			}
			pair, err := tokens.GenerateTokenPair(ctx, jwt.Identity{
				Subject:     strconv.FormatUint(uint64(user.ID), 10),
				UserID:      user.ID,
				Email:       user.Email,
				IsSuperuser: user.IsSuperuser,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSON {
				return json.NewEncoder(out).Encode(pair)
			}
			fmt.Fprintf(out, "access_token:  %s\nrefresh_token: %s\nexpires_in:    %ds\n",
				pair.AccessToken, pair.RefreshToken, pair.ExpiresIn)
			return nil
		},
	}
	flagx.MustBind(issue, &opts)

	cmd.AddCommand(issue)
	return cmd
}
