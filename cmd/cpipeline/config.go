package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KOMKZ/cpipeline/auth"
	"github.com/KOMKZ/cpipeline/flagx"
	"github.com/KOMKZ/cpipeline/jwt"
	"github.com/KOMKZ/cpipeline/settings"
	"github.com/KOMKZ/cpipeline/validator"
)

type showOptions struct {
	JSON    bool `flag:"json" usage:"print a JSON array instead of a table"`
	Sources bool `flag:"sources" default:"true" usage:"include the source of each value"`
}

func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved settings",
	}
	cmd.AddCommand(newConfigShowCommand(root), newConfigCheckCommand(root))
	return cmd
}

func newConfigShowCommand(root *rootOptions) *cobra.Command {
	var opts showOptions
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every setting with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flagx.Parse(cmd, &opts); err != nil {
				return err
			}
			s, _, err := root.loadSettings()
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeEntriesJSON(cmd.OutOrStdout(), s.Redacted(), opts.Sources)
			}
			return writeEntries(cmd.OutOrStdout(), s.Redacted(), opts.Sources)
		},
	}
	flagx.MustBind(cmd, &opts)
	return cmd
}

func newConfigCheckCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the settings and list every violation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, loader, err := root.loadSettings()
			var loadErr *settings.LoadError
			if errors.As(err, &loadErr) {
				out := cmd.ErrOrStderr()
				fmt.Fprintf(out, "%d invalid setting(s):\n", len(loadErr.Violations))
				for _, v := range loadErr.Violations {
					fmt.Fprintf(out, "  %s\n", v.Error())
				}
				return errors.New("settings are invalid")
			}
			if err != nil {
				return err
			}

			if problems := consumerProblems(s); len(problems) > 0 {
				out := cmd.ErrOrStderr()
				fmt.Fprintf(out, "%d setting(s) rejected by their consumers:\n", len(problems))
				for _, p := range problems {
					fmt.Fprintf(out, "  %s\n", p)
				}
				return errors.New("settings are unusable")
			}

			out := cmd.OutOrStdout()
			for _, key := range settings.DerivedKeys() {
				if v, ok := loader.Lookup(key); ok {
					fmt.Fprintf(out, "warning: %s from %s is ignored, it is derived from its parts\n", key, v.Source)
				}
			}
			fmt.Fprintf(out, "settings OK (environment %s, sources %v)\n", s.Environment, loader.Sources())
			return nil
		},
	}
}

// consumerProblems validates the configurations the services derive from s.
// Ranges such as the bcrypt cost are enforced there, not by the loader.
func consumerProblems(s *settings.Settings) []string {
	checks := []struct {
		name string
		cfg  validator.Validatable
	}{
		{"auth", auth.ConfigFromSettings(s)},
		{"jwt", jwt.ConfigFromSettings(s)},
	}

	var problems []string
	for _, c := range checks {
		err := c.cfg.Validate()
		if err == nil {
			continue
		}
		violations, ok := validator.Collect(err)
		if !ok {
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		for _, v := range violations {
			problems = append(problems, c.name+"."+v.Field+": "+v.Message)
		}
	}
	return problems
}

func writeEntries(w io.Writer, entries []settings.Entry, withSource bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		if withSource {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Value, e.Source)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", e.Key, e.Value)
		}
	}
	return tw.Flush()
}

type entryJSON struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

func writeEntriesJSON(w io.Writer, entries []settings.Entry, withSource bool) error {
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{Key: e.Key, Value: e.Value}
		if withSource {
			out[i].Source = e.Source
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
