package main

import (
	"github.com/spf13/cobra"

	"github.com/KOMKZ/cpipeline/config"
	"github.com/KOMKZ/cpipeline/database"
	"github.com/KOMKZ/cpipeline/di"
	"github.com/KOMKZ/cpipeline/logger"
	"github.com/KOMKZ/cpipeline/settings"
)

type rootOptions struct {
	projectRoot string
	manifest    string
	logLevel    string

	environ   func() []string            // nil uses os.Environ
	databases map[string]database.Config // replaces the instances derived from the settings
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cpipeline",
		Short:         "cpipeline backend tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.projectRoot, "project-root", ".", "directory holding .env and pyproject.toml")
	pf.StringVar(&opts.manifest, "manifest", "", `project manifest file name, "-" disables it (default pyproject.toml)`)
	pf.StringVar(&opts.logLevel, "log-level", "", "override the log level derived from ENVIRONMENT")

	cmd.AddCommand(
		newConfigCommand(opts),
		newBootstrapCommand(opts),
		newTokenCommand(opts),
		newHealthCommand(opts),
		newVersionCommand(opts),
	)
	return cmd
}

func (o *rootOptions) loaderOptions() config.ProvideLoaderOptions {
	return config.ProvideLoaderOptions{
		ProjectRoot: o.projectRoot,
		Manifest:    o.manifest,
		Environ:     o.environ,
	}
}

func (o *rootOptions) loadSettings() (*settings.Settings, *config.Loader, error) {
	loader, err := config.NewLoaderFromOptions(o.loaderOptions())
	if err != nil {
		return nil, nil, err
	}
	s, err := settings.Load(loader)
	if err != nil {
		return nil, loader, err
	}
	return s, loader, nil
}

func (o *rootOptions) newApp() (*di.App, error) {
	appOpts := di.Options{
		Loader:      o.loaderOptions(),
		Databases:   o.databases,
		LogToStderr: true,
	}
	if o.databases != nil {
		appOpts.Primary = database.InstanceDefault
	}
	if o.logLevel != "" {
		appOpts.Logger = &logger.ManagerConfig{
			Level:         o.logLevel,
			Encoding:      "console",
			EnableConsole: true,
		}
	}
	return di.NewApp(appOpts)
}
