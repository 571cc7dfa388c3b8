package config

import (
	"fmt"

	"github.com/samber/do/v2"
)

// ProvideLoaderOptions options for ProvideLoader
type ProvideLoaderOptions struct {
	ProjectRoot string            // directory holding .env; working directory when empty
	Manifest    string            // manifest name; "-" disables it, empty uses pyproject.toml
	Defaults    map[string]string // lowest-priority values
	Environ     func() []string   // nil uses os.Environ
}

// NewLoaderFromOptions builds the standard loader outside a container
func NewLoaderFromOptions(opts ProvideLoaderOptions) (*Loader, error) {
	b := NewLoaderBuilder().
		WithProjectRoot(opts.ProjectRoot).
		WithDefaults(opts.Defaults)

	switch opts.Manifest {
	case "":
	case "-":
		b.WithManifest("")
	default:
		b.WithManifest(opts.Manifest)
	}
	if opts.Environ != nil {
		b.WithEnviron(opts.Environ)
	}

	loader, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("config loader build failed: %w", err)
	}
	return loader, nil
}

// ProvideLoader returns a do provider building the standard loader.
// The loader has no dependencies.
//
//	do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{ProjectRoot: "."}))
//	loader := do.MustInvoke[*config.Loader](injector)
func ProvideLoader(opts ProvideLoaderOptions) func(do.Injector) (*Loader, error) {
	return func(do.Injector) (*Loader, error) {
		return NewLoaderFromOptions(opts)
	}
}

// ProvideLoaderValue registers an already built loader
func ProvideLoaderValue(loader *Loader) func(do.Injector) (*Loader, error) {
	return func(i do.Injector) (*Loader, error) {
		return loader, nil
	}
}
