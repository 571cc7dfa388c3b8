package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DotEnvFileName is the env file looked up in the project root
	DotEnvFileName = ".env"
	// ManifestFileName carries project name, version and description
	ManifestFileName = "pyproject.toml"
)

// LoaderBuilder assembles the standard source chain:
// environment > .env > manifest > defaults
type LoaderBuilder struct {
	projectRoot string
	environ     func() []string
	manifest    string
	defaults    map[string]string
	extra       []ConfigSource
}

// NewLoaderBuilder creates a builder rooted at the working directory
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{
		environ:  os.Environ,
		manifest: ManifestFileName,
	}
}

// WithProjectRoot sets the directory holding .env and the manifest
func (b *LoaderBuilder) WithProjectRoot(dir string) *LoaderBuilder {
	b.projectRoot = dir
	return b
}

// WithEnviron replaces os.Environ
func (b *LoaderBuilder) WithEnviron(environ func() []string) *LoaderBuilder {
	b.environ = environ
	return b
}

// WithManifest sets the manifest file name relative to the project root.
// An empty name disables the manifest source.
func (b *LoaderBuilder) WithManifest(name string) *LoaderBuilder {
	b.manifest = name
	return b
}

// WithDefaults sets the lowest-priority values
func (b *LoaderBuilder) WithDefaults(defaults map[string]string) *LoaderBuilder {
	b.defaults = defaults
	return b
}

// WithSource adds an extra source next to the standard ones
func (b *LoaderBuilder) WithSource(source ConfigSource) *LoaderBuilder {
	b.extra = append(b.extra, source)
	return b
}

// Build creates and loads the loader
func (b *LoaderBuilder) Build() (*Loader, error) {
	root := b.projectRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}
		root = wd
	}

	loader := NewLoader()
	loader.AddSource(NewEnvSource(PriorityEnv).WithEnviron(b.environ))
	loader.AddSource(NewDotEnvSource(filepath.Join(root, DotEnvFileName), PriorityDotEnv))
	if b.manifest != "" {
		loader.AddSource(NewPyProjectSource(filepath.Join(root, b.manifest), PriorityManifest))
	}
	if len(b.defaults) > 0 {
		loader.AddSource(NewMapSource("default", PriorityDefault, b.defaults))
	}
	for _, s := range b.extra {
		loader.AddSource(s)
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}
