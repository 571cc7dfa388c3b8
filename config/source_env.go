package config

import (
	"os"
	"strings"
)

// EnvSource reads the process environment. Keys are kept exactly as the
// environment spells them; lookups are case-sensitive.
type EnvSource struct {
	priority int
	environ  func() []string
	bindings map[string]bool // when non-empty, only these keys are exported
}

// NewEnvSource creates an environment source backed by os.Environ
func NewEnvSource(priority int) *EnvSource {
	return &EnvSource{
		priority: priority,
		environ:  os.Environ,
		bindings: make(map[string]bool),
	}
}

// WithEnviron replaces the environment provider (tests, subprocess simulation)
func (s *EnvSource) WithEnviron(environ func() []string) *EnvSource {
	s.environ = environ
	return s
}

// Bind restricts the source to the given keys
func (s *EnvSource) Bind(keys ...string) *EnvSource {
	for _, k := range keys {
		s.bindings[k] = true
	}
	return s
}

// Name of the source
func (s *EnvSource) Name() string {
	return "env"
}

// Priority of the source
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load snapshots the environment. A variable set to the empty string is
// still present.
func (s *EnvSource) Load() (map[string]string, error) {
	result := make(map[string]string)
	for _, pair := range s.environ() {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		if len(s.bindings) > 0 && !s.bindings[key] {
			continue
		}
		result[key] = value
	}
	return result, nil
}
