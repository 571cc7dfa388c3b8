package config

import (
	"fmt"
	"os"

	"github.com/subosito/gotenv"
)

// DotEnvSource reads KEY=VALUE lines from a .env file
type DotEnvSource struct {
	path     string
	priority int
}

// NewDotEnvSource creates a .env file source
func NewDotEnvSource(path string, priority int) *DotEnvSource {
	return &DotEnvSource{
		path:     path,
		priority: priority,
	}
}

// Name of the source
func (s *DotEnvSource) Name() string {
	return "dotenv:" + s.path
}

// Priority of the source
func (s *DotEnvSource) Priority() int {
	return s.priority
}

// Path of the file
func (s *DotEnvSource) Path() string {
	return s.path
}

// Load parses the file. The file is optional: when it does not exist the
// source is empty.
func (s *DotEnvSource) Load() (map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("open env file %s: %w", s.path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("parse env file %s: %w", s.path, err)
	}

	result := make(map[string]string, len(env))
	for k, v := range env {
		result[k] = v
	}
	return result, nil
}
