package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// FileSource reads a structured file (toml, yaml, json) through Viper and
// exposes selected entries under setting names. Viper lower-cases keys, so
// bindings are written in lower case: "tool.poetry.name" -> "PROJECT_NAME".
type FileSource struct {
	path     string
	priority int
	bindings map[string]string // dotted file key -> setting name
}

// NewFileSource creates a file data source
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{
		path:     path,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// NewPyProjectSource reads project metadata from a poetry pyproject.toml
func NewPyProjectSource(path string, priority int) *FileSource {
	s := NewFileSource(path, priority)
	s.AddBinding("tool.poetry.name", "PROJECT_NAME")
	s.AddBinding("tool.poetry.version", "VERSION")
	s.AddBinding("tool.poetry.description", "DESCRIPTION")
	return s
}

// AddBinding maps a dotted file key to a setting name
func (s *FileSource) AddBinding(fileKey, settingKey string) {
	s.bindings[fileKey] = settingKey
}

// Name of the source
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Priority of the source
func (s *FileSource) Priority() int {
	return s.priority
}

// Load reads the file. A missing file yields an empty source. Without
// bindings every flattened key is exported as-is.
func (s *FileSource) Load() (map[string]string, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}

	flat := flattenMap("", v.AllSettings())
	result := make(map[string]string)

	if len(s.bindings) == 0 {
		for key, value := range flat {
			str, err := stringify(value)
			if err != nil {
				return nil, fmt.Errorf("config file %s key %s: %w", s.path, key, err)
			}
			result[key] = str
		}
		return result, nil
	}

	for fileKey, settingKey := range s.bindings {
		value, ok := flat[fileKey]
		if !ok {
			continue
		}
		str, err := stringify(value)
		if err != nil {
			return nil, fmt.Errorf("config file %s key %s: %w", s.path, fileKey, err)
		}
		result[settingKey] = str
	}
	return result, nil
}

// stringify turns a decoded file value back into the raw form other sources
// produce. Lists and tables become JSON so they decode the same way as a
// JSON-encoded environment variable.
func stringify(value interface{}) (string, error) {
	switch value.(type) {
	case []interface{}, map[string]interface{}:
		b, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return cast.ToStringE(value)
	}
}

// flattenMap flattens nested maps into dotted keys:
// {"tool": {"poetry": {"name": "x"}}} -> {"tool.poetry.name": "x"}
func flattenMap(prefix string, data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]interface{}); ok {
			for k, v := range flattenMap(fullKey, nested) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}

	return result
}
