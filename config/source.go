package config

// Suggested priorities for the standard sources. Higher wins.
const (
	PriorityDefault  = 1
	PriorityManifest = 10
	PriorityDotEnv   = 20
	PriorityEnv      = 50
)

// ConfigSource is a provider of raw string values keyed by setting name
// (e.g. "SECRET_KEY"). Typing happens later, in the settings package.
type ConfigSource interface {
	// Name identifies the source in logs and error listings
	Name() string

	// Priority orders sources; a higher value overrides a lower one
	Priority() int

	// Load returns every key the source defines. A source that has nothing
	// to offer (missing optional file) returns an empty map, not an error.
	Load() (map[string]string, error)
}

// MapSource is a fixed set of values. It backs compiled-in defaults and is
// handy in tests.
type MapSource struct {
	name     string
	priority int
	values   map[string]string
}

// NewMapSource copies values into a new source
func NewMapSource(name string, priority int, values map[string]string) *MapSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, priority: priority, values: copied}
}

// Name of the source
func (s *MapSource) Name() string { return s.name }

// Priority of the source
func (s *MapSource) Priority() int { return s.priority }

// Load returns a copy of the values
func (s *MapSource) Load() (map[string]string, error) {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}
