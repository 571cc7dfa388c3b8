package config

import (
	"fmt"
	"sort"
)

// Value is a raw setting value together with the source that supplied it
type Value struct {
	Raw    string
	Source string
}

// Loader resolves keys against an ordered list of sources
type Loader struct {
	sources []ConfigSource
	layers  []layer // loaded snapshots, highest priority first
	loaded  bool
}

type layer struct {
	name   string
	values map[string]string
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		sources: make([]ConfigSource, 0),
	}
}

// AddSource registers a source. Sources with equal priority keep their
// registration order, the earlier one winning.
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
	// Highest priority first, stable for equal priorities
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() > l.sources[j].Priority()
	})
	l.loaded = false
}

// Load snapshots every source once. Any source error aborts the load.
func (l *Loader) Load() error {
	layers := make([]layer, 0, len(l.sources))
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		layers = append(layers, layer{name: source.Name(), values: data})
	}

	l.layers = layers
	l.loaded = true
	return nil
}

// Lookup returns the value for key from the highest-priority source that
// defines it. Load must have been called.
func (l *Loader) Lookup(key string) (Value, bool) {
	for _, ly := range l.layers {
		if raw, ok := ly.values[key]; ok {
			return Value{Raw: raw, Source: ly.name}, true
		}
	}
	return Value{}, false
}

// GetString returns the resolved raw value or "" when absent
func (l *Loader) GetString(key string) string {
	v, _ := l.Lookup(key)
	return v.Raw
}

// IsSet reports whether any source defines key
func (l *Loader) IsSet(key string) bool {
	_, ok := l.Lookup(key)
	return ok
}

// Keys returns every key defined by at least one source, sorted
func (l *Loader) Keys() []string {
	seen := make(map[string]bool)
	for _, ly := range l.layers {
		for k := range ly.values {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sources returns source names in resolution order
func (l *Loader) Sources() []string {
	names := make([]string, 0, len(l.sources))
	for _, s := range l.sources {
		names = append(names, s.Name())
	}
	return names
}

// Loaded reports whether Load has completed since the last AddSource
func (l *Loader) Loaded() bool {
	return l.loaded
}
