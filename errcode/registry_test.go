package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	registry.Register(New(11, 1, "settings", "error.settings.missing", "missing"))
	registry.Register(New(12, 1, "http", "error.http.host", "host"))

	assert.Equal(t, []int{110001, 120001}, registry.Codes())
	key, ok := registry.Lookup(110001)
	assert.True(t, ok)
	assert.Equal(t, "settings:error.settings.missing", key)
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	registry := NewRegistry()

	registry.Register(New(11, 1, "settings", "error.settings.missing", "missing"))
	registry.Register(New(11, 1, "settings", "error.settings.missing", "missing"))

	assert.Len(t, registry.Codes(), 1)
}

func TestRegistry_RegisterConflictPanics(t *testing.T) {
	registry := NewRegistry()
	registry.Register(New(11, 1, "settings", "error.settings.missing", "missing"))

	assert.Panics(t, func() {
		registry.Register(New(11, 1, "settings", "error.settings.other", "other"))
	})
}
