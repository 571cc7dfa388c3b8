package settings

import (
	"github.com/KOMKZ/cpipeline/config"
	"github.com/samber/do/v2"
)

// ProvideSettings builds Settings from the injected *config.Loader
func ProvideSettings(i do.Injector) (*Settings, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	return Load(loader)
}

// ProvideSettingsValue registers an already loaded record
func ProvideSettingsValue(s *Settings) func(do.Injector) (*Settings, error) {
	return func(do.Injector) (*Settings, error) {
		return s, nil
	}
}
