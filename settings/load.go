package settings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/KOMKZ/cpipeline/config"
)

// Load resolves, coerces, validates and derives every setting. For each
// field the loader is asked first (its sources are already ordered), then
// the compiled-in default applies, else the field is reported missing.
//
// The returned error is always a *LoadError listing every violation; no
// partial record is returned.
func Load(loader *config.Loader) (*Settings, error) {
	if loader == nil {
		return nil, errors.New("settings: nil loader")
	}
	if !loader.Loaded() {
		if err := loader.Load(); err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}

	s := &Settings{sources: make(map[string]string, len(fields)+len(derivedURIs))}
	var violations []*FieldError
	failed := make(map[string]bool)

	for _, f := range fields {
		raw, source, ok := resolve(loader, f)
		if !ok {
			violations = append(violations, &FieldError{Field: f.key, Err: ErrMissingRequiredField})
			failed[f.key] = true
			continue
		}
		if err := f.assign(s, raw); err != nil {
			violations = append(violations, &FieldError{
				Field:    f.key,
				Raw:      maskIfSecret(f.key, raw),
				Expected: f.expected,
				Err:      err,
			})
			failed[f.key] = true
			continue
		}
		s.sources[f.key] = source
	}

	for _, d := range derivedURIs {
		if anyFailed(failed, d.components) {
			continue
		}
		uri, err := BuildPostgresURI(d.db(s))
		if err != nil {
			violations = append(violations, &FieldError{Field: d.key, Expected: "postgresql URI", Err: err})
			continue
		}
		*d.dst(s) = uri
		s.sources[d.key] = sourceDerived
	}

	if len(violations) > 0 {
		return nil, &LoadError{Violations: sortViolations(violations)}
	}
	return s, nil
}

// LoadFromEnvironment builds the standard loader rooted at projectRoot
// (environment, .env, pyproject.toml) and loads the settings.
func LoadFromEnvironment(projectRoot string) (*Settings, error) {
	loader, err := config.NewLoaderBuilder().WithProjectRoot(projectRoot).Build()
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return Load(loader)
}

// MustLoad is Load that panics on failure, for startup code that has no
// way to continue without configuration.
func MustLoad(loader *config.Loader) *Settings {
	s, err := Load(loader)
	if err != nil {
		panic(err)
	}
	return s
}

func resolve(loader *config.Loader, f field) (raw, source string, ok bool) {
	if v, found := loader.Lookup(f.key); found {
		return v.Raw, v.Source, true
	}
	if f.hasDefault {
		return f.def, sourceDefault, true
	}
	return "", "", false
}

func anyFailed(failed map[string]bool, keys []string) bool {
	for _, k := range keys {
		if failed[k] {
			return true
		}
	}
	return false
}

func maskIfSecret(key, raw string) string {
	if isSecret(key) {
		return redactedValue
	}
	return raw
}

// sortViolations orders violations by declaration order of their field
func sortViolations(violations []*FieldError) []*FieldError {
	order := make(map[string]int)
	for i, k := range Keys() {
		order[k] = i
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return order[violations[i].Field] < order[violations[j].Field]
	})
	return violations
}
