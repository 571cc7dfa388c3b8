// Package settings builds the process-wide settings record for the cpipeline
// backend.
//
// Every field is resolved by name, case-sensitively, from an ordered list of
// sources: process environment, then the project's .env file, then the
// pyproject.toml manifest (project metadata only), then the compiled-in
// default. List fields are JSON-encoded strings. The two database URIs are
// always derived from their component fields.
//
// Load collects every violation before failing, so an operator sees the
// whole list at once:
//
//	s, err := settings.LoadFromEnvironment(".")
//	if err != nil {
//	    log.Fatal(err) // settings: 8 violations ...
//	}
//
// The record is built once at startup and handed to consumers by pointer.
// Nothing mutates it afterwards.
package settings

import "time"

// Environment is the deployment stage
type Environment string

const (
	EnvDev    Environment = "DEV"
	EnvPytest Environment = "PYTEST"
	EnvStg    Environment = "STG"
	EnvPrd    Environment = "PRD"
)

// Environments lists the accepted values in declaration order
var Environments = []Environment{EnvDev, EnvPytest, EnvStg, EnvPrd}

// IsProduction reports PRD
func (e Environment) IsProduction() bool {
	return e == EnvPrd
}

// IsTesting reports PYTEST
func (e Environment) IsTesting() bool {
	return e == EnvPytest
}

func (e Environment) String() string {
	return string(e)
}

// DatabaseConfig holds the discrete components of a PostgreSQL connection.
// Port stays a string: it is only interpreted when the URI is derived.
type DatabaseConfig struct {
	Hostname string
	User     string
	Password string
	Port     string
	DB       string
}

// Settings is the validated configuration record
type Settings struct {
	SecretKey                 string
	Environment               Environment
	BcryptRounds              int
	AccessTokenExpireMinutes  int
	RefreshTokenExpireMinutes int
	BackendCORSOrigins        []string
	AllowedHosts              []string

	ProjectName string
	Version     string
	Description string

	DefaultDatabase    DatabaseConfig
	DefaultDatabaseURI string

	TestDatabase    DatabaseConfig
	TestDatabaseURI string

	FirstSuperuserEmail    string
	FirstSuperuserPassword string

	sources map[string]string // setting name -> source name
}

// AccessTokenTTL is ACCESS_TOKEN_EXPIRE_MINUTES as a duration
func (s *Settings) AccessTokenTTL() time.Duration {
	return time.Duration(s.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTokenTTL is REFRESH_TOKEN_EXPIRE_MINUTES as a duration
func (s *Settings) RefreshTokenTTL() time.Duration {
	return time.Duration(s.RefreshTokenExpireMinutes) * time.Minute
}

// PrimaryDatabaseURI is the test database under PYTEST, the default one otherwise
func (s *Settings) PrimaryDatabaseURI() string {
	if s.Environment.IsTesting() {
		return s.TestDatabaseURI
	}
	return s.DefaultDatabaseURI
}

// Source names the source that supplied a setting ("env", "dotenv:<path>",
// "file:<path>", "default" or "derived").
func (s *Settings) Source(key string) string {
	return s.sources[key]
}

// Sources returns a copy of the setting -> source map
func (s *Settings) Sources() map[string]string {
	out := make(map[string]string, len(s.sources))
	for k, v := range s.sources {
		out[k] = v
	}
	return out
}
