// Package database opens the gorm connections described by the loaded
// settings and provides the Repository infrastructure on top of them.
package database

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KOMKZ/cpipeline/settings"
)

// Instance names
const (
	InstanceDefault = "default"
	InstanceTest    = "test"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config database configuration
type Config struct {
	Driver          string // postgres or sqlite
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	EnableLog       bool
	SlowThreshold   time.Duration
	EnableAudit     bool // log every statement

	TraceSQL       bool // put statements on spans
	TraceSQLMaxLen int  // default 1000
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Driver:          DriverPostgres,
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		EnableLog:       true,
		SlowThreshold:   200 * time.Millisecond,
		EnableAudit:     false,
		TraceSQL:        false,
		TraceSQLMaxLen:  1000,
	}
}

// Validate checks the driver and DSN and fills zero-valued pool settings.
// Postgres DSNs are parsed the way the driver will parse them, PG*
// environment variables included.
func (c *Config) Validate() error {
	if c.Driver == "" {
		c.Driver = DriverPostgres
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(DriverPostgres, DriverSQLite)),
		validation.Field(&c.DSN, validation.Required),
	)
	if err != nil {
		return ErrInvalidConfig.Wrap(err)
	}
	if c.Driver == DriverPostgres {
		if _, err := pgconn.ParseConfig(c.DSN); err != nil {
			return ErrInvalidConfig.WithMsgf("invalid postgres DSN").Wrap(err)
		}
	}

	defaults := DefaultConfig()
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = defaults.MaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = defaults.MaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = defaults.SlowThreshold
	}
	if c.TraceSQLMaxLen <= 0 {
		c.TraceSQLMaxLen = defaults.TraceSQLMaxLen
	}
	return nil
}

// ConfigsFromSettings maps the derived database URIs to gorm instances.
// The primary instance is "test" under PYTEST and "default" otherwise.
func ConfigsFromSettings(s *settings.Settings) (configs map[string]Config, primary string) {
	def := DefaultConfig()
	def.DSN = s.DefaultDatabaseURI
	def.EnableAudit = !s.Environment.IsProduction()

	test := DefaultConfig()
	test.DSN = s.TestDatabaseURI
	test.EnableAudit = true

	primary = InstanceDefault
	if s.Environment.IsTesting() {
		primary = InstanceTest
	}
	return map[string]Config{InstanceDefault: def, InstanceTest: test}, primary
}
