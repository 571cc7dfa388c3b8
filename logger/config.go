package logger

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap/zapcore"

	"github.com/KOMKZ/cpipeline/settings"
)

// ManagerConfig global manager configuration (shared by all modules)
type ManagerConfig struct {
	BaseLogDir            string // root directory (default logs/)
	Level                 string
	AppName               string // injected into every entry, even when empty
	Encoding              string // json or console
	EnableConsole         bool
	EnableFile            bool
	EnableLevelInFilename bool
	MaxSize               int // MB
	MaxBackups            int
	MaxAge                int // days
	Compress              bool
	EnableCaller          bool
	ConsoleToStderr       bool // keeps stdout free for command output

	TraceIDKey       string // context key (default "trace_id")
	TraceIDFieldName string // log field name (default "trace_id")
}

// DefaultManagerConfig returns the production defaults
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		BaseLogDir:            "logs",
		Level:                 "info",
		Encoding:              "json",
		EnableConsole:         true,
		EnableFile:            false,
		EnableLevelInFilename: true,
		MaxSize:               100,
		MaxBackups:            3,
		MaxAge:                28,
		Compress:              true,
		EnableCaller:          true,
		TraceIDKey:            "trace_id",
		TraceIDFieldName:      "trace_id",
	}
}

// ConfigForEnvironment picks the logging profile for a deployment stage.
// DEV and PYTEST log human-readable console output at debug level; STG and
// PRD log JSON at info level and also write rotated files.
func ConfigForEnvironment(env settings.Environment) ManagerConfig {
	cfg := DefaultManagerConfig()
	switch env {
	case settings.EnvStg, settings.EnvPrd:
		cfg.Encoding = "json"
		cfg.Level = "info"
		cfg.EnableFile = true
	default:
		cfg.Encoding = "console"
		cfg.Level = "debug"
	}
	return cfg
}

// ConfigFromSettings is ConfigForEnvironment plus the project name as app_name
func ConfigFromSettings(s *settings.Settings) ManagerConfig {
	cfg := ConfigForEnvironment(s.Environment)
	cfg.AppName = s.ProjectName
	return cfg
}

// ApplyDefaults fills zero-valued fields in place. Booleans are left as is.
func (c *ManagerConfig) ApplyDefaults() {
	defaults := DefaultManagerConfig()

	if c.BaseLogDir == "" {
		c.BaseLogDir = defaults.BaseLogDir
	}
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = defaults.TraceIDKey
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = defaults.TraceIDFieldName
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
}

// Validate checks enum and range fields
func (c ManagerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error", "fatal")),
		validation.Field(&c.Encoding, validation.Required, validation.In("json", "console")),
		validation.Field(&c.MaxSize, validation.Min(1), validation.Max(10000)),
		validation.Field(&c.MaxBackups, validation.Min(0), validation.Max(1000)),
		validation.Field(&c.MaxAge, validation.Min(0), validation.Max(3650)),
		validation.Field(&c.BaseLogDir, validation.When(c.EnableFile, validation.Required)),
	)
}

// ParseLevel parses a level string, falling back to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath returns logs/<module>/<module>-<level>.log, or
// logs/<module>/<module>.log when the level is not part of the name.
func (c ManagerConfig) filePath(module, level string) string {
	parts := []string{module}
	if c.EnableLevelInFilename {
		parts = append(parts, level)
	}
	return filepath.Join(c.BaseLogDir, module, strings.Join(parts, "-")+".log")
}
