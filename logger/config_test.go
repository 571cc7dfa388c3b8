package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/KOMKZ/cpipeline/settings"
)

func TestManagerConfig_ApplyDefaults(t *testing.T) {
	cfg := ManagerConfig{Level: "warn"}
	cfg.ApplyDefaults()

	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "logs", cfg.BaseLogDir)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 28, cfg.MaxAge)
	assert.Equal(t, "trace_id", cfg.TraceIDKey)
	assert.Equal(t, "trace_id", cfg.TraceIDFieldName)
	assert.False(t, cfg.EnableConsole)
}

func TestConfigForEnvironment(t *testing.T) {
	tests := []struct {
		env      settings.Environment
		encoding string
		level    string
		file     bool
	}{
		{settings.EnvDev, "console", "debug", false},
		{settings.EnvPytest, "console", "debug", false},
		{settings.EnvStg, "json", "info", true},
		{settings.EnvPrd, "json", "info", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			cfg := ConfigForEnvironment(tt.env)
			assert.Equal(t, tt.encoding, cfg.Encoding)
			assert.Equal(t, tt.level, cfg.Level)
			assert.Equal(t, tt.file, cfg.EnableFile)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(&settings.Settings{Environment: settings.EnvPrd, ProjectName: "cpipeline"})
	assert.Equal(t, "cpipeline", cfg.AppName)
	assert.Equal(t, "json", cfg.Encoding)
}

func TestManagerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ManagerConfig)
		wantErr bool
	}{
		{"defaults", func(*ManagerConfig) {}, false},
		{"bad level", func(c *ManagerConfig) { c.Level = "verbose" }, true},
		{"bad encoding", func(c *ManagerConfig) { c.Encoding = "xml" }, true},
		{"max size too large", func(c *ManagerConfig) { c.MaxSize = 20000 }, true},
		{"negative backups", func(c *ManagerConfig) { c.MaxBackups = -1 }, true},
		{"file without dir", func(c *ManagerConfig) { c.EnableFile = true; c.BaseLogDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultManagerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("unknown"))
}

func TestManagerConfig_FilePath(t *testing.T) {
	cfg := ManagerConfig{BaseLogDir: "logs", EnableLevelInFilename: true}
	assert.Equal(t, filepath.Join("logs", "auth", "auth-error.log"), cfg.filePath("auth", "error"))

	cfg.EnableLevelInFilename = false
	assert.Equal(t, filepath.Join("logs", "auth", "auth.log"), cfg.filePath("auth", "error"))
}
