package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	log := NewTestCtxLogger()
	gormLog := NewGormLogger(log.CtxZapLogger, GormLoggerConfig{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormlogger.Info,
	})
	ctx := context.Background()

	gormLog.Trace(ctx, time.Now().Add(-10*time.Millisecond), func() (string, int64) {
		return "SELECT * FROM users WHERE id = 1", 1
	}, nil)
	gormLog.Trace(ctx, time.Now().Add(-500*time.Millisecond), func() (string, int64) {
		return "SELECT * FROM users", 100
	}, nil)
	gormLog.Trace(ctx, time.Now(), func() (string, int64) {
		return "INSERT INTO users VALUES (1)", 0
	}, errors.New("duplicate key"))
	gormLog.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM users WHERE id = 999", 0
	}, gormlogger.ErrRecordNotFound)

	assert.True(t, log.HasLogWithField("DEBUG", "sql executed", "sql", "SELECT * FROM users WHERE id = 1"))
	assert.True(t, log.HasLogWithField("WARN", "slow query", "sql", "SELECT * FROM users"))
	assert.True(t, log.HasLogWithField("ERROR", "sql failed", "sql", "INSERT INTO users VALUES (1)"))
	assert.False(t, log.HasLogWithField("ERROR", "sql failed", "sql", "SELECT * FROM users WHERE id = 999"))
}

func TestGormLogger_Levels(t *testing.T) {
	log := NewTestCtxLogger()
	gormLog := NewGormLogger(log.CtxZapLogger, DefaultGormLoggerConfig())
	ctx := context.Background()

	gormLog.Info(ctx, "info %s", "dropped")
	gormLog.Warn(ctx, "warn %d", 1)
	gormLog.Error(ctx, "error %s", "kept")

	assert.Equal(t, 0, log.CountLogs("DEBUG"))
	assert.True(t, log.HasLog("WARN", "warn 1"))
	assert.True(t, log.HasLog("ERROR", "error kept"))

	// normal statements are not logged at warn level
	gormLog.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 0, log.CountLogs("DEBUG"))
}

func TestGormLogger_SilentMode(t *testing.T) {
	log := NewTestCtxLogger()
	gormLog := NewGormLogger(log.CtxZapLogger, DefaultGormLoggerConfig()).LogMode(gormlogger.Silent)

	gormLog.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, errors.New("boom"))
	assert.Empty(t, log.Logs())
}

func TestDefaultGormLoggerConfig(t *testing.T) {
	cfg := DefaultGormLoggerConfig()
	assert.Equal(t, 200*time.Millisecond, cfg.SlowThreshold)
	assert.Equal(t, gormlogger.Warn, cfg.LogLevel)
	assert.False(t, cfg.EnableAudit)
}
