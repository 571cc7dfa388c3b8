package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/cpipeline/logger"
)

func sqliteConfig(t *testing.T, name string) Config {
	t.Helper()
	return Config{
		Driver:       DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), name+".db"),
		MaxOpenConns: 1,
		EnableLog:    true,
	}
}

func newSQLiteManager(t *testing.T, opts ...Option) (*Manager, *logger.TestCtxLogger) {
	t.Helper()
	log := logger.NewTestCtxLogger()
	m, err := NewManager(map[string]Config{
		InstanceDefault: sqliteConfig(t, "default"),
		InstanceTest:    sqliteConfig(t, "test"),
	}, NewGormLoggerFactory(log.CtxZapLogger), log.CtxZapLogger, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, log
}

func TestNewManager(t *testing.T) {
	m, log := newSQLiteManager(t)

	assert.Equal(t, []string{InstanceDefault, InstanceTest}, m.GetDBNames())
	assert.NotNil(t, m.DB(InstanceDefault))
	assert.NotNil(t, m.DB(InstanceTest))
	assert.Nil(t, m.DB("missing"))
	assert.Same(t, m.DB(InstanceDefault), m.Primary())
	assert.Equal(t, InstanceDefault, m.PrimaryName())
	assert.True(t, log.HasLogWithField("DEBUG", "database instance opened", "name", InstanceTest))

	cfg, ok := m.Config(InstanceDefault)
	require.True(t, ok)
	assert.Equal(t, 1, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
}

func TestNewManager_WithPrimary(t *testing.T) {
	m, _ := newSQLiteManager(t, WithPrimary(InstanceTest))
	assert.Same(t, m.DB(InstanceTest), m.Primary())
}

func TestNewManager_Errors(t *testing.T) {
	log := logger.NewTestCtxLogger().CtxZapLogger

	_, err := NewManager(nil, nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewManager(map[string]Config{"bad": {Driver: DriverSQLite}}, nil, log)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "bad")

	_, err = NewManager(map[string]Config{InstanceTest: sqliteConfig(t, "only")}, nil, log)
	assert.True(t, errors.Is(err, ErrInstanceNotFound))
}

func TestManager_Ping(t *testing.T) {
	m, _ := newSQLiteManager(t)
	ctx := context.Background()

	assert.NoError(t, m.Ping(ctx))
	assert.NoError(t, m.Ping(ctx, InstanceTest))

	err := m.Ping(ctx, "missing")
	assert.True(t, errors.Is(err, ErrInstanceNotFound))
}

func TestManager_PostgresOpensLazily(t *testing.T) {
	log := logger.NewTestCtxLogger().CtxZapLogger
	m, err := NewManager(map[string]Config{
		InstanceDefault: {Driver: DriverPostgres, DSN: "postgresql://u:p@127.0.0.1:1/d?connect_timeout=1"},
	}, nil, log)
	require.NoError(t, err)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err = m.Ping(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionFailed))
}

func TestManager_Stats(t *testing.T) {
	m, _ := newSQLiteManager(t)

	_, err := m.Stats(InstanceDefault)
	assert.NoError(t, err)

	_, err = m.Stats("missing")
	assert.True(t, errors.Is(err, ErrInstanceNotFound))
}

func TestManager_Shutdown(t *testing.T) {
	m, _ := newSQLiteManager(t)

	require.NoError(t, m.Shutdown())
	assert.Empty(t, m.GetDBNames())
	assert.True(t, errors.Is(m.Ping(context.Background(), InstanceDefault), ErrInstanceNotFound))
}

func TestNewGormLoggerFactory(t *testing.T) {
	log := logger.NewTestCtxLogger()
	factory := NewGormLoggerFactory(log.CtxZapLogger)

	gl := factory(Config{EnableLog: false})
	gl.Error(context.Background(), "silenced")
	assert.Empty(t, log.Logs())

	gl = factory(Config{EnableLog: true})
	gl.Error(context.Background(), "reported")
	assert.True(t, log.HasLog("ERROR", "reported"))
}
