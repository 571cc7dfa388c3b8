package database

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/KOMKZ/cpipeline/logger"
)

// GormLoggerFactory builds the gorm logger for one instance
type GormLoggerFactory func(cfg Config) gormlogger.Interface

// NewGormLoggerFactory routes gorm output through log
func NewGormLoggerFactory(log *logger.CtxZapLogger) GormLoggerFactory {
	return func(cfg Config) gormlogger.Interface {
		level := gormlogger.Warn
		if !cfg.EnableLog {
			level = gormlogger.Silent
		}
		return logger.NewGormLogger(log, logger.GormLoggerConfig{
			SlowThreshold: cfg.SlowThreshold,
			LogLevel:      level,
			EnableAudit:   cfg.EnableAudit,
		})
	}
}

// Option configures a Manager
type Option func(*Manager)

// WithPrimary names the instance returned by Primary
func WithPrimary(name string) Option {
	return func(m *Manager) { m.primary = name }
}

// WithTracerProvider registers the tracing plugin on every instance
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tracerProvider = tp }
}

// WithMeterProvider registers the metrics plugin on every instance
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Manager) { m.meterProvider = mp }
}

// Manager database manager (supports multiple instances)
type Manager struct {
	instances      map[string]*gorm.DB
	configs        map[string]Config
	primary        string
	loggerFactory  GormLoggerFactory
	logger         *logger.CtxZapLogger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	mu             sync.RWMutex
}

// NewManager opens every configured instance. Connections are established
// lazily; call Ping to verify reachability.
func NewManager(configs map[string]Config, loggerFactory GormLoggerFactory, log *logger.CtxZapLogger, opts ...Option) (*Manager, error) {
	if log == nil {
		return nil, ErrInvalidConfig.WithMsgf("logger cannot be nil")
	}

	m := &Manager{
		instances:     make(map[string]*gorm.DB),
		configs:       make(map[string]Config),
		primary:       InstanceDefault,
		loggerFactory: loggerFactory,
		logger:        log,
	}
	for _, opt := range opts {
		opt(m)
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := configs[name]
		if err := cfg.Validate(); err != nil {
			m.closeAll()
			return nil, ErrInvalidConfig.WithMsgf("invalid config for %s", name).Wrap(err)
		}

		db, err := m.openDB(name, cfg)
		if err != nil {
			m.closeAll()
			return nil, ErrConnectionFailed.WithMsgf("failed to open database %s", name).Wrap(err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			m.closeAll()
			return nil, ErrConnectionFailed.WithMsgf("failed to get sql.DB for %s", name).Wrap(err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		m.instances[name] = db
		m.configs[name] = cfg

		m.logger.Debug("database instance opened",
			zap.String("name", name),
			zap.String("driver", cfg.Driver))
	}

	if _, ok := m.instances[m.primary]; !ok && len(m.instances) > 0 {
		m.closeAll()
		return nil, ErrInstanceNotFound.WithMsgf("primary database instance %s is not configured", m.primary)
	}

	return m, nil
}

func (m *Manager) openDB(name string, cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, ErrInvalidConfig.WithMsgf("unsupported driver: %s", cfg.Driver)
	}

	gormLogger := gormlogger.Default.LogMode(gormlogger.Silent)
	if m.loggerFactory != nil {
		gormLogger = m.loggerFactory(cfg)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               gormLogger,
		TranslateError:       true,
		DisableAutomaticPing: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if m.tracerProvider != nil {
		plugin := NewTracingPlugin(m.tracerProvider).
			WithTraceSQL(cfg.TraceSQL).
			WithSQLMaxLen(cfg.TraceSQLMaxLen)
		if err := db.Use(plugin); err != nil {
			return nil, err
		}
	}
	if m.meterProvider != nil {
		plugin, err := NewMetricsPlugin(m.meterProvider, name, cfg.SlowThreshold)
		if err != nil {
			return nil, err
		}
		if err := db.Use(plugin); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// DB returns the named instance, or nil
func (m *Manager) DB(name string) *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[name]
}

// Primary returns the instance the application reads and writes
func (m *Manager) Primary() *gorm.DB {
	return m.DB(m.primary)
}

// PrimaryName returns the name of the primary instance
func (m *Manager) PrimaryName() string {
	return m.primary
}

// Config returns the validated configuration of an instance
func (m *Manager) Config(name string) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[name]
	return cfg, ok
}

// Close closes every connection pool
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAll()
	return nil
}

func (m *Manager) closeAll() {
	for name, db := range m.instances {
		sqlDB, err := db.DB()
		if err != nil {
			m.logger.Error("failed to get sql.DB", zap.String("name", name), zap.Error(err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			m.logger.Error("failed to close database", zap.String("name", name), zap.Error(err))
		} else {
			m.logger.Debug("database closed", zap.String("name", name))
		}
	}
	m.instances = make(map[string]*gorm.DB)
}

// Shutdown is called by the injector on shutdown
func (m *Manager) Shutdown() error {
	return m.Close()
}

// Ping checks the named instances, or every instance when none is given
func (m *Manager) Ping(ctx context.Context, names ...string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(names) == 0 {
		names = m.namesLocked()
	}
	for _, name := range names {
		db, ok := m.instances[name]
		if !ok {
			return ErrInstanceNotFound.WithMsgf("database instance %s not found", name)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return ErrConnectionFailed.WithMsgf("failed to get sql.DB for %s", name).Wrap(err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return ErrConnectionFailed.WithMsgf("ping failed for %s", name).Wrap(err)
		}
	}
	return nil
}

// Stats returns connection pool statistics
func (m *Manager) Stats(name string) (sql.DBStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	db, ok := m.instances[name]
	if !ok {
		return sql.DBStats{}, ErrInstanceNotFound.WithMsgf("database instance %s not found", name)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}

// GetDBNames returns the instance names in sorted order
func (m *Manager) GetDBNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.namesLocked()
}

func (m *Manager) namesLocked() []string {
	names := make([]string, 0, len(m.instances))
	for name := range m.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
