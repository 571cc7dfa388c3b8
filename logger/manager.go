package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager owns one logger per module. Modules share the base configuration
// and get their own files under BaseLogDir.
type Manager struct {
	mu         sync.RWMutex
	baseConfig ManagerConfig
	console    zapcore.WriteSyncer
	loggers    map[string]*CtxZapLogger
	zapLoggers map[string]*zap.Logger
	writers    map[string][]*lumberjack.Logger
}

// NewManager creates a manager; zero-valued fields take their defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	console := os.Stdout
	if cfg.ConsoleToStderr {
		console = os.Stderr
	}
	return &Manager{
		baseConfig: cfg,
		console:    zapcore.Lock(console),
		loggers:    make(map[string]*CtxZapLogger),
		zapLoggers: make(map[string]*zap.Logger),
		writers:    make(map[string][]*lumberjack.Logger),
	}
}

// Config returns the effective configuration
func (m *Manager) Config() ManagerConfig {
	return m.baseConfig
}

// GetLogger returns the logger for a module, creating it on first use
func (m *Manager) GetLogger(moduleName string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[moduleName]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.loggers[moduleName]; ok {
		return l
	}

	base := m.createLogger(moduleName).
		With(zap.String("module", moduleName)).
		WithOptions(zap.AddCallerSkip(1))

	cfg := m.baseConfig
	l := &CtxZapLogger{base: base, module: moduleName, config: &cfg}
	m.loggers[moduleName] = l
	m.zapLoggers[moduleName] = base
	return l
}

func (m *Manager) createLogger(moduleName string) *zap.Logger {
	cfg := m.baseConfig
	encoder := createEncoder(cfg.Encoding)
	level := ParseLevel(cfg.Level)
	var cores []zapcore.Core

	if cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, m.console, level))
	}

	if cfg.EnableFile {
		// files always carry JSON so they stay machine readable
		fileEncoder := createEncoder("json")
		if cfg.EnableLevelInFilename {
			info := m.openWriter(moduleName, cfg.filePath(moduleName, "info"))
			cores = append(cores, zapcore.NewCore(fileEncoder, info,
				zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
					return lvl >= level && lvl < zapcore.ErrorLevel
				})))

			errW := m.openWriter(moduleName, cfg.filePath(moduleName, "error"))
			cores = append(cores, zapcore.NewCore(fileEncoder, errW,
				zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
					return lvl >= zapcore.ErrorLevel && lvl >= level
				})))
		} else {
			w := m.openWriter(moduleName, cfg.filePath(moduleName, ""))
			cores = append(cores, zapcore.NewCore(fileEncoder, w, level))
		}
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

func (m *Manager) openWriter(moduleName, filename string) zapcore.WriteSyncer {
	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    m.baseConfig.MaxSize,
		MaxBackups: m.baseConfig.MaxBackups,
		MaxAge:     m.baseConfig.MaxAge,
		Compress:   m.baseConfig.Compress,
		LocalTime:  true,
	}
	m.writers[moduleName] = append(m.writers[moduleName], lj)
	return zapcore.AddSync(lj)
}

// CloseAll flushes every logger and closes file handles. Loggers handed out
// before the call must not be used afterwards.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.zapLoggers {
		_ = l.Sync()
	}
	for _, writers := range m.writers {
		for _, w := range writers {
			_ = w.Close()
		}
	}

	m.loggers = make(map[string]*CtxZapLogger)
	m.zapLoggers = make(map[string]*zap.Logger)
	m.writers = make(map[string][]*lumberjack.Logger)
}

// Shutdown is called by the injector on shutdown
func (m *Manager) Shutdown() error {
	m.CloseAll()
	return nil
}

func createEncoder(encoding string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if encoding == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}
