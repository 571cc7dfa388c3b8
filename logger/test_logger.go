package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestCtxLogger is a CtxZapLogger that records entries in memory so unit
// tests can assert on them:
//
//	log := logger.NewTestCtxLogger()
//	svc := auth.NewBootstrapper(db, passwords, s, log.CtxZapLogger)
//	assert.True(t, log.HasLog("INFO", "first superuser created"))
type TestCtxLogger struct {
	*CtxZapLogger
	observed *observer.ObservedLogs
}

// LogEntry is one recorded entry
type LogEntry struct {
	Level   string
	Message string
	TraceID string
	Fields  map[string]interface{}
}

// NewTestCtxLogger records every level, debug included
func NewTestCtxLogger() *TestCtxLogger {
	core, observed := observer.New(zapcore.DebugLevel)
	return &TestCtxLogger{
		CtxZapLogger: NewCtxZapLogger(zap.New(core), "test", ManagerConfig{}),
		observed:     observed,
	}
}

// HasLog reports whether an entry with level ("INFO", "WARN", ...) and message exists
func (t *TestCtxLogger) HasLog(level, message string) bool {
	for _, e := range t.Logs() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

func (t *TestCtxLogger) HasLogWithTraceID(level, message, traceID string) bool {
	for _, e := range t.Logs() {
		if e.Level == level && e.Message == message && e.TraceID == traceID {
			return true
		}
	}
	return false
}

func (t *TestCtxLogger) HasLogWithField(level, message, fieldKey string, fieldValue interface{}) bool {
	for _, e := range t.Logs() {
		if e.Level == level && e.Message == message {
			if v, ok := e.Fields[fieldKey]; ok && v == fieldValue {
				return true
			}
		}
	}
	return false
}

// CountLogs counts entries at level
func (t *TestCtxLogger) CountLogs(level string) int {
	n := 0
	for _, e := range t.Logs() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Logs returns a snapshot of every recorded entry
func (t *TestCtxLogger) Logs() []LogEntry {
	all := t.observed.All()
	out := make([]LogEntry, 0, len(all))
	for _, e := range all {
		fields := e.ContextMap()
		traceID, _ := fields["trace_id"].(string)
		out = append(out, LogEntry{
			Level:   e.Level.CapitalString(),
			Message: e.Message,
			TraceID: traceID,
			Fields:  fields,
		})
	}
	return out
}

// Clear drops recorded entries
func (t *TestCtxLogger) Clear() {
	t.observed.TakeAll()
}
