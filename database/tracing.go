package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	instrumentationName    = "github.com/KOMKZ/cpipeline/database"
	instrumentationVersion = "0.1.0"
	spanInstanceKey        = "tracing:span"
)

// registerAround registers before/after hooks around every builtin
// statement callback.
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	regs := []struct {
		name string
		fn   func() error
	}{
		{"before_create", func() error { return cb.Create().Before("gorm:create").Register(prefix+":before_create", before) }},
		{"after_create", func() error { return cb.Create().After("gorm:create").Register(prefix+":after_create", after) }},
		{"before_query", func() error { return cb.Query().Before("gorm:query").Register(prefix+":before_query", before) }},
		{"after_query", func() error { return cb.Query().After("gorm:query").Register(prefix+":after_query", after) }},
		{"before_update", func() error { return cb.Update().Before("gorm:update").Register(prefix+":before_update", before) }},
		{"after_update", func() error { return cb.Update().After("gorm:update").Register(prefix+":after_update", after) }},
		{"before_delete", func() error { return cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before) }},
		{"after_delete", func() error { return cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after) }},
		{"before_row", func() error { return cb.Row().Before("gorm:row").Register(prefix+":before_row", before) }},
		{"after_row", func() error { return cb.Row().After("gorm:row").Register(prefix+":after_row", after) }},
		{"before_raw", func() error { return cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before) }},
		{"after_raw", func() error { return cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after) }},
	}
	for _, r := range regs {
		if err := r.fn(); err != nil {
			return fmt.Errorf("register %s:%s: %w", prefix, r.name, err)
		}
	}
	return nil
}

// TracingPlugin opens a client span around every statement
type TracingPlugin struct {
	tracer    trace.Tracer
	traceSQL  bool
	sqlMaxLen int
}

// NewTracingPlugin uses the global provider when tp is nil
func NewTracingPlugin(tp trace.TracerProvider) *TracingPlugin {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingPlugin{
		tracer:    tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion)),
		sqlMaxLen: 1000,
	}
}

// WithTraceSQL records the statement text on the span
func (p *TracingPlugin) WithTraceSQL(enabled bool) *TracingPlugin {
	p.traceSQL = enabled
	return p
}

func (p *TracingPlugin) WithSQLMaxLen(maxLen int) *TracingPlugin {
	if maxLen > 0 {
		p.sqlMaxLen = maxLen
	}
	return p
}

func (p *TracingPlugin) Name() string {
	return "cpipeline:tracing"
}

func (p *TracingPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "tracing", p.before, p.after)
}

func (p *TracingPlugin) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	spanName := "gorm.statement"
	if db.Statement.Table != "" {
		spanName = "gorm " + db.Statement.Table
	}
	ctx, span := p.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("db.system", db.Dialector.Name()))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	db.Statement.Context = ctx
	db.InstanceSet(spanInstanceKey, span)
}

func (p *TracingPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(spanInstanceKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	stmt := db.Statement.SQL.String()
	span.SetAttributes(
		attribute.String("db.operation", operationOf(stmt)),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)
	if p.traceSQL && stmt != "" {
		if len(stmt) > p.sqlMaxLen {
			stmt = stmt[:p.sqlMaxLen] + "..."
		}
		span.SetAttributes(attribute.String("db.statement", stmt))
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// operationOf returns the lower-cased first keyword of a statement
func operationOf(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
