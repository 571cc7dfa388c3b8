package database

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

const startTimeKey = "metrics:start_time"

// MetricsPlugin records statement counts and latencies per instance
type MetricsPlugin struct {
	instance      string
	slowThreshold time.Duration
	queriesTotal  metric.Int64Counter
	queryDuration metric.Float64Histogram
	slowQueries   metric.Int64Counter
}

// NewMetricsPlugin creates the instruments on mp
func NewMetricsPlugin(mp metric.MeterProvider, instance string, slowThreshold time.Duration) (*MetricsPlugin, error) {
	meter := mp.Meter(instrumentationName)

	queriesTotal, err := meter.Int64Counter("db_queries_total",
		metric.WithDescription("Number of executed statements"),
		metric.WithUnit("{query}"))
	if err != nil {
		return nil, err
	}
	queryDuration, err := meter.Float64Histogram("db_query_duration_seconds",
		metric.WithDescription("Statement latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	slowQueries, err := meter.Int64Counter("db_slow_queries_total",
		metric.WithDescription("Number of statements slower than the threshold"),
		metric.WithUnit("{query}"))
	if err != nil {
		return nil, err
	}

	return &MetricsPlugin{
		instance:      instance,
		slowThreshold: slowThreshold,
		queriesTotal:  queriesTotal,
		queryDuration: queryDuration,
		slowQueries:   slowQueries,
	}, nil
}

func (p *MetricsPlugin) Name() string {
	return "cpipeline:metrics"
}

func (p *MetricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "metrics", p.before, p.after)
}

func (p *MetricsPlugin) before(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

func (p *MetricsPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(startTimeKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)

	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	table := db.Statement.Table
	if table == "" {
		table = "unknown"
	}
	attrs := metric.WithAttributes(
		attribute.String("instance", p.instance),
		attribute.String("operation", operationOf(db.Statement.SQL.String())),
		attribute.String("table", table),
	)

	p.queriesTotal.Add(ctx, 1, attrs)
	p.queryDuration.Record(ctx, elapsed.Seconds(), attrs)
	if p.slowThreshold > 0 && elapsed >= p.slowThreshold {
		p.slowQueries.Add(ctx, 1, attrs)
	}
}
