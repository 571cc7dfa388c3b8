package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/KOMKZ/cpipeline/logger"
)

func nopLogger() *logger.CtxZapLogger {
	return logger.NewNop()
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetricsPlugin_CountsStatements(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, _ := newSQLiteManager(t, WithMeterProvider(mp))
	db := m.Primary()
	require.NoError(t, db.AutoMigrate(&repoModel{}))
	before := collectSum(t, reader, "db_queries_total")

	require.NoError(t, db.Create(&repoModel{Name: "one"}).Error)
	var out []repoModel
	require.NoError(t, db.Find(&out).Error)

	assert.Equal(t, before+2, collectSum(t, reader, "db_queries_total"))
}

func TestMetricsPlugin_Name(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	p, err := NewMetricsPlugin(mp, InstanceDefault, 0)
	require.NoError(t, err)
	assert.Equal(t, "cpipeline:metrics", p.Name())
}
