package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestDisabled 测试未启用时为 noop
func TestDisabled(t *testing.T) {
	p, err := New(context.Background(), DefaultConfig())
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	ctx, span := p.Tracer("test").Start(context.Background(), "noop")
	span.End()
	assert.Nil(t, LogFields(ctx))

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), ErrProviderClosed)
}

// TestValidate 测试配置校验
func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidServiceName)

	cfg = DefaultConfig()
	cfg.Enabled = true
	cfg.Sampler.Type = SamplerTypeRatio
	cfg.Sampler.Ratio = 1.5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidSamplerRatio)

	cfg = DefaultConfig()
	cfg.Enabled = true
	cfg.ExporterType = "zipkin"
	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnsupportedExporter)
}

// TestExportAndLogFields 测试 span 导出与日志字段提取
func TestExportAndLogFields(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Sampler.Type = SamplerTypeAlways

	p, err := New(context.Background(), cfg, WithExporter(exp), WithSyncer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	assert.True(t, p.Enabled())

	ctx, span := otel.Tracer("test").Start(context.Background(), "gateway.broadcast")
	fields := LogFields(ctx)
	span.End()

	require.Len(t, fields, 2)
	assert.Equal(t, "trace_id", fields[0].Key)
	assert.Equal(t, span.SpanContext().TraceID().String(), fields[0].String)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "gateway.broadcast", spans[0].Name)
}
